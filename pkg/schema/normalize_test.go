package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeFillsBoxDefaults(t *testing.T) {
	box := Normalize(BoxDefinition{ID: "seo", Title: "SEO"})

	if box.Context != "normal" {
		t.Fatalf("context = %q, want normal", box.Context)
	}
	if box.Priority != "high" {
		t.Fatalf("priority = %q, want high", box.Priority)
	}
	if diff := cmp.Diff([]string{"post"}, box.Pages); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizePreservesCallerValues(t *testing.T) {
	single := false
	box := Normalize(BoxDefinition{
		ID:       "gallery",
		Pages:    []string{"product", "page"},
		Context:  "side",
		Priority: "low",
		Fields: []FieldDefinition{
			{ID: "cover", Type: FieldTypeImage, Multiple: &single, Default: "none", Format: "custom"},
		},
	})

	if box.Context != "side" || box.Priority != "low" {
		t.Fatalf("placement overridden: context=%q priority=%q", box.Context, box.Priority)
	}
	if diff := cmp.Diff([]string{"product", "page"}, box.Pages); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}

	field := box.Fields[0]
	if field.IsMultiple() {
		t.Fatalf("explicit multiple=false was not preserved")
	}
	if field.Default != "none" {
		t.Fatalf("default = %v, want none", field.Default)
	}
	if field.Format != "custom" {
		t.Fatalf("format = %q, want custom", field.Format)
	}
}

func TestNormalizeFieldDefaults(t *testing.T) {
	box := Normalize(BoxDefinition{
		ID: "details",
		Fields: []FieldDefinition{
			{ID: "tagline", Type: FieldTypeText},
			{ID: "tags", Type: FieldTypeCheckboxList},
			{ID: "files", Type: FieldTypeFile},
			{ID: "gallery", Type: FieldTypeImage},
			{ID: "published_on", Type: FieldTypeDate},
			{ID: "published_at", Type: FieldTypeTime},
		},
	})

	byID := make(map[string]FieldDefinition, len(box.Fields))
	for _, field := range box.Fields {
		byID[field.ID] = field
	}

	for _, id := range []string{"tags", "files", "gallery"} {
		field := byID[id]
		if !field.IsMultiple() {
			t.Fatalf("field %q should default to multiple", id)
		}
		if diff := cmp.Diff([]string{}, field.Default); diff != "" {
			t.Fatalf("field %q default mismatch (-want +got):\n%s", id, diff)
		}
	}

	tagline := byID["tagline"]
	if tagline.IsMultiple() {
		t.Fatalf("text field should be single valued")
	}
	if tagline.Default != "" {
		t.Fatalf("text default = %v, want empty string", tagline.Default)
	}

	if got := byID["published_on"].Format; got != "yy-mm-dd" {
		t.Fatalf("date format = %q, want yy-mm-dd", got)
	}
	if got := byID["published_at"].Format; got != "hh:mm" {
		t.Fatalf("time format = %q, want hh:mm", got)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	box := BoxDefinition{
		ID: "details",
		Fields: []FieldDefinition{
			{ID: "tagline", Type: FieldTypeText, Description: "short pitch"},
			{ID: "gallery", Type: FieldTypeImage},
			{ID: "published_on", Type: FieldTypeDate},
		},
	}

	once := Normalize(box)
	twice := Normalize(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("normalize is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	box := Normalize(BoxDefinition{
		ID: "details",
		Fields: []FieldDefinition{
			{ID: "tagline", Type: FieldTypeText},
			{ID: "tagline", Type: FieldTypeTextarea},
		},
	})

	if err := Validate(box); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	box := Normalize(BoxDefinition{
		ID: "details",
		Fields: []FieldDefinition{
			{ID: "widget", Type: FieldType("hologram")},
		},
	})

	if err := Validate(box); err == nil {
		t.Fatalf("expected unknown type error")
	}
}
