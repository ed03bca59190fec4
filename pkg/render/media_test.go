package render

import (
	"strings"
	"testing"
)

func TestInsertImages(t *testing.T) {
	markup := InsertImages(7, "gallery", map[int64]MediaSelection{
		9: {Selected: true, URL: "/m/9.jpg"},
		4: {Selected: true, URL: "/m/4.jpg"},
		2: {Selected: false, URL: "/m/2.jpg"},
		8: {Selected: true},
	}, staticTokens{})

	four := strings.Index(markup, `id="item_4"`)
	nine := strings.Index(markup, `id="item_9"`)
	if four < 0 || nine < 0 || four > nine {
		t.Fatalf("selected items missing or out of id order:\n%s", markup)
	}
	for _, absent := range []string{`item_2`, `item_8`} {
		if strings.Contains(markup, absent) {
			t.Fatalf("skipped selection %s was rendered:\n%s", absent, markup)
		}
	}
	if !strings.Contains(markup, `data-payload="4|7|gallery|delete-token-7/gallery"`) {
		t.Fatalf("delete payload missing:\n%s", markup)
	}
	if !strings.Contains(markup, `<input type="hidden" name="gallery[]" value="9" />`) {
		t.Fatalf("hidden id input missing:\n%s", markup)
	}
}

func TestInsertImagesEmpty(t *testing.T) {
	if out := InsertImages(7, "gallery", nil, staticTokens{}); out != "" {
		t.Fatalf("expected empty markup, got %q", out)
	}
}
