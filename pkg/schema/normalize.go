package schema

import (
	"fmt"
	"strings"
)

// Normalize fills the gaps a caller left in a box definition: placement
// defaults on the box, then per-field multiplicity, empty default,
// description, picker format and validator name. Values the caller
// supplied are preserved, so Normalize(Normalize(b)) == Normalize(b).
//
// Must run once before the first render or save; Validate enforces the
// structural invariants separately.
func Normalize(box BoxDefinition) BoxDefinition {
	out := box

	if out.Context == "" {
		out.Context = DefaultContext
	}
	if out.Priority == "" {
		out.Priority = DefaultPriority
	}
	if len(out.Pages) == 0 {
		out.Pages = []string{DefaultPage}
	} else {
		out.Pages = append([]string(nil), out.Pages...)
	}

	out.Fields = make([]FieldDefinition, len(box.Fields))
	for i, field := range box.Fields {
		out.Fields[i] = normalizeField(field)
	}
	return out
}

func normalizeField(field FieldDefinition) FieldDefinition {
	if field.Multiple == nil {
		multiple := MultiValued(field.Type)
		field.Multiple = &multiple
	}
	if field.Default == nil {
		field.Default = field.EmptyValue()
	}
	if field.Format == "" {
		switch field.Type {
		case FieldTypeDate:
			field.Format = DefaultDateFormat
		case FieldTypeTime:
			field.Format = DefaultTimeFormat
		}
	}
	return field
}

// Validate checks the invariants rendering and saving depend on: every
// field id non-empty and unique within the box, every type known.
func Validate(box BoxDefinition) error {
	if strings.TrimSpace(box.ID) == "" {
		return fmt.Errorf("schema: box id is required")
	}

	seen := make(map[string]struct{}, len(box.Fields))
	for _, field := range box.Fields {
		if strings.TrimSpace(field.ID) == "" {
			return fmt.Errorf("schema: box %q contains a field without an id", box.ID)
		}
		if _, dup := seen[field.ID]; dup {
			return fmt.Errorf("schema: box %q declares field %q twice", box.ID, field.ID)
		}
		seen[field.ID] = struct{}{}

		if !KnownType(field.Type) {
			return fmt.Errorf("schema: box %q field %q has unknown type %q", box.ID, field.ID, field.Type)
		}
	}
	return nil
}
