package schema

// FieldType is the enum of control kinds a meta box can render.
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeTextarea     FieldType = "textarea"
	FieldTypeSelect       FieldType = "select"
	FieldTypeRadio        FieldType = "radio"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeCheckboxList FieldType = "checkbox_list"
	FieldTypeWysiwyg      FieldType = "wysiwyg"
	FieldTypeFile         FieldType = "file"
	FieldTypeImage        FieldType = "image"
	FieldTypeColor        FieldType = "color"
	FieldTypeDate         FieldType = "date"
	FieldTypeTime         FieldType = "time"
)

// Default picker format strings applied by Normalize.
const (
	DefaultDateFormat = "yy-mm-dd"
	DefaultTimeFormat = "hh:mm"
)

// Defaults applied to a box missing placement metadata.
const (
	DefaultContext  = "normal"
	DefaultPriority = "high"
	DefaultPage     = "post"
)

var knownTypes = map[FieldType]struct{}{
	FieldTypeText:         {},
	FieldTypeTextarea:     {},
	FieldTypeSelect:       {},
	FieldTypeRadio:        {},
	FieldTypeCheckbox:     {},
	FieldTypeCheckboxList: {},
	FieldTypeWysiwyg:      {},
	FieldTypeFile:         {},
	FieldTypeImage:        {},
	FieldTypeColor:        {},
	FieldTypeDate:         {},
	FieldTypeTime:         {},
}

// KnownType reports whether t names one of the fixed field variants.
func KnownType(t FieldType) bool {
	_, ok := knownTypes[t]
	return ok
}

// MultiValued reports whether fields of type t hold a collection of
// values by default rather than a single scalar.
func MultiValued(t FieldType) bool {
	switch t {
	case FieldTypeCheckboxList, FieldTypeFile, FieldTypeImage:
		return true
	default:
		return false
	}
}

// Option is one entry of an enumerated choice set (select, radio,
// checkbox_list). Options keep declaration order.
type Option struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// FieldDefinition describes one form control inside a box. ID must be
// unique within the box; Type must be a known variant.
//
// Multiple is a pointer so Normalize can distinguish "caller left it
// unset" from an explicit false. After Normalize it is always non-nil.
type FieldDefinition struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Type        FieldType `yaml:"type" json:"type"`
	Multiple    *bool     `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	Default     any       `yaml:"default,omitempty" json:"default,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Options     []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	Format      string    `yaml:"format,omitempty" json:"format,omitempty"`
	Validate    string    `yaml:"validate,omitempty" json:"validate,omitempty"`
}

// IsMultiple resolves the multiplicity flag, falling back to the
// type's default when the field has not been normalized yet.
func (f FieldDefinition) IsMultiple() bool {
	if f.Multiple != nil {
		return *f.Multiple
	}
	return MultiValued(f.Type)
}

// EmptyValue returns the typed empty submission for the field: an
// empty collection for multi-valued fields, an empty string otherwise.
func (f FieldDefinition) EmptyValue() any {
	if f.IsMultiple() {
		return []string{}
	}
	return ""
}

// BoxDefinition declares a meta box: identity, placement, the content
// pages it attaches to, and its ordered field list. Immutable after
// registration; Normalize returns a filled copy rather than mutating.
type BoxDefinition struct {
	ID       string            `yaml:"id" json:"id"`
	Title    string            `yaml:"title" json:"title"`
	Pages    []string          `yaml:"pages,omitempty" json:"pages,omitempty"`
	Context  string            `yaml:"context,omitempty" json:"context,omitempty"`
	Priority string            `yaml:"priority,omitempty" json:"priority,omitempty"`
	Fields   []FieldDefinition `yaml:"fields" json:"fields"`
}

// HasFieldType reports whether any field in the box has type t. Used by
// the lifecycle controller to decide which assets a box needs.
func (b BoxDefinition) HasFieldType(types ...FieldType) bool {
	for _, field := range b.Fields {
		for _, t := range types {
			if field.Type == t {
				return true
			}
		}
	}
	return false
}

// SupportsPage reports whether the box is registered for the given
// content-type page.
func (b BoxDefinition) SupportsPage(page string) bool {
	for _, p := range b.Pages {
		if p == page {
			return true
		}
	}
	return false
}
