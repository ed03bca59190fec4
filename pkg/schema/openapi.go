package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Extension keys honoured when deriving boxes from OpenAPI documents.
const (
	extensionFieldType = "x-metabox-type"
	extensionMultiple  = "x-metabox-multiple"
)

// FromOpenAPI derives a box definition from one named component schema
// of an OpenAPI document. Object properties become fields: strings map
// to text (or date/time/color via format), enums to select, booleans
// to checkbox, binary strings to file, and string arrays to
// checkbox_list. The x-metabox-type extension overrides the derived
// type per property.
//
// The resulting box is normalized but not yet bound to pages beyond
// the defaults; callers adjust Pages/Context before registration.
func FromOpenAPI(ctx context.Context, data []byte, schemaName string) (BoxDefinition, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return BoxDefinition{}, fmt.Errorf("schema: load openapi document: %w", err)
	}

	if doc.Components == nil || doc.Components.Schemas == nil {
		return BoxDefinition{}, fmt.Errorf("schema: openapi document has no component schemas")
	}
	ref, ok := doc.Components.Schemas[schemaName]
	if !ok || ref.Value == nil {
		return BoxDefinition{}, fmt.Errorf("schema: openapi schema %q not found", schemaName)
	}
	src := ref.Value
	if len(src.Properties) == 0 {
		return BoxDefinition{}, fmt.Errorf("schema: openapi schema %q has no properties", schemaName)
	}

	names := make([]string, 0, len(src.Properties))
	for name := range src.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	box := BoxDefinition{
		ID:    strings.ToLower(schemaName),
		Title: src.Title,
	}
	if box.Title == "" {
		box.Title = schemaName
	}

	for _, name := range names {
		prop := src.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		field, err := fieldFromProperty(name, prop.Value)
		if err != nil {
			return BoxDefinition{}, fmt.Errorf("schema: openapi schema %q property %q: %w", schemaName, name, err)
		}
		box.Fields = append(box.Fields, field)
	}

	box = Normalize(box)
	if err := Validate(box); err != nil {
		return BoxDefinition{}, err
	}
	return box, nil
}

func fieldFromProperty(name string, prop *openapi3.Schema) (FieldDefinition, error) {
	field := FieldDefinition{
		ID:          name,
		Name:        labelFromName(name),
		Description: prop.Description,
	}
	if prop.Title != "" {
		field.Name = prop.Title
	}

	fieldType, err := deriveFieldType(prop)
	if err != nil {
		return FieldDefinition{}, err
	}
	field.Type = fieldType

	if override, ok := prop.Extensions[extensionFieldType].(string); ok && override != "" {
		candidate := FieldType(override)
		if !KnownType(candidate) {
			return FieldDefinition{}, fmt.Errorf("unknown %s %q", extensionFieldType, override)
		}
		field.Type = candidate
	}
	if multiple, ok := prop.Extensions[extensionMultiple].(bool); ok {
		field.Multiple = &multiple
	}

	for _, value := range enumValues(prop) {
		field.Options = append(field.Options, Option{Key: value, Label: labelFromName(value)})
	}
	if def, ok := prop.Default.(string); ok && def != "" {
		field.Default = def
	}
	return field, nil
}

func deriveFieldType(prop *openapi3.Schema) (FieldType, error) {
	switch primaryType(prop.Type) {
	case "boolean":
		return FieldTypeCheckbox, nil
	case "array":
		if prop.Items != nil && prop.Items.Value != nil && len(prop.Items.Value.Enum) > 0 {
			return FieldTypeCheckboxList, nil
		}
		return FieldTypeCheckboxList, nil
	case "string", "", "integer", "number":
		if len(prop.Enum) > 0 {
			return FieldTypeSelect, nil
		}
		switch prop.Format {
		case "date":
			return FieldTypeDate, nil
		case "time":
			return FieldTypeTime, nil
		case "binary":
			return FieldTypeFile, nil
		case "color":
			return FieldTypeColor, nil
		case "html", "rich-text":
			return FieldTypeWysiwyg, nil
		}
		return FieldTypeText, nil
	case "object":
		return "", fmt.Errorf("nested objects are not supported")
	default:
		return FieldTypeText, nil
	}
}

func primaryType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func enumValues(prop *openapi3.Schema) []string {
	raw := prop.Enum
	if len(raw) == 0 && prop.Items != nil && prop.Items.Value != nil {
		raw = prop.Items.Value.Enum
	}
	out := make([]string, 0, len(raw))
	for _, value := range raw {
		out = append(out, fmt.Sprint(value))
	}
	return out
}

func labelFromName(name string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(name))
	if cleaned == "" {
		return name
	}
	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
