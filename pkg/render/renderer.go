package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strconv"

	"github.com/cyberwani/metabox/pkg/schema"
)

// Option configures the Renderer.
type Option func(*Renderer)

// WithRegistry replaces the default strategy registry.
func WithRegistry(registry *Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// Renderer maps normalized box definitions plus stored values to HTML.
// It holds no per-request state and is safe for concurrent use.
type Renderer struct {
	registry *Registry
}

// New constructs a renderer applying any provided options.
func New(options ...Option) *Renderer {
	r := &Renderer{registry: NewDefaultRegistry()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Registry exposes the strategy registry, e.g. for custom field types.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// RenderBox renders the full field table of a box bound to the stored
// values of the content item in rc. The box must be normalized.
func (r *Renderer) RenderBox(ctx context.Context, box schema.BoxDefinition, rc Context) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`<table class="metabox-table">` + "\n")
	for _, field := range box.Fields {
		markup, err := r.RenderField(ctx, field, rc)
		if err != nil {
			return "", err
		}
		buf.WriteString(markup)
	}
	buf.WriteString(`</table>` + "\n")
	return buf.String(), nil
}

// RenderField renders a single field row: label cell, control markup
// from the type's strategy, and the description line.
func (r *Renderer) RenderField(ctx context.Context, field schema.FieldDefinition, rc Context) (string, error) {
	descriptor, ok := r.registry.Descriptor(field.Type)
	if !ok {
		return "", &UnsupportedTypeError{FieldID: field.ID, Type: field.Type}
	}

	state, err := r.resolveState(ctx, field, rc)
	if err != nil {
		return "", err
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, state); err != nil {
		return "", fmt.Errorf("render: field %q: %w", field.ID, err)
	}

	var buf bytes.Buffer
	buf.WriteString(`<tr>`)
	fmt.Fprintf(&buf, `<th class="metabox-label"><label for="%s">%s</label></th>`,
		attr(field.ID), html.EscapeString(field.Name))
	buf.WriteString(`<td class="metabox-field">`)
	buf.Write(control.Bytes())
	if !descriptor.handlesDescription && field.Description != "" {
		fmt.Fprintf(&buf, `<br />%s`, html.EscapeString(field.Description))
	}
	buf.WriteString(`</td></tr>` + "\n")
	return buf.String(), nil
}

// BoxAssets reports the stylesheet and script dependencies of the
// field types present in the box. The lifecycle controller consults
// this once at registration time.
func (r *Renderer) BoxAssets(box schema.BoxDefinition) (stylesheets []string, scripts []Script) {
	seen := make(map[schema.FieldType]struct{}, len(box.Fields))
	types := make([]schema.FieldType, 0, len(box.Fields))
	for _, field := range box.Fields {
		if _, dup := seen[field.Type]; dup {
			continue
		}
		seen[field.Type] = struct{}{}
		types = append(types, field.Type)
	}
	return r.registry.Assets(types)
}

func (r *Renderer) resolveState(ctx context.Context, field schema.FieldDefinition, rc Context) (fieldState, error) {
	state := fieldState{itemID: rc.ItemID, tokens: rc.Tokens}

	if rc.Values != nil {
		values, err := rc.Values.Values(ctx, rc.ItemID, field.ID)
		if err != nil {
			return fieldState{}, fmt.Errorf("render: read values for field %q: %w", field.ID, err)
		}
		state.values = values
	}
	if len(state.values) == 0 {
		state.values = defaultValues(field)
	}

	if needsAttachments(field.Type) && rc.Attachments != nil {
		attachments, err := rc.Attachments.ForField(ctx, rc.ItemID, field.ID)
		if err != nil {
			return fieldState{}, fmt.Errorf("render: list attachments for field %q: %w", field.ID, err)
		}
		// Keep source order (sort key), but only attachments the
		// stored values still reference.
		stored := make(map[string]struct{}, len(state.values))
		for _, v := range state.values {
			stored[v] = struct{}{}
		}
		for _, att := range attachments {
			if _, ok := stored[strconv.FormatInt(att.ID, 10)]; ok {
				state.attachments = append(state.attachments, att)
			}
		}
	}
	return state, nil
}

func needsAttachments(t schema.FieldType) bool {
	return t == schema.FieldTypeFile || t == schema.FieldTypeImage
}

func defaultValues(field schema.FieldDefinition) []string {
	switch def := field.Default.(type) {
	case nil:
		return nil
	case string:
		if def == "" {
			return nil
		}
		return []string{def}
	case []string:
		return append([]string(nil), def...)
	case []any:
		out := make([]string, 0, len(def))
		for _, v := range def {
			out = append(out, fmt.Sprint(v))
		}
		return out
	default:
		return []string{fmt.Sprint(def)}
	}
}
