package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/cyberwani/metabox/pkg/schema"
	"github.com/cyberwani/metabox/pkg/token"
)

// Logical asset paths referenced by descriptors. The HTTP layer mounts
// them under the asset base URL.
const (
	StylesheetName   = "meta-box.css"
	ClientScriptName = "meta-box.js"

	pickerStylesheet  = "vendor/pickers.css"
	pickerScript      = "vendor/pickers.js"
	mediaPickerScript = "vendor/media-picker.js"
)

// NewDefaultRegistry constructs a registry pre-populated with the
// strategies for the twelve built-in field types.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()

	registry.MustRegister(schema.FieldTypeText, Descriptor{Renderer: textStrategy})
	registry.MustRegister(schema.FieldTypeTextarea, Descriptor{Renderer: textareaStrategy})
	registry.MustRegister(schema.FieldTypeWysiwyg, Descriptor{Renderer: wysiwygStrategy})
	registry.MustRegister(schema.FieldTypeSelect, Descriptor{Renderer: selectStrategy})
	registry.MustRegister(schema.FieldTypeRadio, Descriptor{Renderer: radioStrategy})
	registry.MustRegister(schema.FieldTypeCheckbox, Descriptor{
		Renderer:           checkboxStrategy,
		handlesDescription: true,
	})
	registry.MustRegister(schema.FieldTypeCheckboxList, Descriptor{Renderer: checkboxListStrategy})
	registry.MustRegister(schema.FieldTypeColor, Descriptor{
		Renderer:    colorStrategy,
		Stylesheets: []string{pickerStylesheet},
		Scripts:     []Script{{Src: pickerScript, Defer: true}},
	})
	registry.MustRegister(schema.FieldTypeDate, Descriptor{
		Renderer:    dateStrategy,
		Stylesheets: []string{pickerStylesheet},
		Scripts:     []Script{{Src: pickerScript, Defer: true}},
	})
	registry.MustRegister(schema.FieldTypeTime, Descriptor{
		Renderer:    timeStrategy,
		Stylesheets: []string{pickerStylesheet},
		Scripts:     []Script{{Src: pickerScript, Defer: true}},
	})
	registry.MustRegister(schema.FieldTypeFile, Descriptor{
		Renderer:           fileStrategy,
		Scripts:            []Script{{Src: mediaPickerScript, Defer: true}},
		handlesDescription: true,
	})
	registry.MustRegister(schema.FieldTypeImage, Descriptor{
		Renderer:           imageStrategy,
		Scripts:            []Script{{Src: mediaPickerScript, Defer: true}},
		handlesDescription: true,
	})

	return registry
}

func attr(value string) string {
	return html.EscapeString(value)
}

func textStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	fmt.Fprintf(buf, `<input type="text" class="metabox-text" name="%s" id="%s" value="%s" size="30" />`,
		attr(field.ID), attr(field.ID), attr(st.first()))
	return nil
}

func textareaStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	fmt.Fprintf(buf, `<textarea class="metabox-textarea large-text" name="%s" id="%s" cols="60" rows="10">%s</textarea>`,
		attr(field.ID), attr(field.ID), html.EscapeString(st.first()))
	return nil
}

// wysiwygStrategy emits a textarea carrying the rich-editor marker
// class; the host's editor integration upgrades it client side.
func wysiwygStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	fmt.Fprintf(buf, `<textarea class="metabox-wysiwyg the-editor large-text" name="%s" id="%s" cols="60" rows="10">%s</textarea>`,
		attr(field.ID), attr(field.ID), html.EscapeString(st.first()))
	return nil
}

func selectStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	if field.IsMultiple() {
		fmt.Fprintf(buf, `<select class="metabox-select" name="%s[]" id="%s" multiple="multiple">`, attr(field.ID), attr(field.ID))
	} else {
		fmt.Fprintf(buf, `<select class="metabox-select" name="%s" id="%s">`, attr(field.ID), attr(field.ID))
	}
	for _, option := range field.Options {
		selected := ""
		if st.contains(option.Key) {
			selected = ` selected="selected"`
		}
		fmt.Fprintf(buf, `<option value="%s"%s>%s</option>`, attr(option.Key), selected, html.EscapeString(option.Label))
	}
	buf.WriteString(`</select>`)
	return nil
}

func radioStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	for _, option := range field.Options {
		checked := ""
		if st.first() == option.Key {
			checked = ` checked="checked"`
		}
		fmt.Fprintf(buf, `<input type="radio" class="metabox-radio" name="%s" value="%s"%s /> %s `,
			attr(field.ID), attr(option.Key), checked, html.EscapeString(option.Label))
	}
	return nil
}

func checkboxStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	checked := ""
	if st.first() != "" {
		checked = ` checked="checked"`
	}
	fmt.Fprintf(buf, `<input type="checkbox" class="metabox-checkbox" name="%s" id="%s"%s /> %s`,
		attr(field.ID), attr(field.ID), checked, html.EscapeString(field.Description))
	return nil
}

func checkboxListStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	rows := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		checked := ""
		if st.contains(option.Key) {
			checked = ` checked="checked"`
		}
		rows = append(rows, fmt.Sprintf(`<input type="checkbox" class="metabox-checkbox-list" name="%s[]" value="%s"%s /> %s`,
			attr(field.ID), attr(option.Key), checked, html.EscapeString(option.Label)))
	}
	buf.WriteString(strings.Join(rows, `<br />`))
	return nil
}

func colorStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	value := st.first()
	if value == "" {
		value = "#"
	}
	fmt.Fprintf(buf, `<input type="text" class="metabox-color" name="%s" id="%s" value="%s" size="8" />`,
		attr(field.ID), attr(field.ID), attr(value))
	fmt.Fprintf(buf, `<a href="#" class="metabox-color-select" data-target="%s">Select a color</a>`, attr(field.ID))
	fmt.Fprintf(buf, `<div style="display:none" class="metabox-color-picker" data-target="%s"></div>`, attr(field.ID))
	return nil
}

func dateStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	fmt.Fprintf(buf, `<input type="text" class="metabox-date" name="%s" id="%s" data-format="%s" value="%s" size="30" />`,
		attr(field.ID), attr(field.ID), attr(field.Format), attr(st.first()))
	return nil
}

func timeStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	fmt.Fprintf(buf, `<input type="text" class="metabox-time" name="%s" id="%s" data-format="%s" value="%s" size="30" />`,
		attr(field.ID), attr(field.ID), attr(field.Format), attr(st.first()))
	return nil
}

func fileStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	if field.Description != "" {
		fmt.Fprintf(buf, `%s<br />`, html.EscapeString(field.Description))
	}

	if len(st.attachments) > 0 {
		deleteToken := issueToken(st.tokens, token.ScopeDelete, token.FieldSubject(st.itemID, field.ID))
		buf.WriteString(`<div class="metabox-uploaded"><strong>Uploaded files</strong></div>`)
		buf.WriteString(`<ol class="metabox-upload">`)
		for _, att := range st.attachments {
			fmt.Fprintf(buf, `<li><a href="%s">%s</a> (<a class="metabox-delete-file" href="#" data-payload="%d|%d|%s|%s">Delete</a>)</li>`,
				attr(att.URL), html.EscapeString(att.Filename), att.ID, st.itemID, attr(field.ID), attr(deleteToken))
		}
		buf.WriteString(`</ol>`)
	}

	buf.WriteString(`<div class="metabox-new-files"><strong>Upload new files</strong>`)
	fmt.Fprintf(buf, `<div class="metabox-file-input"><input type="file" name="%s[]" /></div>`, attr(field.ID))
	buf.WriteString(`<a class="metabox-add-file" href="#">Add more files</a></div>`)
	return nil
}

func imageStrategy(buf *bytes.Buffer, field schema.FieldDefinition, st fieldState) error {
	if field.Description != "" {
		fmt.Fprintf(buf, `%s<br />`, html.EscapeString(field.Description))
	}

	deleteToken := issueToken(st.tokens, token.ScopeDelete, token.FieldSubject(st.itemID, field.ID))
	reorderToken := issueToken(st.tokens, token.ScopeReorder, token.FieldSubject(st.itemID, field.ID))

	fmt.Fprintf(buf, `<input type="hidden" class="metabox-images-data" value="%d|%s|%s" />`,
		st.itemID, attr(field.ID), attr(reorderToken))
	fmt.Fprintf(buf, `<ul class="metabox-images metabox-upload" id="metabox-images-%s">`, attr(field.ID))
	for _, att := range st.attachments {
		fmt.Fprintf(buf, `<li id="item_%d">`, att.ID)
		fmt.Fprintf(buf, `<img src="%s" />`, attr(att.URL))
		fmt.Fprintf(buf, `<a title="Delete this image" class="metabox-delete-file" href="#" data-payload="%d|%d|%s|%s">Delete</a>`,
			att.ID, st.itemID, attr(field.ID), attr(deleteToken))
		fmt.Fprintf(buf, `<input type="hidden" name="%s[]" value="%d" />`, attr(field.ID), att.ID)
		buf.WriteString(`</li>`)
	}
	buf.WriteString(`</ul>`)
	fmt.Fprintf(buf, `<a href="#" class="metabox-upload-button button" data-target="%d|%s">Add more images</a>`,
		st.itemID, attr(field.ID))
	return nil
}

func issueToken(issuer TokenIssuer, scope token.Scope, subject string) string {
	if issuer == nil {
		return ""
	}
	return issuer.Issue(scope, subject)
}
