// Command metabox-scaffold interactively assembles a box definition
// and writes it out as YAML, ready for the admin server's box
// directory.
package main

import (
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"gopkg.in/yaml.v3"

	"github.com/cyberwani/metabox/internal/log"
	"github.com/cyberwani/metabox/pkg/schema"
)

var fieldTypes = []string{
	string(schema.FieldTypeText),
	string(schema.FieldTypeTextarea),
	string(schema.FieldTypeWysiwyg),
	string(schema.FieldTypeSelect),
	string(schema.FieldTypeRadio),
	string(schema.FieldTypeCheckbox),
	string(schema.FieldTypeCheckboxList),
	string(schema.FieldTypeColor),
	string(schema.FieldTypeDate),
	string(schema.FieldTypeTime),
	string(schema.FieldTypeFile),
	string(schema.FieldTypeImage),
}

func main() {
	logger := log.New()

	box, err := promptBox()
	if err != nil {
		logger.Fatalf("aborted: %v", err)
	}

	normalized := schema.Normalize(*box)
	if err := schema.Validate(normalized); err != nil {
		logger.Fatalf("definition is invalid: %v", err)
	}

	out, err := yaml.Marshal(normalized)
	if err != nil {
		logger.Fatalf("failed to marshal definition: %v", err)
	}

	path := normalized.ID + ".yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		logger.Fatalf("failed to write %s: %v", path, err)
	}
	logger.Green.Fprintf(os.Stdout, "wrote %s\n", path)
}

func promptBox() (*schema.BoxDefinition, error) {
	box := &schema.BoxDefinition{}

	qs := []*survey.Question{
		{
			Name:     "id",
			Prompt:   &survey.Input{Message: "Box id (slug):"},
			Validate: survey.Required,
		},
		{
			Name:   "title",
			Prompt: &survey.Input{Message: "Box title:"},
		},
		{
			Name:   "pages",
			Prompt: &survey.Input{Message: "Pages (comma separated):", Default: schema.DefaultPage},
		},
		{
			Name: "context",
			Prompt: &survey.Select{
				Message: "Context:",
				Options: []string{"normal", "advanced", "side"},
				Default: schema.DefaultContext,
			},
		},
		{
			Name: "priority",
			Prompt: &survey.Select{
				Message: "Priority:",
				Options: []string{"high", "core", "default", "low"},
				Default: schema.DefaultPriority,
			},
		},
	}

	answers := struct {
		ID       string
		Title    string
		Pages    string
		Context  string
		Priority string
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return nil, err
	}

	box.ID = answers.ID
	box.Title = answers.Title
	box.Pages = splitList(answers.Pages)
	box.Context = answers.Context
	box.Priority = answers.Priority

	for {
		field, err := promptField()
		if err != nil {
			return nil, err
		}
		box.Fields = append(box.Fields, *field)

		more := false
		if err := survey.AskOne(&survey.Confirm{Message: "Add another field?", Default: true}, &more); err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return box, nil
}

func promptField() (*schema.FieldDefinition, error) {
	field := &schema.FieldDefinition{}

	var id, name, typeName, description string
	if err := survey.AskOne(&survey.Input{Message: "Field id:"}, &id, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}
	if err := survey.AskOne(&survey.Input{Message: "Field label:"}, &name); err != nil {
		return nil, err
	}
	if err := survey.AskOne(&survey.Select{Message: "Field type:", Options: fieldTypes}, &typeName); err != nil {
		return nil, err
	}
	if err := survey.AskOne(&survey.Input{Message: "Description (optional):"}, &description); err != nil {
		return nil, err
	}

	field.ID = id
	field.Name = name
	field.Type = schema.FieldType(typeName)
	field.Description = description

	switch field.Type {
	case schema.FieldTypeSelect, schema.FieldTypeRadio, schema.FieldTypeCheckboxList:
		options, err := promptOptions()
		if err != nil {
			return nil, err
		}
		field.Options = options
	}

	if field.Type == schema.FieldTypeSelect {
		multiple := false
		if err := survey.AskOne(&survey.Confirm{Message: "Allow multiple selections?"}, &multiple); err != nil {
			return nil, err
		}
		field.Multiple = &multiple
	}

	return field, nil
}

// promptOptions reads key=Label pairs until an empty entry.
func promptOptions() ([]schema.Option, error) {
	var options []schema.Option
	for {
		var entry string
		prompt := &survey.Input{
			Message: "Option (key=Label, empty to finish):",
			Help:    "Example: gloss=Glossy finish",
		}
		if err := survey.AskOne(prompt, &entry); err != nil {
			return nil, err
		}
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return options, nil
		}

		key, label, found := strings.Cut(entry, "=")
		if !found {
			label = key
		}
		options = append(options, schema.Option{Key: key, Label: label})
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
