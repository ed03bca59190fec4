package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type document struct {
	Boxes []BoxDefinition `yaml:"boxes" json:"boxes"`
}

// Parse decodes a single YAML or JSON payload into box definitions.
// A document may declare either one box at the top level or a list
// under a "boxes" key. Every box is normalized and validated before it
// is returned.
func Parse(data []byte, name string) ([]BoxDefinition, error) {
	boxes, err := decode(data, name)
	if err != nil {
		return nil, err
	}

	out := make([]BoxDefinition, 0, len(boxes))
	for _, box := range boxes {
		box = Normalize(box)
		if err := Validate(box); err != nil {
			return nil, fmt.Errorf("schema: file %s: %w", name, err)
		}
		out = append(out, box)
	}
	return out, nil
}

// LoadFS walks the provided filesystem and parses every JSON/YAML box
// definition file. Files are visited in lexical order so load results
// are deterministic. A nil filesystem yields an empty slice.
func LoadFS(fsys fs.FS) ([]BoxDefinition, error) {
	if fsys == nil {
		return nil, nil
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("schema: walk definitions: %w", err)
	}
	sort.Strings(paths)

	var boxes []BoxDefinition
	seen := make(map[string]string)
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", path, err)
		}
		parsed, err := Parse(data, path)
		if err != nil {
			return nil, err
		}
		for _, box := range parsed {
			if prev, dup := seen[box.ID]; dup {
				return nil, fmt.Errorf("schema: duplicate box %q (files %s and %s)", box.ID, prev, path)
			}
			seen[box.ID] = path
		}
		boxes = append(boxes, parsed...)
	}
	return boxes, nil
}

func decode(data []byte, name string) ([]BoxDefinition, error) {
	ext := strings.ToLower(filepath.Ext(name))

	var doc document
	var single BoxDefinition
	if ext == ".json" {
		if err := json.Unmarshal(data, &doc); err == nil && len(doc.Boxes) > 0 {
			return doc.Boxes, nil
		}
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("schema: parse %s: %w", name, err)
		}
		return []BoxDefinition{single}, nil
	}

	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Boxes) > 0 {
		return doc.Boxes, nil
	}
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", name, err)
	}
	return []BoxDefinition{single}, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
