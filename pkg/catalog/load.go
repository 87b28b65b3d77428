package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a catalog.
type File struct {
	// Extend keeps the built-in kinds and replaces or appends the listed ones.
	Extend bool         `yaml:"extend"`
	Kinds  []Descriptor `yaml:"kinds"`
}

// Load reads a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if !f.Extend {
		if len(f.Kinds) == 0 {
			return nil, fmt.Errorf("catalog: no kinds defined")
		}
		return New(f.Kinds)
	}

	merged := Defaults()
	index := make(map[string]int, len(merged))
	for i, d := range merged {
		index[string(d.Kind)] = i
	}
	for _, d := range f.Kinds {
		if i, ok := index[string(d.Kind)]; ok {
			merged[i] = d
			continue
		}
		index[string(d.Kind)] = len(merged)
		merged = append(merged, d)
	}
	return New(merged)
}
