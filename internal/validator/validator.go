package validator

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/docket/pkg/catalog"
	"gopkg.in/yaml.v3"
)

// ValidateCatalogFile reads a YAML catalog and reports every problem at once,
// where loading it would stop at the first.
func ValidateCatalogFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ValidateCatalog(data)
}

// ValidateCatalog checks catalog YAML for missing prompts, duplicate kinds or
// labels, kinds that clash with menu numbers and unreachable prompts.
func ValidateCatalog(data []byte) error {
	var f catalog.File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	var errors []string
	if len(f.Kinds) == 0 && !f.Extend {
		errors = append(errors, "no kinds defined")
	}

	kinds := make(map[string]bool)
	labels := make(map[string]string)
	for i, d := range f.Kinds {
		kind := strings.TrimSpace(string(d.Kind))
		where := fmt.Sprintf("kinds[%d]", i)
		if kind != "" {
			where = fmt.Sprintf("kind '%s'", kind)
		}

		if err := catalog.Validate(d); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %s", where, strings.TrimPrefix(err.Error(), "catalog: ")))
		}
		if kind == "" {
			continue
		}
		if kinds[kind] {
			errors = append(errors, fmt.Sprintf("%s: defined twice", where))
		}
		kinds[kind] = true
		if _, err := strconv.Atoi(kind); err == nil {
			errors = append(errors, fmt.Sprintf("%s: numeric kinds collide with menu numbers", where))
		}
		if label := strings.ToLower(strings.TrimSpace(d.Label)); label != "" {
			if other, dup := labels[label]; dup {
				errors = append(errors, fmt.Sprintf("%s: label '%s' already used by '%s'", where, d.Label, other))
			} else {
				labels[label] = kind
			}
		}

		required := make(map[string]bool, len(d.Required))
		for _, field := range d.Required {
			required[field] = true
		}
		for field := range d.Prompts {
			if !required[field] {
				errors = append(errors, fmt.Sprintf("%s: prompt for '%s' is never asked", where, field))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	if _, err := catalog.Parse(data); err != nil {
		return err
	}
	return nil
}
