package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/docket/pkg/domain"
)

// Descriptor describes one document kind.
type Descriptor struct {
	Kind         domain.DocumentKind `yaml:"kind" json:"kind"`
	Label        string              `yaml:"label" json:"label"`
	Required     []string            `yaml:"required" json:"required"`
	Prompts      map[string]string   `yaml:"prompts" json:"prompts,omitempty"`
	Instructions string              `yaml:"instructions" json:"instructions,omitempty"`
}

// Catalog is a read-only lookup of descriptors.
type Catalog struct {
	order   []domain.DocumentKind
	kinds   map[domain.DocumentKind]Descriptor
	prompts map[string]string
	general Descriptor
}

// New builds a catalog from descriptors in menu order.
// The general kind may be included to override its label or instructions; it never has required fields.
func New(descriptors []Descriptor) (*Catalog, error) {
	c := &Catalog{
		kinds:   make(map[domain.DocumentKind]Descriptor, len(descriptors)),
		prompts: make(map[string]string),
		general: defaultGeneral,
	}
	for _, d := range descriptors {
		if err := Validate(d); err != nil {
			return nil, err
		}
		d = clone(d)
		if d.Kind.IsGeneral() {
			d.Required = nil
			c.general = d
			continue
		}
		if _, dup := c.kinds[d.Kind]; dup {
			return nil, fmt.Errorf("catalog: duplicate kind %q", d.Kind)
		}
		c.order = append(c.order, d.Kind)
		c.kinds[d.Kind] = d
		for field, prompt := range d.Prompts {
			// First descriptor to define a prompt for a shared field wins.
			if _, ok := c.prompts[field]; !ok {
				c.prompts[field] = prompt
			}
		}
	}
	return c, nil
}

// Validate checks that every required field has a prompt.
func Validate(d Descriptor) error {
	if strings.TrimSpace(string(d.Kind)) == "" {
		return fmt.Errorf("catalog: descriptor without kind")
	}
	seen := make(map[string]bool, len(d.Required))
	for _, field := range d.Required {
		if seen[field] {
			return fmt.Errorf("catalog: kind %q requires %q twice", d.Kind, field)
		}
		seen[field] = true
		if strings.TrimSpace(d.Prompts[field]) == "" {
			return fmt.Errorf("catalog: kind %q has no prompt for required field %q", d.Kind, field)
		}
	}
	return nil
}

// Lookup returns the descriptor for kind.
func (c *Catalog) Lookup(kind domain.DocumentKind) (Descriptor, error) {
	if kind.IsGeneral() {
		return clone(c.general), nil
	}
	d, ok := c.kinds[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	return clone(d), nil
}

// Has reports whether kind is known (general included).
func (c *Catalog) Has(kind domain.DocumentKind) bool {
	if kind.IsGeneral() {
		return true
	}
	_, ok := c.kinds[kind]
	return ok
}

// Kinds returns the document kinds in menu order. General is not listed.
func (c *Catalog) Kinds() []domain.DocumentKind {
	out := make([]domain.DocumentKind, len(c.order))
	copy(out, c.order)
	return out
}

// RequiredFields returns the ordered required keys for kind.
// General and unknown kinds have none.
func (c *Catalog) RequiredFields(kind domain.DocumentKind) []string {
	d, ok := c.kinds[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(d.Required))
	copy(out, d.Required)
	return out
}

// Label returns the human readable name of kind.
func (c *Catalog) Label(kind domain.DocumentKind) string {
	d, err := c.Lookup(kind)
	if err != nil || d.Label == "" {
		return string(kind)
	}
	return d.Label
}

// PromptFor returns the question used to ask for field.
func (c *Catalog) PromptFor(field string) string {
	if p, ok := c.prompts[field]; ok {
		return p
	}
	return FallbackPrompt(field)
}

// PromptForKind prefers the prompt defined by kind itself.
func (c *Catalog) PromptForKind(kind domain.DocumentKind, field string) string {
	if d, ok := c.kinds[kind]; ok {
		if p := strings.TrimSpace(d.Prompts[field]); p != "" {
			return p
		}
	}
	return c.PromptFor(field)
}

// Resolve maps a user choice (key, 1-based menu number or label) to a kind.
func (c *Catalog) Resolve(choice string) (domain.DocumentKind, bool) {
	choice = strings.TrimSpace(strings.ToLower(choice))
	choice = strings.TrimPrefix(choice, "doc_")
	if choice == "" {
		return "", false
	}
	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(c.order) {
			return c.order[n-1], true
		}
		return "", false
	}
	for _, k := range c.order {
		if string(k) == choice || strings.ToLower(c.kinds[k].Label) == choice {
			return k, true
		}
	}
	return "", false
}

// FallbackPrompt generates a prompt for a field without a custom one.
func FallbackPrompt(field string) string {
	return fmt.Sprintf("Please provide %s:", strings.ReplaceAll(field, "_", " "))
}

func clone(d Descriptor) Descriptor {
	out := d
	out.Required = append([]string(nil), d.Required...)
	out.Prompts = make(map[string]string, len(d.Prompts))
	for k, v := range d.Prompts {
		out.Prompts[k] = v
	}
	return out
}
