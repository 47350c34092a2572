// Package catalog holds the puzzle-type templates a book can draw pages
// from. A catalog is loaded once and never mutated afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrUnknown is returned when a template identifier is not in the catalog.
var ErrUnknown = errors.New("unknown puzzle template")

// Template describes one puzzle type.
type Template struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Rules   string   `yaml:"rules"`
	Example *Example `yaml:"example,omitempty"`
}

// Example is a worked sample page for a template. Its JSON form uses the
// same keys the model is asked to produce.
type Example struct {
	Title       string `yaml:"nadpis" json:"nadpis"`
	Task        string `yaml:"zadani" json:"zadani"`
	Code        string `yaml:"kod" json:"kod"`
	ImagePrompt string `yaml:"prompt" json:"prompt"`
}

// Catalog is an immutable, ordered set of templates plus the shared
// illustration style directive.
type Catalog struct {
	style     string
	templates []Template
	byID      map[string]int
}

type document struct {
	Style     string     `yaml:"style"`
	Templates []Template `yaml:"templates"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load decodes and validates a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i := range doc.Templates {
		doc.Templates[i].Rules = strings.TrimSpace(doc.Templates[i].Rules)
	}
	if err := validate(doc.Templates); err != nil {
		return nil, err
	}

	c := &Catalog{
		style:     strings.TrimSpace(doc.Style),
		templates: doc.Templates,
		byID:      make(map[string]int, len(doc.Templates)),
	}
	for i, t := range c.templates {
		c.byID[t.ID] = i
	}
	return c, nil
}

// validate reports every structural problem at once.
func validate(templates []Template) error {
	if len(templates) == 0 {
		return fmt.Errorf("catalog has no templates")
	}

	var errs []string
	seen := make(map[string]bool, len(templates))
	for i, t := range templates {
		switch {
		case t.ID == "":
			errs = append(errs, fmt.Sprintf("template #%d has no id", i+1))
		case seen[t.ID]:
			errs = append(errs, fmt.Sprintf("duplicate template id: %q", t.ID))
		}
		seen[t.ID] = true

		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Sprintf("template %q has no name", t.ID))
		}
		if t.Rules == "" {
			errs = append(errs, fmt.Sprintf("template %q has no rules", t.ID))
		}
		if t.Example != nil {
			if missing := t.Example.missing(); len(missing) > 0 {
				errs = append(errs, fmt.Sprintf("template %q example lacks %s", t.ID, strings.Join(missing, ", ")))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (e *Example) missing() []string {
	var out []string
	if e.Title == "" {
		out = append(out, "nadpis")
	}
	if e.Task == "" {
		out = append(out, "zadani")
	}
	if e.Code == "" {
		out = append(out, "kod")
	}
	if e.ImagePrompt == "" {
		out = append(out, "prompt")
	}
	return out
}

// Style returns the visual style directive shared by every page.
func (c *Catalog) Style() string {
	return c.style
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Lookup returns the template with the given id.
func (c *Catalog) Lookup(id string) (Template, error) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknown, id)
	}
	return c.templates[i], nil
}

// Resolve looks up ids in order. Repeated ids yield repeated templates.
func (c *Catalog) Resolve(ids []string) ([]Template, error) {
	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		t, err := c.Lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// All returns every template in catalog order.
func (c *Catalog) All() []Template {
	return slices.Clone(c.templates)
}

// IDs returns every template id in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.templates))
	for i, t := range c.templates {
		ids[i] = t.ID
	}
	return ids
}

// Pick selects n template ids at random. Ids are distinct while n fits
// the catalog; beyond that they are drawn with repetition.
func (c *Catalog) Pick(n int, rng *rand.Rand) []string {
	if n <= 0 {
		return nil
	}
	ids := c.IDs()
	if n > len(ids) {
		out := make([]string, n)
		for i := range out {
			out[i] = ids[rng.IntN(len(ids))]
		}
		return out
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids[:n]
}
