package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"congregationAPI/internal/types/achievement"
	"congregationAPI/internal/types/challenge"
)

//go:embed challenges.yaml
var defaultCatalog []byte

// Catalog is the versioned table of challenge templates. It is read-only after Load.
type Catalog struct {
	version   string
	templates []challenge.Template
	byID      map[string]int
}

type file struct {
	Version   string               `yaml:"version"`
	Templates []challenge.Template `yaml:"templates"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path falls back to the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Version, f.Templates)
}

// New validates templates and builds a catalog keeping declaration order.
func New(version string, templates []challenge.Template) (*Catalog, error) {
	c := &Catalog{
		version:   version,
		templates: make([]challenge.Template, 0, len(templates)),
		byID:      make(map[string]int, len(templates)),
	}
	for i, t := range templates {
		if err := validate(t); err != nil {
			return nil, fmt.Errorf("catalog template %d: %w", i, err)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("catalog template %d: duplicate id %q", i, t.ID)
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

func validate(t challenge.Template) error {
	switch {
	case t.ID == "":
		return fmt.Errorf("id is required")
	case achievement.ForChallenge(t.ID) == achievement.ChallengeCompleted:
		return fmt.Errorf("%s: id is reserved for %s", t.ID, achievement.ChallengeCompleted)
	case t.Title == "":
		return fmt.Errorf("%s: title is required", t.ID)
	case !t.Category.Valid():
		return fmt.Errorf("%s: unknown category %q", t.ID, t.Category)
	case !t.Difficulty.Valid():
		return fmt.Errorf("%s: unknown difficulty %q", t.ID, t.Difficulty)
	case !t.Type.Valid():
		return fmt.Errorf("%s: unknown progress type %q", t.ID, t.Type)
	case t.Target <= 0:
		return fmt.Errorf("%s: target must be positive", t.ID)
	case t.DurationDays != nil && *t.DurationDays <= 0:
		return fmt.Errorf("%s: durationDays must be positive", t.ID)
	}
	return nil
}

func (c *Catalog) Version() string {
	return c.version
}

// ListTemplates returns every template in declaration order.
func (c *Catalog) ListTemplates() []challenge.Template {
	out := make([]challenge.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

func (c *Catalog) Get(id string) (challenge.Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return challenge.Template{}, false
	}
	return c.templates[i], true
}

// AvailableFor returns the templates whose id is not in enrolled. A user who
// ever joined a template, active or completed, is not offered it again.
func (c *Catalog) AvailableFor(userID string, enrolled map[string]bool) []challenge.Template {
	out := make([]challenge.Template, 0, len(c.templates))
	for _, t := range c.templates {
		if enrolled[t.ID] {
			continue
		}
		out = append(out, t)
	}
	return out
}
