package ruleset

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

// ItemTemplate is a catalog entry an owned item can be created from.
type ItemTemplate struct {
	ID     string         `yaml:"id"`
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`
	System map[string]any `yaml:"system"`
}

type catalogFile struct {
	Items []ItemTemplate `yaml:"items"`
}

// Catalog holds item templates keyed by template id.
type Catalog struct {
	items map[string]ItemTemplate
}

// LoadCatalog reads every .yaml file in dir. Each file holds an "items" list.
// Templates are normalized on load, so a catalog never hands out a malformed item.
//
// Precondition: dir must be a readable directory path.
// Postcondition: returns an error naming the file for unknown item types,
// empty ids or names, and ids defined twice.
func LoadCatalog(dir string) (*Catalog, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	norm := character.NewNormalizer(nil)
	c := &Catalog{items: make(map[string]ItemTemplate)}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		var cf catalogFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parsing catalog file %s: %w", file, err)
		}
		for _, t := range cf.Items {
			if t.ID == "" || t.Name == "" {
				return nil, fmt.Errorf("catalog %s: item id and name must not be empty", file)
			}
			typ, ok := character.CanonicalItemType(t.Type)
			if !ok {
				return nil, fmt.Errorf("catalog %s: item %q has unknown type %q", file, t.ID, t.Type)
			}
			if _, dup := c.items[t.ID]; dup {
				return nil, fmt.Errorf("catalog %s: duplicate item id %q", file, t.ID)
			}
			rec, _ := norm.NormalizeItem(character.Record{"_id": t.ID, "name": t.Name, "type": string(typ), "system": t.System})
			sys, _ := rec["system"].(map[string]any)
			t.Type = string(typ)
			t.System = sys
			c.items[t.ID] = t
		}
	}
	return c, nil
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.items) }

// IDs returns the template ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Template returns the template with the given id.
func (c *Catalog) Template(id string) (ItemTemplate, bool) {
	t, ok := c.items[id]
	return t, ok
}

// Instantiate creates a new owned item record from a template. Each call
// yields a fresh item id and an independent copy of the system payload.
//
// Postcondition: returns false if id is not in the catalog.
func (c *Catalog) Instantiate(id string) (character.Record, bool) {
	t, ok := c.items[id]
	if !ok {
		return nil, false
	}
	// NormalizeItem deep-copies, so instances never share maps with the template.
	rec, _ := character.NewNormalizer(nil).NormalizeItem(character.Record{
		"_id":    uuid.NewString(),
		"name":   t.Name,
		"type":   t.Type,
		"system": t.System,
	})
	return rec, true
}
