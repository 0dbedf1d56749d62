// Package ruleset loads species, path and item templates from YAML content
// and applies them to characters as proposed updates.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

// Grant is a skill rank granted by a species or path.
type Grant struct {
	Name      string `yaml:"name"`
	Rank      string `yaml:"rank"`
	Attribute string `yaml:"attribute"`
	Category  string `yaml:"category"`
}

func (g Grant) validate() error {
	if g.Name == "" {
		return errors.New("skill grant name must not be empty")
	}
	if _, ok := character.ParseRank(g.Rank); !ok {
		return fmt.Errorf("skill grant %q: unknown rank %q", g.Name, g.Rank)
	}
	return nil
}

// Species defines a playable species: attribute bonuses and granted skills.
//
// Precondition: ID and Name must be non-empty after loading.
type Species struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Article     string         `yaml:"article"`
	Description string         `yaml:"description"`
	Attributes  map[string]int `yaml:"attributes"`
	Skills      []Grant        `yaml:"skills"`
}

// DisplayName returns the species name with its grammatical article.
// If Article is empty, returns Name alone.
func (s *Species) DisplayName() string {
	if s.Article == "" {
		return s.Name
	}
	return s.Article + " " + s.Name
}

// Validate reports every problem with s.
func (s *Species) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if s.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	for name := range s.Attributes {
		if _, ok := (character.Attributes{}).Get(name); !ok {
			errs = append(errs, fmt.Errorf("unknown attribute %q", name))
		}
	}
	for _, g := range s.Skills {
		if err := g.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadSpecies reads all .yaml files in dir and parses each as a Species.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed species (may be empty slice) or a non-nil
// error; every returned species passes Validate.
func LoadSpecies(dir string) ([]*Species, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*Species, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var s Species
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing species file %s: %w", path, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid species in %s: %w", path, err)
		}
		out = append(out, &s)
	}
	return out, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
