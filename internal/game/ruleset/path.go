package ruleset

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Path defines an advancement path: its tier and the skills it trains.
//
// Precondition: ID and Name must be non-empty and Tier in [1, 3] after loading.
type Path struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Tier        int     `yaml:"tier"`
	Skills      []Grant `yaml:"skills"`
}

// Validate reports every problem with p.
func (p *Path) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if p.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if p.Tier < 1 || p.Tier > 3 {
		errs = append(errs, fmt.Errorf("tier %d must be in [1, 3]", p.Tier))
	}
	for _, g := range p.Skills {
		if err := g.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadPaths reads all .yaml files in dir and parses each as a Path.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed paths (may be empty slice) or a non-nil error.
func LoadPaths(dir string) ([]*Path, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*Path, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		var p Path
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing path file %s: %w", file, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid path in %s: %w", file, err)
		}
		out = append(out, &p)
	}
	return out, nil
}
