package ruleset

import (
	"fmt"
	"path/filepath"
)

// Registry provides lookup of loaded species, paths and item templates.
type Registry struct {
	species map[string]*Species
	paths   map[string]*Path
	catalog *Catalog
}

// NewRegistry returns an empty Registry.
//
// Postcondition: Returns a non-nil *Registry ready to accept registrations.
func NewRegistry() *Registry {
	return &Registry{
		species: make(map[string]*Species),
		paths:   make(map[string]*Path),
		catalog: &Catalog{items: make(map[string]ItemTemplate)},
	}
}

// LoadRegistry loads the species, paths and items subdirectories of root.
// A missing subdirectory is an error.
func LoadRegistry(root string) (*Registry, error) {
	r := NewRegistry()
	species, err := LoadSpecies(filepath.Join(root, "species"))
	if err != nil {
		return nil, fmt.Errorf("loading species: %w", err)
	}
	for _, s := range species {
		r.RegisterSpecies(s)
	}
	paths, err := LoadPaths(filepath.Join(root, "paths"))
	if err != nil {
		return nil, fmt.Errorf("loading paths: %w", err)
	}
	for _, p := range paths {
		r.RegisterPath(p)
	}
	if r.catalog, err = LoadCatalog(filepath.Join(root, "items")); err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	return r, nil
}

// RegisterSpecies adds a species to the registry.
//
// Precondition: s must be non-nil with a non-empty ID.
// Postcondition: if called multiple times with the same ID, the last call wins.
func (r *Registry) RegisterSpecies(s *Species) {
	if s == nil || s.ID == "" {
		panic("Registry.RegisterSpecies: precondition violated: species must be non-nil with a non-empty ID")
	}
	r.species[s.ID] = s
}

// RegisterPath adds a path to the registry.
//
// Precondition: p must be non-nil with a non-empty ID.
// Postcondition: if called multiple times with the same ID, the last call wins.
func (r *Registry) RegisterPath(p *Path) {
	if p == nil || p.ID == "" {
		panic("Registry.RegisterPath: precondition violated: path must be non-nil with a non-empty ID")
	}
	r.paths[p.ID] = p
}

// Species returns the species for the given id, if registered.
func (r *Registry) Species(id string) (*Species, bool) {
	s, ok := r.species[id]
	return s, ok
}

// Path returns the path for the given id, if registered.
func (r *Registry) Path(id string) (*Path, bool) {
	p, ok := r.paths[id]
	return p, ok
}

// Catalog returns the item catalog. It is never nil.
func (r *Registry) Catalog() *Catalog { return r.catalog }
