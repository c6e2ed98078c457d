package cargo

import (
	"encoding/json"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Metadata is a snapshot of a workspace's resolved dependency graph.
type Metadata struct {
	Packages []Package `json:"packages"`
	Resolve  Resolve   `json:"resolve"`
}

// Package is a node in the workspace graph.
type Package struct {
	ID           string  `json:"id"`            // Opaque, unique per name+version+source
	Name         string  `json:"name"`          // Crate name as written in its manifest
	Version      string  `json:"version"`       // Version in the resolved graph
	Source       *string `json:"source"`        // nil for in-tree packages
	ManifestPath string  `json:"manifest_path"` // Absolute path to Cargo.toml
}

// IsLocal reports whether the package comes from the workspace itself rather
// than from a registry or git source.
func (p Package) IsLocal() bool { return p.Source == nil }

// Resolve is the resolution table: one node per package id.
type Resolve struct {
	Nodes []Node `json:"nodes"`
}

// Node lists the resolved dependency ids of a single package.
type Node struct {
	ID           string   `json:"id"`
	Dependencies []string `json:"dependencies"`
}

// ParseMetadata decodes `cargo metadata --format-version=1` output.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidResponse, err, "decode cargo metadata")
	}
	return &m, nil
}

// Graph indexes a Metadata snapshot by package id.
type Graph struct {
	meta     *Metadata
	packages map[string]*Package
	deps     map[string][]string
}

// NewGraph indexes m. The snapshot is not validated here; dangling ids surface
// when a traversal reaches them.
func NewGraph(m *Metadata) *Graph {
	g := &Graph{
		meta:     m,
		packages: make(map[string]*Package, len(m.Packages)),
		deps:     make(map[string][]string, len(m.Resolve.Nodes)),
	}
	for i := range m.Packages {
		p := &m.Packages[i]
		g.packages[p.ID] = p
	}
	for _, n := range m.Resolve.Nodes {
		g.deps[n.ID] = n.Dependencies
	}
	return g
}

// Package returns the package with the given id.
func (g *Graph) Package(id string) (*Package, bool) {
	p, ok := g.packages[id]
	return p, ok
}

// Dependencies returns the resolved dependency ids of the package with the
// given id. ok is false if the resolve table has no node for it.
func (g *Graph) Dependencies(id string) (deps []string, ok bool) {
	deps, ok = g.deps[id]
	return deps, ok
}

// FindByName returns the first local package with the given name, falling
// back to the first package of any origin. Roots are always workspace crates,
// so a local match is preferred when a registry crate shares the name.
func (g *Graph) FindByName(name string) (*Package, bool) {
	var fallback *Package
	for i := range g.meta.Packages {
		p := &g.meta.Packages[i]
		if p.Name != name {
			continue
		}
		if p.IsLocal() {
			return p, true
		}
		if fallback == nil {
			fallback = p
		}
	}
	return fallback, fallback != nil
}

// Root looks up a root package by name. A missing root means the upstream
// tree changed shape and is reported as corrupt metadata.
func (g *Graph) Root(name string) (*Package, error) {
	p, ok := g.FindByName(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeMetadataCorrupt, "failed to find package %s in metadata", name)
	}
	return p, nil
}
