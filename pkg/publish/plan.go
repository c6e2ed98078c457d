package publish

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Plan is the outcome of planning: what will be published, in which order,
// under which version.
type Plan struct {
	Upstream string   `json:"upstream" yaml:"upstream"`
	Commit   string   `json:"commit" yaml:"commit"`
	Prefix   string   `json:"prefix" yaml:"prefix"`
	Roots    []string `json:"roots" yaml:"roots"`
	// Current is the highest version published for any package in the plan.
	Current string `json:"current" yaml:"current"`
	// Version is assigned to every package in the plan.
	Version  string    `json:"version" yaml:"version"`
	Packages []Package `json:"packages" yaml:"packages"`
}

// Package is one entry of the publish order.
type Package struct {
	Name          string `json:"name" yaml:"name"`
	Published     string `json:"published" yaml:"published"`
	SourceVersion string `json:"source_version" yaml:"source_version"`
	// Current is the highest version of Published on the registry, 0.0.0 if none.
	Current      string `json:"current" yaml:"current"`
	ManifestPath string `json:"manifest_path" yaml:"manifest_path"`
	// Dependencies names the in-tree packages this one depends on. All of
	// them appear earlier in the plan.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Names returns the in-tree package names in publish order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Packages))
	for i, pkg := range p.Packages {
		names[i] = pkg.Name
	}
	return names
}

// Format selects a plan serialization.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Write serializes the plan to w.
func (p *Plan) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return p.writeText(w)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown plan format %q", format)
	}
}

func (p *Plan) writeText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s@%s: %d packages, %s -> %s\n", p.Upstream, shortCommit(p.Commit), len(p.Packages), p.Current, p.Version)
	for i, pkg := range p.Packages {
		fmt.Fprintf(&b, "%3d. %s (%s, published %s)", i+1, pkg.Published, pkg.Name, pkg.Current)
		if len(pkg.Dependencies) > 0 {
			fmt.Fprintf(&b, " <- %s", strings.Join(pkg.Dependencies, ", "))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
