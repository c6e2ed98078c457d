package manifest

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Defaults used by [NewRewriter].
const (
	DefaultLicense        = "MIT / Apache-2.0"
	DefaultRepository     = "https://github.com/rust-lang/rust"
	DefaultUpstream       = "rust-lang/rust"
	DefaultToolRepository = "https://github.com/matzehuels/rustcap"
)

// Rewriter turns in-tree manifests into publishable ones.
type Rewriter struct {
	Prefix         string // Prepended to every published package name
	License        string // License string written to every package
	Repository     string // Repository URL written to every package
	Upstream       string // Upstream repository named in the description
	ToolRepository string // Where the publishing tool lives, named in the description
}

// NewRewriter returns a Rewriter with the default license and repositories.
func NewRewriter(prefix string) *Rewriter {
	return &Rewriter{
		Prefix:         prefix,
		License:        DefaultLicense,
		Repository:     DefaultRepository,
		Upstream:       DefaultUpstream,
		ToolRepository: DefaultToolRepository,
	}
}

// PublishedName returns the registry name for an in-tree package.
func (r *Rewriter) PublishedName(name string) string {
	return r.Prefix + "-" + name
}

// Description returns the package description for name built from commit.
func (r *Rewriter) Description(name, commit string) string {
	return fmt.Sprintf("Automatically published version of the package `%s` in the %s repository from commit %s. "+
		"The publishing script for this crate lives at: %s",
		name, r.Upstream, commit, r.ToolRepository)
}

// Rewrite edits doc in place so it describes the package name (as resolved
// in the workspace metadata, not as spelled in the file) published at
// version v from upstream commit.
//
// Three sections change:
//   - [package]: name, version, license, description and repository are set.
//   - [lib]: name and crate-type are removed.
//   - [dependencies]: path dependencies become registry dependencies pinned
//     to exactly v and aliased to the prefixed package. Other entries are
//     kept as they are.
//
// Everything else in the document is left untouched. A rewritten manifest no
// longer has path dependencies, so rewriting it again at another version
// leaves the old pins in place; rewrite from the unpacked manifest instead.
func (r *Rewriter) Rewrite(doc *Document, name string, v *semver.Version, commit string) error {
	if err := r.rewritePackage(doc.Root, name, v, commit); err != nil {
		return err
	}
	if err := rewriteLib(doc.Root); err != nil {
		return err
	}
	return r.rewriteDependencies(doc.Root, v)
}

func (r *Rewriter) rewritePackage(root *Table, name string, v *semver.Version, commit string) error {
	pkg, err := root.Table("package")
	if err != nil {
		return err
	}
	if pkg == nil {
		return errors.New(errors.ErrCodeInvalidManifest, "manifest for %s has no [package] table", name)
	}
	pkg.Set("name", String(r.PublishedName(name)))
	pkg.Set("version", String(v.String()))
	pkg.Set("license", String(r.License))
	pkg.Set("description", String(r.Description(name, commit)))
	pkg.Set("repository", String(r.Repository))
	return nil
}

// rewriteLib drops the target name override so the library is named after
// the renamed package, and crate-type so it is not built as a dylib.
func rewriteLib(root *Table) error {
	lib, err := root.Table("lib")
	if err != nil || lib == nil {
		return err
	}
	lib.Delete("name")
	lib.Delete("crate-type")
	return nil
}

func (r *Rewriter) rewriteDependencies(root *Table, v *semver.Version) error {
	deps, err := root.Table("dependencies")
	if err != nil || deps == nil {
		return err
	}
	root.Delete("dependencies")

	out := NewTable()
	for _, key := range deps.Keys() {
		entry, _ := deps.Get(key)
		dep, err := r.rewriteDependency(key, entry, v)
		if err != nil {
			return fmt.Errorf("dependency %q: %w", key, err)
		}
		out.Set(key, dep)
	}
	root.Set("dependencies", TableValue(out))
	return nil
}

func (r *Rewriter) rewriteDependency(key string, entry *Value, v *semver.Version) (*Value, error) {
	if entry.Kind() != KindTable {
		return entry, nil
	}
	table, _ := entry.AsTable()
	if !table.Has("path") {
		return entry, nil
	}

	dep := table.Clone()
	dep.Delete("path")
	dep.Set("version", String(v.String()))

	alias, ok, err := dep.StringAt("package")
	if err != nil {
		return nil, err
	}
	if !ok {
		alias = key
	}
	dep.Set("package", String(r.PublishedName(alias)))
	return TableValue(dep), nil
}

// RewriteFile loads the manifest at path, rewrites it and writes it back.
func (r *Rewriter) RewriteFile(path, name string, v *semver.Version, commit string) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	if err := r.Rewrite(doc, name, v, commit); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return doc.Save(path)
}
