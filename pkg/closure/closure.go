// Package closure computes the set of workspace packages that must be
// published for a set of root packages, in publish order.
//
// The walk is a depth-first post-order traversal: a package is appended only
// after every local dependency it reaches has been appended, so the result
// never lists a package before its in-tree dependencies. Registry and git
// dependencies (non-nil Source) are never entered or emitted.
//
// Deduplication is by package name, not id, and the first visit wins. This
// keeps cyclic and diamond-shaped graphs finite and means that if two
// versions of a local crate are reachable, only the first one the traversal
// meets is published.
package closure

import (
	"github.com/matzehuels/rustcap/pkg/cargo"
	"github.com/matzehuels/rustcap/pkg/errors"
)

// Walker accumulates a publish set across roots. Roots may come from
// different metadata snapshots; the seen set is shared, so a package already
// emitted for an earlier root is skipped for later ones.
//
// The zero value is not usable; use [NewWalker].
type Walker struct {
	seen  map[string]bool
	order []cargo.Package
}

// NewWalker returns an empty Walker.
func NewWalker() *Walker {
	return &Walker{seen: make(map[string]bool)}
}

// frame is one package on the explicit traversal stack.
type frame struct {
	pkg  *cargo.Package
	deps []string
	next int
}

// Visit walks root within g and appends every newly reached local package,
// dependencies first. Visiting a root whose name was already seen is a no-op.
//
// An id in the resolve table that is missing from the package list, or a
// local package with no resolve node, aborts the walk with
// [errors.ErrCodeMetadataCorrupt]. The Walker keeps whatever was appended
// before the failure.
func (w *Walker) Visit(g *cargo.Graph, root *cargo.Package) error {
	if w.seen[root.Name] {
		return nil
	}

	start, err := w.enter(g, root)
	if err != nil {
		return err
	}
	stack := []*frame{start}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.deps) {
			w.order = append(w.order, *top.pkg)
			stack = stack[:len(stack)-1]
			continue
		}

		id := top.deps[top.next]
		top.next++

		dep, ok := g.Package(id)
		if !ok {
			return errors.New(errors.ErrCodeMetadataCorrupt,
				"dependency %s of %s is not in the package list", id, top.pkg.Name)
		}
		if !dep.IsLocal() || w.seen[dep.Name] {
			continue
		}

		f, err := w.enter(g, dep)
		if err != nil {
			return err
		}
		stack = append(stack, f)
	}
	return nil
}

func (w *Walker) enter(g *cargo.Graph, p *cargo.Package) (*frame, error) {
	w.seen[p.Name] = true
	deps, ok := g.Dependencies(p.ID)
	if !ok {
		return nil, errors.New(errors.ErrCodeMetadataCorrupt,
			"failed to find resolve node for package %s", p.ID)
	}
	return &frame{pkg: p, deps: deps}, nil
}

// Packages returns the publish set accumulated so far, first-published first.
// The returned slice must not be modified.
func (w *Walker) Packages() []cargo.Package { return w.order }

// Resolve returns the publish set for roots within a single snapshot.
// Roots are processed in the given order.
func Resolve(g *cargo.Graph, roots ...*cargo.Package) ([]cargo.Package, error) {
	w := NewWalker()
	for _, r := range roots {
		if err := w.Visit(g, r); err != nil {
			return nil, err
		}
	}
	return w.Packages(), nil
}
