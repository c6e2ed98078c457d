package publish

import (
	"context"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/rustcap/pkg/cache"
	"github.com/matzehuels/rustcap/pkg/cargo"
	"github.com/matzehuels/rustcap/pkg/closure"
	"github.com/matzehuels/rustcap/pkg/config"
	"github.com/matzehuels/rustcap/pkg/errors"
	"github.com/matzehuels/rustcap/pkg/manifest"
	"github.com/matzehuels/rustcap/pkg/observability"
	"github.com/matzehuels/rustcap/pkg/source"
	"github.com/matzehuels/rustcap/pkg/version"
)

// MetadataSource produces `cargo metadata` JSON for a directory.
type MetadataSource interface {
	MetadataRaw(ctx context.Context, dir string) ([]byte, error)
}

// VersionSource reports the highest published version of a registry package.
type VersionSource interface {
	MaxVersion(ctx context.Context, name string) (*semver.Version, error)
}

// Planner computes a [Plan] for a checkout.
type Planner struct {
	Metadata MetadataSource
	Registry VersionSource
	Rewriter *manifest.Rewriter
	// Cache holds metadata snapshots keyed by commit and directory. Nil
	// disables caching.
	Cache  cache.Cache
	Logger *log.Logger
}

func (p *Planner) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}

// Plan resolves roots within co and arbitrates the version to publish.
func (p *Planner) Plan(ctx context.Context, co *source.Checkout, roots []config.Root) (*Plan, error) {
	names := make([]string, len(roots))
	for i, r := range roots {
		names[i] = r.Name
	}
	observability.Publish().OnPlanStart(ctx, names)
	start := time.Now()

	plan, err := p.plan(ctx, co, roots)

	var n int
	var v string
	if plan != nil {
		n, v = len(plan.Packages), plan.Version
	}
	observability.Publish().OnPlanComplete(ctx, n, v, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	plan.Roots = names
	return plan, nil
}

func (p *Planner) plan(ctx context.Context, co *source.Checkout, roots []config.Root) (*Plan, error) {
	pkgs, deps, err := p.resolve(ctx, co, roots)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Upstream: co.Repo,
		Commit:   co.Commit,
		Prefix:   p.Rewriter.Prefix,
		Packages: make([]Package, 0, len(pkgs)),
	}
	currents := make([]*semver.Version, 0, len(pkgs))
	for _, pkg := range pkgs {
		published := p.Rewriter.PublishedName(pkg.Name)
		if err := errors.ValidateCratesPackageName(published); err != nil {
			return nil, err
		}
		cur, err := p.Registry.MaxVersion(ctx, published)
		if err != nil {
			return nil, err
		}
		p.logger().Debug("registry version", "package", published, "version", cur)
		currents = append(currents, cur)
		plan.Packages = append(plan.Packages, Package{
			Name:          pkg.Name,
			Published:     published,
			SourceVersion: pkg.Version,
			Current:       cur.String(),
			ManifestPath:  pkg.ManifestPath,
			Dependencies:  deps[pkg.Name],
		})
	}

	current := version.Max(currents...)
	plan.Current = current.String()
	plan.Version = version.Next(current).String()
	return plan, nil
}

// resolve folds every root into one publish set and records, for each
// package, the names of the in-tree packages it depends on.
func (p *Planner) resolve(ctx context.Context, co *source.Checkout, roots []config.Root) ([]cargo.Package, map[string][]string, error) {
	w := closure.NewWalker()
	deps := make(map[string][]string)

	for _, root := range roots {
		dir := co.Path(root.Dir)
		g, err := p.graph(ctx, co.Commit, dir)
		if err != nil {
			return nil, nil, err
		}
		rp, err := g.Root(root.Name)
		if err != nil {
			return nil, nil, err
		}

		before := len(w.Packages())
		if err := w.Visit(g, rp); err != nil {
			return nil, nil, err
		}
		added := w.Packages()[before:]
		p.logger().Info("resolved root", "root", root.Name, "new", len(added), "total", len(w.Packages()))

		for _, pkg := range added {
			deps[pkg.Name] = localDeps(g, pkg)
		}
	}
	return w.Packages(), deps, nil
}

// localDeps returns the sorted names of pkg's in-tree dependencies. The walk
// has already validated every id it reaches.
func localDeps(g *cargo.Graph, pkg cargo.Package) []string {
	ids, _ := g.Dependencies(pkg.ID)
	var names []string
	for _, id := range ids {
		dep, ok := g.Package(id)
		if !ok || !dep.IsLocal() || slices.Contains(names, dep.Name) {
			continue
		}
		names = append(names, dep.Name)
	}
	slices.Sort(names)
	return names
}

func (p *Planner) graph(ctx context.Context, commit, dir string) (*cargo.Graph, error) {
	key := cache.MetadataKey(commit, dir)
	if p.Cache != nil {
		data, ok, err := p.Cache.Get(ctx, key)
		if err != nil {
			p.logger().Warn("metadata cache read failed", "dir", dir, "err", err)
		} else if ok {
			if m, err := cargo.ParseMetadata(data); err == nil {
				p.logger().Debug("metadata from cache", "dir", dir)
				return cargo.NewGraph(m), nil
			}
			_ = p.Cache.Delete(ctx, key)
		}
	}

	p.logger().Info("learning about the dependency graph", "dir", dir)
	data, err := p.Metadata.MetadataRaw(ctx, dir)
	if err != nil {
		return nil, err
	}
	m, err := cargo.ParseMetadata(data)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		// A commit's metadata never changes, so entries do not expire.
		if err := p.Cache.Set(ctx, key, data, 0); err != nil {
			p.logger().Warn("metadata cache write failed", "dir", dir, "err", err)
		}
	}
	return cargo.NewGraph(m), nil
}
