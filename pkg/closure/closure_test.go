package closure

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/rustcap/pkg/cargo"
	"github.com/matzehuels/rustcap/pkg/errors"
)

const registry = "registry+https://github.com/rust-lang/crates.io-index"

// builder assembles metadata snapshots for tests. Names ending in "!" are
// registry packages.
type builder struct {
	m cargo.Metadata
}

func id(name string) string { return name + " 0.0.0" }

func (b *builder) pkg(name string, deps ...string) *builder {
	p := cargo.Package{ID: id(name), Name: name, Version: "0.0.0"}
	if name[len(name)-1] == '!' {
		src := registry
		p.Source = &src
	}
	ids := make([]string, len(deps))
	for i, d := range deps {
		ids[i] = id(d)
	}
	b.m.Packages = append(b.m.Packages, p)
	b.m.Resolve.Nodes = append(b.m.Resolve.Nodes, cargo.Node{ID: p.ID, Dependencies: ids})
	return b
}

func (b *builder) graph() *cargo.Graph { return cargo.NewGraph(&b.m) }

func roots(t *testing.T, g *cargo.Graph, names ...string) []*cargo.Package {
	t.Helper()
	var out []*cargo.Package
	for _, n := range names {
		p, ok := g.Package(id(n))
		if !ok {
			t.Fatalf("no package %s", n)
		}
		out = append(out, p)
	}
	return out
}

func names(pkgs []cargo.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		build func(*builder)
		roots []string
		want  []string
	}{
		{
			name:  "single root without local deps",
			build: func(b *builder) { b.pkg("a", "log!").pkg("log!") },
			roots: []string{"a"},
			want:  []string{"a"},
		},
		{
			name:  "chain",
			build: func(b *builder) { b.pkg("a", "b").pkg("b", "c").pkg("c") },
			roots: []string{"a"},
			want:  []string{"c", "b", "a"},
		},
		{
			name:  "diamond",
			build: func(b *builder) { b.pkg("a", "b", "c").pkg("b", "d").pkg("c", "d").pkg("d") },
			roots: []string{"a"},
			want:  []string{"d", "b", "c", "a"},
		},
		{
			name:  "shared dependency across roots",
			build: func(b *builder) { b.pkg("a", "c").pkg("b", "c").pkg("c", "d!").pkg("d!") },
			roots: []string{"a", "b"},
			want:  []string{"c", "a", "b"},
		},
		{
			name: "later root inserts its own deps before itself",
			build: func(b *builder) {
				b.pkg("a", "c").pkg("b", "c", "e").pkg("c").pkg("e")
			},
			roots: []string{"a", "b"},
			want:  []string{"c", "a", "e", "b"},
		},
		{
			name:  "root reached by earlier root",
			build: func(b *builder) { b.pkg("a", "b").pkg("b") },
			roots: []string{"a", "b"},
			want:  []string{"b", "a"},
		},
		{
			name:  "external dependencies are not entered",
			build: func(b *builder) { b.pkg("a", "x!").pkg("x!", "b").pkg("b") },
			roots: []string{"a"},
			want:  []string{"a"},
		},
		{
			name:  "self dependency",
			build: func(b *builder) { b.pkg("a", "a", "b").pkg("b") },
			roots: []string{"a"},
			want:  []string{"b", "a"},
		},
		{
			name:  "cycle",
			build: func(b *builder) { b.pkg("a", "b").pkg("b", "c").pkg("c", "a") },
			roots: []string{"a"},
			want:  []string{"c", "b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &builder{}
			tt.build(b)
			g := b.graph()

			got, err := Resolve(g, roots(t, g, tt.roots...)...)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if diff := cmp.Diff(tt.want, names(got)); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_DedupByName(t *testing.T) {
	m := &cargo.Metadata{
		Packages: []cargo.Package{
			{ID: "a", Name: "a"},
			{ID: "b", Name: "b"},
			{ID: "c 1", Name: "c", Version: "1.0.0"},
			{ID: "c 2", Name: "c", Version: "2.0.0"},
		},
		Resolve: cargo.Resolve{Nodes: []cargo.Node{
			{ID: "a", Dependencies: []string{"c 1"}},
			{ID: "b", Dependencies: []string{"c 2"}},
			{ID: "c 1"},
			{ID: "c 2"},
		}},
	}
	g := cargo.NewGraph(m)
	a, _ := g.Package("a")
	b, _ := g.Package("b")

	got, err := Resolve(g, a, b)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, names(got)); diff != "" {
		t.Fatalf("Resolve() mismatch (-want +got):\n%s", diff)
	}
	if got[0].Version != "1.0.0" {
		t.Errorf("c version = %s, want first visited 1.0.0", got[0].Version)
	}
}

func TestResolve_MissingDependency(t *testing.T) {
	m := &cargo.Metadata{
		Packages: []cargo.Package{{ID: "a", Name: "a"}},
		Resolve:  cargo.Resolve{Nodes: []cargo.Node{{ID: "a", Dependencies: []string{"ghost"}}}},
	}
	g := cargo.NewGraph(m)
	a, _ := g.Package("a")

	_, err := Resolve(g, a)
	if !errors.Is(err, errors.ErrCodeMetadataCorrupt) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeMetadataCorrupt)
	}
}

func TestResolve_MissingResolveNode(t *testing.T) {
	m := &cargo.Metadata{
		Packages: []cargo.Package{{ID: "a", Name: "a"}, {ID: "b", Name: "b"}},
		Resolve:  cargo.Resolve{Nodes: []cargo.Node{{ID: "a", Dependencies: []string{"b"}}}},
	}
	g := cargo.NewGraph(m)
	a, _ := g.Package("a")

	_, err := Resolve(g, a)
	if !errors.Is(err, errors.ErrCodeMetadataCorrupt) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeMetadataCorrupt)
	}
}

func TestWalker_AcrossSnapshots(t *testing.T) {
	first := (&builder{}).pkg("rustc_ast", "rustc_span").pkg("rustc_span").graph()
	second := (&builder{}).pkg("rustc_parse", "rustc_ast", "rustc_span", "rustc_errors").
		pkg("rustc_ast", "rustc_span").pkg("rustc_span").pkg("rustc_errors", "rustc_span").graph()

	w := NewWalker()
	if err := w.Visit(first, roots(t, first, "rustc_ast")[0]); err != nil {
		t.Fatal(err)
	}
	if err := w.Visit(second, roots(t, second, "rustc_parse")[0]); err != nil {
		t.Fatal(err)
	}

	want := []string{"rustc_span", "rustc_ast", "rustc_errors", "rustc_parse"}
	if diff := cmp.Diff(want, names(w.Packages())); diff != "" {
		t.Errorf("Packages() mismatch (-want +got):\n%s", diff)
	}
}

// TestResolve_RandomDAGs checks the ordering invariants on generated graphs:
// every reachable local package appears exactly once and after all of its
// local dependencies.
func TestResolve_RandomDAGs(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for iter := range 200 {
		n := 2 + rng.IntN(25)
		m := &cargo.Metadata{}
		for i := range n {
			name := fmt.Sprintf("p%d", i)
			p := cargo.Package{ID: id(name), Name: name}
			if rng.IntN(5) == 0 {
				src := registry
				p.Source = &src
			}
			var deps []string
			for j := i + 1; j < n; j++ {
				if rng.IntN(4) == 0 {
					deps = append(deps, id(fmt.Sprintf("p%d", j)))
				}
			}
			m.Packages = append(m.Packages, p)
			m.Resolve.Nodes = append(m.Resolve.Nodes, cargo.Node{ID: p.ID, Dependencies: deps})
		}
		g := cargo.NewGraph(m)

		var rs []*cargo.Package
		for i := range 1 + rng.IntN(3) {
			p, _ := g.Package(id(fmt.Sprintf("p%d", i)))
			if p.IsLocal() {
				rs = append(rs, p)
			}
		}
		if len(rs) == 0 {
			continue
		}

		got, err := Resolve(g, rs...)
		if err != nil {
			t.Fatalf("iter %d: %v", iter, err)
		}

		pos := make(map[string]int)
		for i, p := range got {
			if _, dup := pos[p.Name]; dup {
				t.Fatalf("iter %d: %s emitted twice", iter, p.Name)
			}
			pos[p.Name] = i
		}

		reach := reachable(g, rs)
		if len(reach) != len(got) {
			t.Fatalf("iter %d: got %d packages, want %d", iter, len(got), len(reach))
		}
		for _, p := range got {
			if !p.IsLocal() && !isRoot(rs, p.Name) {
				t.Fatalf("iter %d: external %s emitted", iter, p.Name)
			}
			deps, _ := g.Dependencies(p.ID)
			for _, d := range deps {
				dp, _ := g.Package(d)
				if !dp.IsLocal() {
					continue
				}
				if pos[dp.Name] >= pos[p.Name] {
					t.Fatalf("iter %d: %s emitted before its dependency %s", iter, p.Name, dp.Name)
				}
			}
		}
	}
}

func isRoot(rs []*cargo.Package, name string) bool {
	for _, r := range rs {
		if r.Name == name {
			return true
		}
	}
	return false
}

func reachable(g *cargo.Graph, rs []*cargo.Package) map[string]bool {
	out := make(map[string]bool)
	var visit func(p *cargo.Package)
	visit = func(p *cargo.Package) {
		if out[p.Name] {
			return
		}
		out[p.Name] = true
		deps, _ := g.Dependencies(p.ID)
		for _, d := range deps {
			if dp, _ := g.Package(d); dp.IsLocal() {
				visit(dp)
			}
		}
	}
	for _, r := range rs {
		visit(r)
	}
	return out
}
