package cargo

import (
	"context"
	stderrors "errors"
	"slices"
	"testing"

	"github.com/matzehuels/rustcap/pkg/errors"
)

const metadataJSON = `{
  "packages": [
    {"id": "rustc_ast 0.0.0 (path+file:///src/rustc_ast)", "name": "rustc_ast", "version": "0.0.0", "source": null, "manifest_path": "/src/rustc_ast/Cargo.toml"},
    {"id": "rustc_span 0.0.0 (path+file:///src/rustc_span)", "name": "rustc_span", "version": "0.0.0", "source": null, "manifest_path": "/src/rustc_span/Cargo.toml"},
    {"id": "bitflags 1.3.2 (registry+https://github.com/rust-lang/crates.io-index)", "name": "bitflags", "version": "1.3.2", "source": "registry+https://github.com/rust-lang/crates.io-index", "manifest_path": "/reg/bitflags/Cargo.toml"}
  ],
  "resolve": {
    "nodes": [
      {"id": "rustc_ast 0.0.0 (path+file:///src/rustc_ast)", "dependencies": ["bitflags 1.3.2 (registry+https://github.com/rust-lang/crates.io-index)", "rustc_span 0.0.0 (path+file:///src/rustc_span)"]},
      {"id": "rustc_span 0.0.0 (path+file:///src/rustc_span)", "dependencies": []},
      {"id": "bitflags 1.3.2 (registry+https://github.com/rust-lang/crates.io-index)", "dependencies": []}
    ],
    "root": null
  },
  "workspace_members": [],
  "version": 1
}`

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	out   []byte
	err   error
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	return f.out, f.err
}

func TestParseMetadata(t *testing.T) {
	m, err := ParseMetadata([]byte(metadataJSON))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if len(m.Packages) != 3 {
		t.Fatalf("packages = %d, want 3", len(m.Packages))
	}
	if !m.Packages[0].IsLocal() {
		t.Error("rustc_ast should be local")
	}
	if m.Packages[2].IsLocal() {
		t.Error("bitflags should not be local")
	}
	if len(m.Resolve.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(m.Resolve.Nodes))
	}
}

func TestParseMetadata_Malformed(t *testing.T) {
	_, err := ParseMetadata([]byte(`{"packages": [`))
	if !errors.Is(err, errors.ErrCodeInvalidResponse) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidResponse)
	}
}

func TestGraph(t *testing.T) {
	m, _ := ParseMetadata([]byte(metadataJSON))
	g := NewGraph(m)

	p, ok := g.Package("rustc_span 0.0.0 (path+file:///src/rustc_span)")
	if !ok || p.Name != "rustc_span" {
		t.Errorf("Package = %v, %v", p, ok)
	}
	if _, ok := g.Package("missing"); ok {
		t.Error("Package(missing) should not be found")
	}

	deps, ok := g.Dependencies("rustc_ast 0.0.0 (path+file:///src/rustc_ast)")
	if !ok || len(deps) != 2 {
		t.Errorf("Dependencies = %v, %v", deps, ok)
	}
	if _, ok := g.Dependencies("missing"); ok {
		t.Error("Dependencies(missing) should not be found")
	}
}

func TestGraph_Root(t *testing.T) {
	m, _ := ParseMetadata([]byte(metadataJSON))
	g := NewGraph(m)

	root, err := g.Root("rustc_ast")
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if root.ManifestPath != "/src/rustc_ast/Cargo.toml" {
		t.Errorf("ManifestPath = %s", root.ManifestPath)
	}

	_, err = g.Root("rustc_parse")
	if !errors.Is(err, errors.ErrCodeMetadataCorrupt) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeMetadataCorrupt)
	}
}

func TestGraph_FindByNamePrefersLocal(t *testing.T) {
	reg := "registry+https://github.com/rust-lang/crates.io-index"
	g := NewGraph(&Metadata{Packages: []Package{
		{ID: "log 0.4.0 (registry)", Name: "log", Source: &reg},
		{ID: "log 0.0.0 (path)", Name: "log"},
	}})
	p, ok := g.FindByName("log")
	if !ok || p.ID != "log 0.0.0 (path)" {
		t.Errorf("FindByName = %v, want local package", p)
	}
}

func TestCargo_Metadata(t *testing.T) {
	r := &fakeRunner{out: []byte(metadataJSON)}
	c := &Cargo{Toolchain: "nightly", Runner: r}

	m, err := c.Metadata(context.Background(), "/src/rustc_ast")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if len(m.Packages) != 3 {
		t.Errorf("packages = %d, want 3", len(m.Packages))
	}

	want := []string{"+nightly", "metadata", "--format-version=1"}
	if len(r.calls) != 1 || r.calls[0].dir != "/src/rustc_ast" || !slices.Equal(r.calls[0].args, want) {
		t.Errorf("calls = %+v, want args %v", r.calls, want)
	}
}

func TestCargo_MetadataFailure(t *testing.T) {
	c := &Cargo{Runner: &fakeRunner{err: stderrors.New("exit status 101")}}
	_, err := c.Metadata(context.Background(), "/src")
	if !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeCommandFailed)
	}
}

func TestCargo_Publish(t *testing.T) {
	r := &fakeRunner{}
	c := &Cargo{Runner: r}

	if err := c.Publish(context.Background(), "/src/rustc_span"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := []string{"publish", "--allow-dirty", "--no-verify"}
	if !slices.Equal(r.calls[0].args, want) {
		t.Errorf("args = %v, want %v", r.calls[0].args, want)
	}

	r.err = stderrors.New("crate version `1.0.0` is already uploaded")
	err := c.Publish(context.Background(), "/src/rustc_span")
	if !errors.Is(err, errors.ErrCodePublishRejected) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodePublishRejected)
	}
}
