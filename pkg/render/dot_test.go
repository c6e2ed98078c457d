package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/rustcap/pkg/publish"
)

func testPlan() *publish.Plan {
	return &publish.Plan{
		Upstream: "rust-lang/rust",
		Commit:   "0123456789abcdef0123456789abcdef01234567",
		Roots:    []string{"a", "b"},
		Version:  "3.0.0",
		Packages: []publish.Package{
			{Name: "c", Published: "rustc-ap-c", Current: "2.0.0"},
			{Name: "a", Published: "rustc-ap-a", Current: "0.0.0", Dependencies: []string{"c"}},
			{Name: "b", Published: "rustc-ap-b", Current: "0.0.0", Dependencies: []string{"c"}},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testPlan(), Options{})

	for _, want := range []string{
		"digraph G {",
		`"c" [label="rustc-ap-c"];`,
		`"a" [label="rustc-ap-a", penwidth=2`,
		`"a" -> "c";`,
		`"b" -> "c";`,
		`label="rust-lang/rust@0123456789ab -> 3.0.0";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"c" ->`) {
		t.Errorf("c has no in-tree dependencies, got an edge:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testPlan(), Options{Detailed: true})
	if !strings.Contains(dot, `label="rustc-ap-a\nsource: a\norder: 2\nregistry: 0.0.0"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox should leave SVG without viewBox unchanged")
	}
}
