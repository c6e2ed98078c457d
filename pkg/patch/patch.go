// Package patch applies the two text edits a compiler crate's entry point
// needs before it builds outside the rust-lang/rust tree.
//
// Both edits are workarounds for upstream sources and should go away once
// upstream no longer needs them:
//   - the first #![feature(...)] list starting a line gains rustc_private,
//     which standalone builds need to reach other compiler crates;
//   - everything from the first __build_diagnostic_array! invocation on is
//     replaced with a placeholder item, since that macro only exists inside
//     the upstream build.
//
// Both edits act on the first match only, and applying them to text that
// no longer contains the patterns returns it unchanged.
package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	featureOpener   = "\n#![feature("
	privateFeature  = "rustc_private"
	diagnosticMacro = "__build_diagnostic_array! {"
	placeholder     = "fn _foo() {}\n"
)

// Apply returns text with both edits applied.
func Apply(text string) string {
	return truncateDiagnostics(injectFeature(text))
}

func injectFeature(text string) string {
	var start int
	if strings.HasPrefix(text, featureOpener[1:]) {
		start = len(featureOpener) - 1
	} else if i := strings.Index(text, featureOpener); i >= 0 {
		start = i + len(featureOpener)
	} else {
		return text
	}
	if end := strings.Index(text[start:], ")"); end >= 0 && hasFeature(text[start:start+end], privateFeature) {
		return text
	}
	return text[:start] + privateFeature + ", " + text[start:]
}

func hasFeature(list, name string) bool {
	for _, f := range strings.Split(list, ",") {
		if strings.TrimSpace(f) == name {
			return true
		}
	}
	return false
}

func truncateDiagnostics(text string) string {
	i := strings.Index(text, diagnosticMacro)
	if i < 0 {
		return text
	}
	return text[:i] + placeholder
}

// File patches the file at path in place. It reports whether the content
// changed. A missing file is not an error.
func File(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read entry point: %w", err)
	}

	patched := Apply(string(data))
	if patched == string(data) {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(patched), 0o644); err != nil {
		return false, fmt.Errorf("write entry point: %w", err)
	}
	return true, nil
}

// EntryPoint returns the library entry point for a package whose manifest
// lives in dir. libPath is the manifest's [lib] path, if any. Without one,
// src/lib.rs is tried before lib.rs. The empty string means no entry point
// exists.
func EntryPoint(dir, libPath string) string {
	candidates := []string{"src/lib.rs", "lib.rs"}
	if libPath != "" {
		candidates = []string{libPath}
	}
	for _, c := range candidates {
		p := filepath.Join(dir, filepath.FromSlash(c))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
