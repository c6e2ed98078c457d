// Package manifest parses, edits and re-serializes Cargo.toml files.
//
// # Document Tree
//
// A manifest is held as a tree of [Value] nodes. Each node carries a [Kind]
// (string, integer, float, boolean, datetime, array or table) and exposes
// typed accessors such as [Value.AsTable] and [Value.AsString] that fail with
// an [errors.ErrCodeInvalidManifest] error when the node has another shape.
// Code that edits a manifest therefore never type-asserts raw decoder output.
//
// Every key survives a [Parse]/[Document.Encode] round trip, including keys
// this package knows nothing about. Formatting does not: comments are
// dropped, keys are written in sorted order, and inline tables become
// standard tables. The result is semantically equal to the input.
//
// # Rewriting
//
// [Rewriter] turns an in-tree manifest into one that can be published to
// crates.io under a prefixed name:
//
//	rw := manifest.NewRewriter("rustc-ap")
//	doc, _ := manifest.Load("compiler/rustc_ast/Cargo.toml")
//	_ = rw.Rewrite(doc, "rustc_ast", semver.MustParse("700.0.0"), commit)
//	_ = doc.Save("compiler/rustc_ast/Cargo.toml")
//
// Only the [package] identity fields, [lib] name/crate-type and the
// [dependencies] table are touched. Everything else passes through.
package manifest
