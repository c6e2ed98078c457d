// Package cargo models a Cargo workspace as reported by `cargo metadata` and
// wraps the two cargo invocations a publishing run needs.
//
// # Graph Model
//
// [Metadata] mirrors the subset of `cargo metadata --format-version=1` output
// that matters for publishing: the package list and the resolve table. A
// [Package] whose Source is nil lives in the workspace (a local package); a
// non-nil Source means cargo resolved it from a registry or git and it is
// consumed as an ordinary versioned dependency.
//
// Package identifiers are opaque. Two packages may share a name while having
// different identifiers, for example when two versions of a crate are present
// in the resolved graph.
//
// [Graph] indexes a Metadata snapshot for id lookups. It is read-only after
// construction and safe for concurrent reads.
//
// # Commands
//
// [Cargo] runs `cargo metadata` and `cargo publish` through a [Runner], which
// tests replace with a fake.
package cargo
