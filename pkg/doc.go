// Package pkg provides the libraries behind rustcap, which republishes the
// compiler-internal crates of the Rust source tree to crates.io.
//
// # Overview
//
// The pkg directory is organized by concern:
//
//  1. [cargo] - Running cargo and decoding `cargo metadata`
//  2. [closure] - Finding the in-tree crates a set of roots needs, in publish order
//  3. [version] - Picking the next version from the registry
//  4. [manifest] - Editing Cargo.toml for publishing
//  5. [patch] - Source patches applied to each library entry point
//  6. [publish] - Planning and running a publish
//  7. [source] - Fetching and unpacking upstream checkouts
//  8. [integrations] - crates.io and GitHub clients
//  9. [cache], [config], [errors], [observability], [render], [buildinfo]
//
// # Architecture
//
// A publish flows through the packages like this:
//
//	GitHub branch head
//	         ↓
//	    [source] (download and unpack the commit once)
//	         ↓
//	    [cargo] metadata per root, cached by commit
//	         ↓
//	    [closure] (post-order walk of local dependencies)
//	         ↓
//	    [version] (max of registry versions, then bump major)
//	         ↓
//	    [manifest] + [patch] per package
//	         ↓
//	    cargo publish, in order, with a delay between uploads
//
// [cargo]: github.com/matzehuels/rustcap/pkg/cargo
// [closure]: github.com/matzehuels/rustcap/pkg/closure
// [version]: github.com/matzehuels/rustcap/pkg/version
// [manifest]: github.com/matzehuels/rustcap/pkg/manifest
// [patch]: github.com/matzehuels/rustcap/pkg/patch
// [publish]: github.com/matzehuels/rustcap/pkg/publish
// [source]: github.com/matzehuels/rustcap/pkg/source
// [integrations]: github.com/matzehuels/rustcap/pkg/integrations
// [cache]: github.com/matzehuels/rustcap/pkg/cache
// [config]: github.com/matzehuels/rustcap/pkg/config
// [errors]: github.com/matzehuels/rustcap/pkg/errors
// [observability]: github.com/matzehuels/rustcap/pkg/observability
// [render]: github.com/matzehuels/rustcap/pkg/render
// [buildinfo]: github.com/matzehuels/rustcap/pkg/buildinfo
package pkg
