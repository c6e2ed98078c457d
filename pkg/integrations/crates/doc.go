// Package crates provides an HTTP client for the crates.io API.
//
// Only one question is ever asked of crates.io: what is the highest version
// currently published for a crate. The answer feeds the version arbiter, which
// takes the maximum across the whole closure and bumps the major component.
//
//	client := crates.NewClient("")
//	v, err := client.MaxVersion(ctx, "rustc-ap-rustc_span")
//
// A crate that has never been published yields 0.0.0 rather than an error.
package crates
