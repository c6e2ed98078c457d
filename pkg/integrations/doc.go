// Package integrations provides HTTP clients for the services a publishing
// run talks to.
//
//   - [crates]: crates.io, for the currently published version of a package
//   - [github]: GitHub, for the latest upstream commit and its source tarball
//
// # Client Pattern
//
// Service clients embed [Client], which applies default headers, maps HTTP
// status codes to coded errors and decodes JSON bodies:
//
//	c := crates.NewClient("")
//	v, err := c.MaxVersion(ctx, "rustc-ap-rustc_ast")
//
// A 404 surfaces as an [errors.ErrCodeNotFound] error so callers can decide
// whether absence is meaningful. Every other non-200 status is an
// [errors.ErrCodeNetwork] error. Requests are never retried: a publishing run
// is a one-shot batch job, and a human re-runs it after looking at the failure.
//
// [crates]: github.com/matzehuels/rustcap/pkg/integrations/crates
// [github]: github.com/matzehuels/rustcap/pkg/integrations/github
package integrations
