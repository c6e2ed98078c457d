// Package publish drives a rustcap run.
//
// A run has two phases. The [Planner] resolves the publish set for the
// configured roots and asks the registry for the highest version already
// published, producing a [Plan]. The [Runner] then walks the plan in order:
// each package's manifest is rewritten, its entry point is patched, and it is
// handed to cargo for upload. Consecutive uploads are separated by a fixed
// delay so the registry index can catch up before a dependent package names
// the one just published.
//
// Any failure aborts the run. Packages published before the failure stay
// published; re-running recomputes the whole plan.
package publish
