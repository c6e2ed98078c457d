// Package github provides an HTTP client for the parts of GitHub a publishing
// run needs: the head commit of an upstream branch and the source tarball of
// that commit.
//
// # Usage
//
//	client := github.NewClient(token)
//	sha, err := client.LatestCommit(ctx, "rust-lang/rust", "master")
//	body, err := client.Tarball(ctx, "rust-lang/rust", sha)
//	defer body.Close()
//
// # Authentication
//
// A GitHub personal access token is optional. Without a token, the API is
// limited to 60 requests/hour, which is plenty for one lookup per run.
package github
