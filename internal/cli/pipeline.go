package cli

import (
	"context"
	"fmt"

	"github.com/matzehuels/rustcap/pkg/config"
	"github.com/matzehuels/rustcap/pkg/integrations/crates"
	"github.com/matzehuels/rustcap/pkg/integrations/github"
	"github.com/matzehuels/rustcap/pkg/publish"
	"github.com/matzehuels/rustcap/pkg/source"
)

// checkout resolves the upstream commit and makes sure its sources are
// unpacked under the work directory.
func (c *CLI) checkout(ctx context.Context, cfg *config.Config) (*source.Checkout, error) {
	gh := github.NewClient(cfg.GitHub.Token).WithBaseURLs(cfg.GitHub.API, "")

	commit := cfg.Upstream.Commit
	if commit == "" {
		sha, err := gh.LatestCommit(ctx, cfg.Upstream.Repo, cfg.Upstream.Branch)
		if err != nil {
			return nil, err
		}
		commit = sha
		c.Logger.Info("latest commit", "repo", cfg.Upstream.Repo, "branch", cfg.Upstream.Branch, "commit", commit)
	}

	if source.Ready(cfg.WorkDir, cfg.Upstream.Repo, commit) {
		c.Logger.Debug("reusing checkout", "dir", source.Dir(cfg.WorkDir, cfg.Upstream.Repo, commit))
		co, _, err := source.Fetch(ctx, gh, cfg.WorkDir, cfg.Upstream.Repo, commit)
		return co, err
	}

	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, c.Stderr, "downloading source tarball")
	spin.Start()
	co, _, err := source.Fetch(ctx, gh, cfg.WorkDir, cfg.Upstream.Repo, commit)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Unpacked %s", co.Dir))
	return co, nil
}

// plan resolves the publish set and version for cfg.
func (c *CLI) plan(ctx context.Context, cfg *config.Config) (*publish.Plan, *source.Checkout, error) {
	roots, err := cfg.ParseRoots()
	if err != nil {
		return nil, nil, err
	}

	co, err := c.checkout(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	mc, err := newCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer mc.Close()

	planner := &publish.Planner{
		Metadata: c.newCargo(cfg),
		Registry: crates.NewClient(cfg.Registry.API),
		Rewriter: newRewriter(cfg),
		Cache:    mc,
		Logger:   c.Logger,
	}
	plan, err := planner.Plan(ctx, co, roots)
	if err != nil {
		return nil, nil, err
	}
	return plan, co, nil
}
