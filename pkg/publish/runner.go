package publish

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/rustcap/pkg/errors"
	"github.com/matzehuels/rustcap/pkg/manifest"
	"github.com/matzehuels/rustcap/pkg/observability"
	"github.com/matzehuels/rustcap/pkg/patch"
	"github.com/matzehuels/rustcap/pkg/version"
)

// DefaultDelay separates consecutive uploads.
const DefaultDelay = 10 * time.Second

// Uploader publishes the package whose manifest is in dir.
type Uploader interface {
	Publish(ctx context.Context, dir string) error
}

// Restorer brings a file back to its unmodified content. Runner calls it
// right before changing a file, so that a tree edited by an earlier run is
// rewritten from its original manifests.
type Restorer interface {
	Restore(path string) error
}

// Runner executes a [Plan].
type Runner struct {
	Uploader Uploader
	Rewriter *manifest.Rewriter
	// Originals restores manifests and entry points before they are
	// edited. Nil edits files as found.
	Originals Restorer
	Delay    time.Duration
	// DryRun rewrites and patches every package but uploads nothing.
	DryRun bool
	Logger *log.Logger

	// Sleep waits between uploads. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Result summarizes a finished run.
type Result struct {
	Version   string
	Published []string
	Patched   []string
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// Run rewrites, patches and publishes every package of plan in order. It
// stops at the first failure; the returned Result lists what was done up to
// that point.
func (r *Runner) Run(ctx context.Context, plan *Plan) (*Result, error) {
	v, err := version.Parse(plan.Version)
	if err != nil {
		return nil, err
	}

	res := &Result{Version: v.String()}
	hooks := observability.Publish()
	for i, pkg := range plan.Packages {
		if i > 0 && !r.DryRun {
			if err := r.sleep(ctx); err != nil {
				return res, err
			}
		}

		hooks.OnPackageStart(ctx, pkg.Name, i, len(plan.Packages))
		start := time.Now()
		patched, err := r.publishOne(ctx, plan.Commit, pkg, v)
		hooks.OnPackageComplete(ctx, pkg.Name, time.Since(start), err)
		if err != nil {
			return res, err
		}

		if patched != "" {
			res.Patched = append(res.Patched, patched)
		}
		if !r.DryRun {
			res.Published = append(res.Published, pkg.Published)
		}
	}
	return res, nil
}

// publishOne returns the path of the entry point it patched, if any.
func (r *Runner) publishOne(ctx context.Context, commit string, pkg Package, v *semver.Version) (string, error) {
	logger := r.logger().With("package", pkg.Published, "version", v)

	if err := r.restore(pkg.ManifestPath); err != nil {
		return "", err
	}
	doc, err := manifest.Load(pkg.ManifestPath)
	if err != nil {
		return "", err
	}
	libPath, err := doc.LibPath()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", pkg.ManifestPath)
	}
	if err := r.Rewriter.Rewrite(doc, pkg.Name, v, commit); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", pkg.ManifestPath)
	}
	if err := doc.Save(pkg.ManifestPath); err != nil {
		return "", err
	}
	logger.Debug("rewrote manifest", "path", pkg.ManifestPath)

	dir := filepath.Dir(pkg.ManifestPath)
	var patched string
	if entry := patch.EntryPoint(dir, libPath); entry != "" {
		if err := r.restore(entry); err != nil {
			return "", err
		}
		changed, err := patch.File(entry)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "patch %s", entry)
		}
		if changed {
			patched = entry
			logger.Debug("patched entry point", "path", entry)
		}
	}

	if r.DryRun {
		logger.Info("dry run: skipping upload")
		return patched, nil
	}
	logger.Info("publishing")
	if err := r.Uploader.Publish(ctx, dir); err != nil {
		return patched, err
	}
	return patched, nil
}

func (r *Runner) restore(path string) error {
	if r.Originals == nil {
		return nil
	}
	return r.Originals.Restore(path)
}

func (r *Runner) sleep(ctx context.Context) error {
	if r.Delay <= 0 {
		return nil
	}
	if r.Sleep != nil {
		return r.Sleep(ctx, r.Delay)
	}
	r.logger().Debug("waiting for the registry index", "delay", r.Delay)
	t := time.NewTimer(r.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
