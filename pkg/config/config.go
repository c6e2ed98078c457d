// Package config loads rustcap settings from defaults, an optional YAML file,
// RUSTCAP_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/rustcap/pkg/errors"
	"github.com/matzehuels/rustcap/pkg/manifest"
)

// Config is the resolved configuration for one run.
type Config struct {
	// Prefix is prepended (with a hyphen) to every published package name.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	// Roots lists the workspace packages to publish as name=dir pairs, dir
	// relative to the checkout root.
	Roots []string `mapstructure:"roots" yaml:"roots"`

	Upstream Upstream `mapstructure:"upstream" yaml:"upstream"`
	Registry Registry `mapstructure:"registry" yaml:"registry"`
	GitHub   GitHub   `mapstructure:"github" yaml:"github"`

	Toolchain string        `mapstructure:"toolchain" yaml:"toolchain"`
	Delay     time.Duration `mapstructure:"delay" yaml:"delay"`
	WorkDir   string        `mapstructure:"work_dir" yaml:"work_dir"`
	CacheDir  string        `mapstructure:"cache_dir" yaml:"cache_dir"`
	NoCache   bool          `mapstructure:"no_cache" yaml:"no_cache"`
	DryRun    bool          `mapstructure:"dry_run" yaml:"dry_run"`

	License        string `mapstructure:"license" yaml:"license"`
	Repository     string `mapstructure:"repository" yaml:"repository"`
	ToolRepository string `mapstructure:"tool_repository" yaml:"tool_repository"`
}

// Upstream identifies the source tree packages are published from.
type Upstream struct {
	Repo   string `mapstructure:"repo" yaml:"repo"`
	Branch string `mapstructure:"branch" yaml:"branch"`
	// Commit pins a revision. Empty means the head of Branch.
	Commit string `mapstructure:"commit" yaml:"commit"`
}

// Registry configures the crates.io API.
type Registry struct {
	API string `mapstructure:"api" yaml:"api"`
}

// GitHub configures the GitHub API.
type GitHub struct {
	API   string `mapstructure:"api" yaml:"api"`
	Token string `mapstructure:"token" yaml:"-"`
}

// Root is one publishing root: a package name and the directory whose
// `cargo metadata` describes it.
type Root struct {
	Name string
	Dir  string
}

// DefaultRoots are the compiler crates published when no roots are configured.
var DefaultRoots = []string{
	"rustc_ast=compiler/rustc_ast",
	"rustc_parse=compiler/rustc_parse",
}

// Defaults returns the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		"prefix":          "rustc-ap",
		"roots":           DefaultRoots,
		"upstream.repo":   manifest.DefaultUpstream,
		"upstream.branch": "master",
		"upstream.commit": "",
		"registry.api":    "https://crates.io/api/v1",
		"github.api":      "https://api.github.com",
		"github.token":    "",
		"toolchain":       "nightly",
		"delay":           10 * time.Second,
		"work_dir":        defaultDir("src"),
		"cache_dir":       defaultDir("metadata"),
		"no_cache":        false,
		"dry_run":         false,
		"license":         manifest.DefaultLicense,
		"repository":      manifest.DefaultRepository,
		"tool_repository": manifest.DefaultToolRepository,
	}
}

func defaultDir(name string) string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "rustcap", name)
}

// ParseRoots splits the configured name=dir pairs.
func (c *Config) ParseRoots() ([]Root, error) {
	roots := make([]Root, 0, len(c.Roots))
	seen := make(map[string]bool, len(c.Roots))
	for _, entry := range c.Roots {
		name, dir, ok := strings.Cut(strings.TrimSpace(entry), "=")
		name, dir = strings.TrimSpace(name), strings.TrimSpace(dir)
		if !ok || name == "" || dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid root %q: want name=dir", entry)
		}
		if err := errors.ValidatePackageName(name); err != nil {
			return nil, err
		}
		clean := path.Clean(filepath.ToSlash(dir))
		if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return nil, errors.New(errors.ErrCodeInvalidPath, "root %s: dir %q must stay inside the checkout", name, dir)
		}
		if seen[name] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "root %s listed twice", name)
		}
		seen[name] = true
		roots = append(roots, Root{Name: name, Dir: clean})
	}
	return roots, nil
}

// Validate checks the settings a run cannot proceed without.
func (c *Config) Validate() error {
	if err := errors.ValidateCratesPackageName(c.Prefix); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "prefix")
	}
	if len(c.Roots) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no roots configured")
	}
	if _, err := c.ParseRoots(); err != nil {
		return err
	}
	if strings.Count(c.Upstream.Repo, "/") != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "upstream.repo %q: want owner/name", c.Upstream.Repo)
	}
	if c.Upstream.Commit == "" && c.Upstream.Branch == "" {
		return errors.New(errors.ErrCodeInvalidInput, "upstream.branch is required when no commit is pinned")
	}
	if c.Toolchain == "" {
		return errors.New(errors.ErrCodeInvalidInput, "toolchain is required")
	}
	if c.Delay < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "delay must not be negative")
	}
	return nil
}
