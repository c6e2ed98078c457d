package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/rustcap/pkg/config"
)

const (
	flagConfig    = "config"
	flagPrefix    = "prefix"
	flagRoot      = "root"
	flagRepo      = "repo"
	flagBranch    = "branch"
	flagCommit    = "commit"
	flagToolchain = "toolchain"
	flagWorkDir   = "work-dir"
	flagCacheDir  = "cache-dir"
	flagNoCache   = "no-cache"
	flagRegistry  = "registry"
	flagDelay     = "delay"
	flagDryRun    = "dry-run"
)

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"prefix":          flagPrefix,
	"roots":           flagRoot,
	"upstream.repo":   flagRepo,
	"upstream.branch": flagBranch,
	"upstream.commit": flagCommit,
	"toolchain":       flagToolchain,
	"work_dir":        flagWorkDir,
	"cache_dir":       flagCacheDir,
	"no_cache":        flagNoCache,
	"registry.api":    flagRegistry,
	"delay":           flagDelay,
	"dry_run":         flagDryRun,
}

// addRunFlags registers the flags shared by commands that plan a run. Their
// zero defaults are never used: unset flags fall through to the config file,
// environment and built-in defaults.
func addRunFlags(fs *pflag.FlagSet) {
	fs.String(flagPrefix, "", "prefix for published package names (default rustc-ap)")
	fs.StringSlice(flagRoot, nil, "root package as name=dir, repeatable")
	fs.String(flagRepo, "", "upstream GitHub repository (default rust-lang/rust)")
	fs.String(flagBranch, "", "upstream branch to follow (default master)")
	fs.String(flagCommit, "", "pin the upstream commit instead of following the branch")
	fs.String(flagToolchain, "", "rustup toolchain for cargo (default nightly)")
	fs.String(flagWorkDir, "", "where upstream checkouts are unpacked")
	fs.String(flagCacheDir, "", "where cargo metadata snapshots are cached")
	fs.Bool(flagNoCache, false, "do not read or write the metadata cache")
	fs.String(flagRegistry, "", "crates.io API root")
}

// loadConfig merges defaults, the config file, the environment and cmd's
// flags, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags(), flagKeys); err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
