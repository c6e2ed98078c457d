// Package cli implements the rustcap command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rustcap/pkg/buildinfo"
	"github.com/matzehuels/rustcap/pkg/cache"
	"github.com/matzehuels/rustcap/pkg/cargo"
	"github.com/matzehuels/rustcap/pkg/config"
	"github.com/matzehuels/rustcap/pkg/manifest"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "rustcap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stderr receives cargo's own output.
	Stderr io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	build := buildinfo.Current()
	root := &cobra.Command{
		Use:   appName,
		Short: "rustcap republishes rustc's internal crates to crates.io",
		Long: `rustcap takes a set of root crates from the rust-lang/rust tree, resolves every
in-tree crate they depend on, renames them under a common prefix and publishes
them to crates.io in dependency order under one freshly bumped version.`,
		Version:      build.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(build.Template())
	root.PersistentFlags().String(flagConfig, "", "config file (default $XDG_CONFIG_HOME/rustcap/config.yaml)")

	root.AddCommand(c.publishCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.rewriteCommand())
	root.AddCommand(c.patchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// =============================================================================
// Factories
// =============================================================================

func (c *CLI) newCargo(cfg *config.Config) *cargo.Cargo {
	return cargo.New(cfg.Toolchain, c.Stderr)
}

func newRewriter(cfg *config.Config) *manifest.Rewriter {
	r := manifest.NewRewriter(cfg.Prefix)
	r.License = cfg.License
	r.Repository = cfg.Repository
	r.Upstream = cfg.Upstream.Repo
	r.ToolRepository = cfg.ToolRepository
	return r
}

func newCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.NoCache {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.CacheDir)
}
