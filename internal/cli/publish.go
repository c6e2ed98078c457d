package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rustcap/pkg/config"
	"github.com/matzehuels/rustcap/pkg/observability"
	"github.com/matzehuels/rustcap/pkg/publish"
)

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Rewrite and publish every crate the roots need",
		Long: `Resolve the roots at the latest upstream commit (or --commit), compute the next
version and publish each crate in dependency order, waiting --delay between
uploads so the registry index can catch up.

With --dry-run, manifests and entry points are rewritten in the checkout but
nothing is uploaded.`,
		Example: `  rustcap publish --dry-run
  rustcap publish --root rustc_ast=compiler/rustc_ast --delay 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runPublish(cmd.Context(), cfg)
		},
	}

	addRunFlags(cmd.Flags())
	cmd.Flags().Duration(flagDelay, publish.DefaultDelay, "wait between uploads")
	cmd.Flags().Bool(flagDryRun, false, "rewrite and patch but do not upload")

	return cmd
}

func (c *CLI) runPublish(ctx context.Context, cfg *config.Config) error {
	observability.SetPublishHooks(logHooks{logger: c.Logger})

	plan, co, err := c.plan(ctx, cfg)
	if err != nil {
		return err
	}

	printNewline()
	printKeyValue("Commit", plan.Commit)
	printKeyValue("Packages", StyleTitle.Render(strconv.Itoa(len(plan.Packages))))
	printKeyValue("Version", plan.Current+" "+iconArrow+" "+plan.Version)
	printNewline()

	c.Logger.Debug("publish order", "packages", strings.Join(plan.Names(), " "))

	runner := &publish.Runner{
		Uploader:  c.newCargo(cfg),
		Rewriter:  newRewriter(cfg),
		Originals: co,
		Delay:     cfg.Delay,
		DryRun:    cfg.DryRun,
		Logger:    c.Logger,
		Sleep: func(ctx context.Context, d time.Duration) error {
			return waitFor(ctx, c.Stderr, d)
		},
	}

	prog := newProgress(c.Logger)
	res, err := runner.Run(ctx, plan)
	if err != nil {
		if res != nil && len(res.Published) > 0 {
			printWarning("Published %d of %d packages before the failure", len(res.Published), len(plan.Packages))
		}
		return err
	}

	if cfg.DryRun {
		prog.done("Dry run complete")
		printSuccess("Rewrote %d packages for version %s", len(plan.Packages), res.Version)
		printDetail("Checkout: %s", co.Dir)
		for _, p := range res.Patched {
			printFile(p)
		}
		printNextStep("Publish for real", "rustcap publish --commit "+plan.Commit)
		return nil
	}

	prog.done("Publishing complete")
	printSuccess("Published %d packages at version %s", len(res.Published), res.Version)
	return nil
}
