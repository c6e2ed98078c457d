package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/rustcap/pkg/errors"
	"github.com/matzehuels/rustcap/pkg/manifest"
	"github.com/matzehuels/rustcap/pkg/version"
)

// rewriteCommand creates the rewrite command.
func (c *CLI) rewriteCommand() *cobra.Command {
	var (
		name    string
		vers    string
		commit  string
		prefix  string
		license string
		repo    string
	)

	cmd := &cobra.Command{
		Use:   "rewrite <Cargo.toml>",
		Short: "Rewrite a single manifest for publishing",
		Long: `Rewrite one Cargo.toml in place the way publish does: rename the package,
pin its path dependencies to --version under the prefixed names and fill in
license, repository and description.`,
		Example: `  rustcap rewrite compiler/rustc_span/Cargo.toml --name rustc_span --version 700.0.0 --commit abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := version.Parse(vers)
			if err != nil {
				return err
			}
			if name == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--name is required")
			}

			r := manifest.NewRewriter(prefix)
			r.License = license
			r.Repository = repo
			if err := errors.ValidateCratesPackageName(r.PublishedName(name)); err != nil {
				return err
			}
			if err := r.RewriteFile(args[0], name, v, commit); err != nil {
				return err
			}

			c.Logger.Debug("rewrote manifest", "path", args[0], "package", r.PublishedName(name), "version", v)
			printSuccess("Rewrote %s as %s %s", name, r.PublishedName(name), v)
			printFile(args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "package name as resolved in the workspace (required)")
	cmd.Flags().StringVar(&vers, "version", "", "version to publish (required)")
	cmd.Flags().StringVar(&commit, "commit", "", "upstream commit named in the description")
	cmd.Flags().StringVar(&prefix, flagPrefix, "rustc-ap", "prefix for published package names")
	cmd.Flags().StringVar(&license, "license", manifest.DefaultLicense, "license written to the manifest")
	cmd.Flags().StringVar(&repo, "repository", manifest.DefaultRepository, "repository URL written to the manifest")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}
