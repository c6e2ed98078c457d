package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/rustcap/pkg/patch"
)

// patchCommand creates the patch command.
func (c *CLI) patchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "patch <lib.rs>...",
		Short: "Apply the entry-point source patches",
		Long: `Add rustc_private to the first #![feature(...)] list and truncate the file at
the first __build_diagnostic_array! invocation, in place. Files that are
already patched or missing are left alone.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var changed int
			for _, path := range args {
				ok, err := patch.File(path)
				if err != nil {
					return err
				}
				if ok {
					changed++
					printFile(path)
				} else {
					c.Logger.Debug("unchanged", "path", path)
				}
			}
			if changed == 0 {
				printInfo("Nothing to patch")
				return nil
			}
			printSuccess("Patched %d of %d files", changed, len(args))
			return nil
		},
	}
}
