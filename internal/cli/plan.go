package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rustcap/pkg/publish"
	"github.com/matzehuels/rustcap/pkg/render"
)

// Plan output formats beyond the ones [publish.Plan.Write] handles.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what publish would do",
		Long: `Resolve the roots and print the publish order and the version every crate
would be published under. Nothing is rewritten or uploaded.

Formats: text, yaml, json, dot (Graphviz source) and svg (rendered graph).`,
		Example: `  rustcap plan
  rustcap plan --format svg -o plan.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			plan, _, err := c.plan(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := writePlan(cmd, &buf, plan, format, detailed); err != nil {
				return err
			}
			if output == "" {
				_, err := io.Copy(cmd.OutOrStdout(), &buf)
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote plan for %d packages", len(plan.Packages))
			printFile(output)
			return nil
		},
	}

	addRunFlags(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", string(publish.FormatText), "output format: text, yaml, json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include source names and versions in graph labels")

	return cmd
}

func writePlan(cmd *cobra.Command, w io.Writer, plan *publish.Plan, format string, detailed bool) error {
	switch format {
	case formatDOT:
		_, err := io.WriteString(w, render.ToDOT(plan, render.Options{Detailed: detailed}))
		return err
	case formatSVG:
		svg, err := render.RenderSVG(cmd.Context(), render.ToDOT(plan, render.Options{Detailed: detailed}))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	default:
		return plan.Write(w, publish.Format(format))
	}
}
