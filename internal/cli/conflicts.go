package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sceneplan/sceneplan/pkg/plan"
	"github.com/sceneplan/sceneplan/pkg/render"
)

// conflictsCommand creates the conflicts command.
func (c *CLI) conflictsCommand() *cobra.Command {
	var (
		output string
		asSVG  bool
	)

	cmd := &cobra.Command{
		Use:   "conflicts [plan.json]",
		Short: "Visualize placement failures as a conflict graph",
		Long: `Visualize placement failures as a conflict graph.

Each failed request is linked to the placed elements that blocked it,
so dense constraint clusters stand out. Output is Graphviz DOT by
default; --svg renders it directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.ReadPlanFile(args[0])
			if err != nil {
				return fmt.Errorf("load plan %s: %w", args[0], err)
			}

			failed := p.Failed()
			if len(failed) == 0 {
				printSuccess("No failures in plan")
				return nil
			}

			dot := render.ConflictDOT(p)
			data := []byte(dot)
			ext := "dot"
			if asSVG {
				prog := newProgress(c.Logger)
				data, err = render.RenderConflictSVG(cmd.Context(), dot)
				if err != nil {
					return fmt.Errorf("render conflict graph: %w", err)
				}
				prog.done("Rendered conflict graph")
				ext = "svg"
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".conflicts." + ext
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			printSuccess("Graphed %d failures", len(failed))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&asSVG, "svg", false, "render SVG instead of DOT")

	return cmd
}
