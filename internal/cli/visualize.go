package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sceneplan/sceneplan/pkg/pipeline"
	"github.com/sceneplan/sceneplan/pkg/plan"
	"github.com/sceneplan/sceneplan/pkg/render"
)

// visualizeCommand creates the visualize command for rendering a
// previously computed plan.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output string
		format string
		at     float64
		grid   bool
		scale  float64
	)

	cmd := &cobra.Command{
		Use:   "visualize [plan.json]",
		Short: "Render a computed plan to SVG or PNG",
		Long: `Render a computed plan to SVG or PNG.

By default the full timeline is drawn. With --at only the elements
active at that instant appear, which matches what the canvas would
show at that moment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.ReadPlanFile(args[0])
			if err != nil {
				return fmt.Errorf("load plan %s: %w", args[0], err)
			}
			tr, err := pipeline.TrackerFromPlan(p)
			if err != nil {
				return fmt.Errorf("rebuild index: %w", err)
			}

			opts := []render.SVGOption{render.WithScale(scale)}
			if cmd.Flags().Changed("at") {
				opts = append(opts, render.WithTime(at))
			}
			if grid {
				opts = append(opts, render.WithGrid())
			}

			var data []byte
			switch format {
			case "svg":
				data = render.RenderSVG(tr, opts...)
			case "png":
				data, err = render.RenderPNG(tr, opts...)
				if err != nil {
					return fmt.Errorf("render png: %w", err)
				}
			default:
				return fmt.Errorf("unsupported format %q (want svg or png)", format)
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			printSuccess("Rendered %d elements", tr.Len())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format (svg, png)")
	cmd.Flags().Float64Var(&at, "at", 0, "render only elements active at this time")
	cmd.Flags().BoolVar(&grid, "grid", false, "draw the region grid")
	cmd.Flags().Float64Var(&scale, "scale", render.DefaultScale, "pixels per scene unit")

	return cmd
}
