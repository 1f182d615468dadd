package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sceneplan/sceneplan/pkg/geometry"
	"github.com/sceneplan/sceneplan/pkg/pipeline"
	"github.com/sceneplan/sceneplan/pkg/plan"
	"github.com/sceneplan/sceneplan/pkg/track"
)

// inspectCommand creates the inspect command for querying a plan.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		at     float64
		region string
		rows   int
		cols   int
	)

	cmd := &cobra.Command{
		Use:   "inspect [plan.json]",
		Short: "Query a computed plan",
		Long: `Query a computed plan.

Without flags, inspect prints summary statistics and the full timeline.
With --at it lists the elements active at that instant plus the
occupancy grid; with --region it filters to a named canvas region
(top_left ... bottom_right).`,
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

			if region != "" {
				return inspectRegion(tr, region, at, cmd.Flags().Changed("at"))
			}
			if cmd.Flags().Changed("at") {
				return inspectInstant(tr, at, rows, cols)
			}
			return inspectSummary(p, tr)
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "inspect the canvas at this time")
	cmd.Flags().StringVar(&region, "region", "", "filter to a canvas region (e.g. top_center)")
	cmd.Flags().IntVar(&rows, "rows", 3, "occupancy grid rows")
	cmd.Flags().IntVar(&cols, "cols", 3, "occupancy grid columns")

	return cmd
}

// inspectSummary prints statistics and the full timeline.
func inspectSummary(p *plan.Plan, tr *track.Tracker) error {
	stats := tr.Statistics()

	fmt.Println(StyleTitle.Render("Plan summary"))
	printKeyValue("canvas", fmt.Sprintf("%g x %g", p.CanvasWidth, p.CanvasHeight))
	printKeyValue("margin", fmt.Sprintf("%g", p.Margin))
	printKeyValue("placed", fmt.Sprintf("%d", stats.Count))
	printKeyValue("failed", fmt.Sprintf("%d", len(p.Failed())))
	if stats.Count > 0 {
		printKeyValue("time range", fmt.Sprintf("[%g, %g)", stats.TimeRange.Start, stats.TimeRange.End))
		printKeyValue("avg duration", fmt.Sprintf("%.2f", stats.AverageDuration))
		printKeyValue("utilization", fmt.Sprintf("%.1f%%", stats.CanvasUtilization*100))
	}

	kinds := make([]string, 0, len(stats.CountsByKind))
	for k := range stats.CountsByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		printDetail("%s: %d", k, stats.CountsByKind[track.Kind(k)])
	}

	fmt.Println()
	fmt.Println(StyleTitle.Render("Timeline"))
	for _, obj := range tr.Timeline() {
		printDetail("[%6.2f, %6.2f)  %-10s %s", obj.Window.Start, obj.Window.End, obj.Kind, obj.ID)
	}
	return nil
}

// inspectInstant lists active elements and the occupancy grid at a time.
func inspectInstant(tr *track.Tracker, at float64, rows, cols int) error {
	active := tr.ActiveAt(at)
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Active at t=%g", at)))
	if len(active) == 0 {
		printInfo("Canvas is empty")
		return nil
	}
	for _, obj := range active {
		region := tr.Canvas().RegionOf(obj.Box)
		printDetail("%-10s %-10s %s  center=(%.2f, %.2f)", obj.ID, obj.Kind, region, obj.Box.CenterX(), obj.Box.CenterY())
	}

	grid := tr.OccupancyGrid(at, rows, cols)
	fmt.Println()
	fmt.Println(StyleTitle.Render("Occupancy"))
	for _, row := range grid {
		cells := make([]string, len(row))
		for i, n := range row {
			cells[i] = fmt.Sprintf("%2d", n)
		}
		printDetail("%s", strings.Join(cells, " "))
	}
	return nil
}

// inspectRegion lists elements overlapping a named region.
func inspectRegion(tr *track.Tracker, name string, at float64, instant bool) error {
	region, err := geometry.ParseRegion(name)
	if err != nil {
		return err
	}
	query := track.AnyTime()
	if instant {
		query = track.At(at)
	}

	objects := tr.InRegion(region, query)
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Region %s", region)))
	if len(objects) == 0 {
		printInfo("No elements in region")
		return nil
	}
	for _, obj := range objects {
		printDetail("%-10s %-10s [%g, %g)", obj.ID, obj.Kind, obj.Window.Start, obj.Window.End)
	}
	return nil
}
