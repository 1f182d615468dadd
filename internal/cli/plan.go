package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sceneplan/sceneplan/pkg/pipeline"
	"github.com/sceneplan/sceneplan/pkg/place"
	"github.com/sceneplan/sceneplan/pkg/plan"
)

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		snapshotAt float64
		strategy   string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "plan [requests.json]",
		Short: "Compute a collision-free layout for a request batch",
		Long: `Compute a collision-free layout for a request batch.

The plan command reads a JSON array of placement requests (id, kind,
size, time window, optional explicit position or strategy), places each
one on the canvas, and writes the resulting plan plus any requested
artifacts. Requests that cannot be placed are reported with a typed
reason; they never silently overlap existing elements.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			opts.Strategy = place.Name(strategy)
			if cmd.Flags().Changed("at") {
				opts.Snapshot = true
				opts.SnapshotTime = snapshotAt
			}
			return c.runPlan(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")

	cmd.Flags().Float64Var(&opts.CanvasWidth, "width", pipeline.DefaultCanvasWidth, "canvas width in scene units")
	cmd.Flags().Float64Var(&opts.CanvasHeight, "height", pipeline.DefaultCanvasHeight, "canvas height in scene units")
	cmd.Flags().Float64Var(&opts.Margin, "margin", pipeline.DefaultMargin, "minimum clearance between elements")
	cmd.Flags().StringVar(&strategy, "strategy", "", "default placement strategy (center_spiral, grid, flow, vertical_stack, horizontal_stack, region_preferential)")
	cmd.Flags().IntVar(&opts.GridRows, "grid-rows", 0, "grid strategy rows (0 uses the strategy default)")
	cmd.Flags().IntVar(&opts.GridCols, "grid-cols", 0, "grid strategy columns (0 uses the strategy default)")

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&snapshotAt, "at", 0, "restrict artifacts to elements active at this time")
	cmd.Flags().BoolVar(&opts.ShowGrid, "grid", false, "overlay the 3x3 region grid")

	return cmd
}

// runPlan loads the batch, runs the pipeline, and writes outputs.
func (c *CLI) runPlan(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	requests, err := plan.ReadRequestsFile(input)
	if err != nil {
		return fmt.Errorf("load requests %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Planning %d requests...", len(requests)))
	spinner.Start()

	result, err := runner.Execute(ctx, requests, opts)
	if err != nil {
		spinner.StopWithError("Planning failed")
		return fmt.Errorf("plan: %w", err)
	}
	spinner.Stop()

	printSuccess("Planned %d requests", result.Stats.RequestCount)
	printStats(result.Stats.PlacedCount, result.Stats.FailedCount, result.CacheInfo.PlanHit)
	for _, e := range result.Plan.Failed() {
		reason := string(e.Reason.Code)
		if len(e.Reason.ConflictIDs) > 0 {
			reason += " with " + strings.Join(e.Reason.ConflictIDs, ", ")
		}
		printWarning("%s: %s", e.ID, reason)
	}

	if err := writeArtifacts(result.Artifacts, opts.Formats, input, output); err != nil {
		return err
	}
	if result.Stats.FailedCount > 0 {
		printNextStep("Inspect failures", fmt.Sprintf("sceneplan conflicts %s", artifactPath(input, output, pipeline.FormatJSON)))
	}
	return nil
}

// writeArtifacts writes each rendered format next to the input file,
// or to the explicit output path when one is given.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(input, output, format)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// artifactPath derives the output path for one format. With a single
// explicit output it is used verbatim; otherwise the format becomes
// the extension of the base name.
func artifactPath(input, output, format string) string {
	if output != "" {
		if filepath.Ext(output) != "" {
			return output
		}
		return output + "." + format
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".plan." + format
}
