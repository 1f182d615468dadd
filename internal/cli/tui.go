package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sceneplan/sceneplan/pkg/pipeline"
	"github.com/sceneplan/sceneplan/pkg/plan"
	"github.com/sceneplan/sceneplan/pkg/track"
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiActiveStyle = lipgloss.NewStyle().Foreground(colorWhite)
	tuiDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	tuiBarStyle    = lipgloss.NewStyle().Foreground(colorCyan)
)

// timelineCommand creates the interactive timeline scrubber.
func (c *CLI) timelineCommand() *cobra.Command {
	var step float64

	cmd := &cobra.Command{
		Use:   "timeline [plan.json]",
		Short: "Scrub through a plan's timeline interactively",
		Long: `Scrub through a plan's timeline interactively.

Arrow keys move the time cursor; the view lists the elements active at
the cursor with their regions. Press q to quit.`,
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
			if tr.Len() == 0 {
				printInfo("Plan has no placed elements")
				return nil
			}

			model := newTimelineModel(tr, step)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().Float64Var(&step, "step", 0.5, "time step per keypress")
	return cmd
}

// =============================================================================
// timelineModel - Interactive Time Scrubber
// =============================================================================

type timelineModel struct {
	tracker *track.Tracker
	cursor  float64
	step    float64
	start   float64
	end     float64
}

func newTimelineModel(tr *track.Tracker, step float64) timelineModel {
	stats := tr.Statistics()
	return timelineModel{
		tracker: tr,
		cursor:  stats.TimeRange.Start,
		step:    step,
		start:   stats.TimeRange.Start,
		end:     stats.TimeRange.End,
	}
}

func (m timelineModel) Init() tea.Cmd {
	return nil
}

func (m timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.cursor -= m.step
			if m.cursor < m.start {
				m.cursor = m.start
			}
		case "right", "l":
			m.cursor += m.step
			if m.cursor > m.end {
				m.cursor = m.end
			}
		case "home", "g":
			m.cursor = m.start
		case "end", "G":
			m.cursor = m.end
		}
	}
	return m, nil
}

func (m timelineModel) View() string {
	var b strings.Builder

	b.WriteString(tuiHeaderStyle.Render(fmt.Sprintf("t = %.2f", m.cursor)))
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("  [%.2f, %.2f)", m.start, m.end)))
	b.WriteString("\n")
	b.WriteString(m.renderBar(48))
	b.WriteString("\n\n")

	active := m.tracker.ActiveAt(m.cursor)
	if len(active) == 0 {
		b.WriteString(tuiDimStyle.Render("  (canvas empty)"))
		b.WriteString("\n")
	}
	for _, obj := range active {
		region := m.tracker.Canvas().RegionOf(obj.Box)
		line := fmt.Sprintf("  %-12s %-10s %-13s [%g, %g)", obj.ID, obj.Kind, region, obj.Window.Start, obj.Window.End)
		b.WriteString(tuiActiveStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("←/→ scrub · g/G jump · q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderBar draws the time cursor position as a simple gauge.
func (m timelineModel) renderBar(width int) string {
	span := m.end - m.start
	pos := 0
	if span > 0 {
		pos = int((m.cursor - m.start) / span * float64(width-1))
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			b.WriteString(tuiBarStyle.Render("●"))
		} else {
			b.WriteString(tuiDimStyle.Render("─"))
		}
	}
	return b.String()
}
