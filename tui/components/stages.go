package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/tui/layout"
	"github.com/user/cliporama/tui/styles"
)

// StageState is the display state of one pipeline stage.
type StageState int

const (
	StagePending StageState = iota
	StageRunning
	StageDone
	StageSkipped
	StageFailed
)

// StageRow is one line of the stage list.
type StageRow struct {
	Name    string
	State   StageState
	Message string
}

// Icon returns the marker drawn in front of the stage name.
func (s StageState) Icon() string {
	switch s {
	case StageRunning:
		return "●"
	case StageDone:
		return "✓"
	case StageSkipped:
		return "–"
	case StageFailed:
		return "✗"
	default:
		return "○"
	}
}

func (s StageState) style() lipgloss.Style {
	switch s {
	case StageRunning:
		return styles.Running
	case StageDone:
		return styles.Success
	case StageSkipped:
		return styles.SecondaryText
	case StageFailed:
		return styles.Warning
	default:
		return lipgloss.NewStyle().Foreground(styles.Dim)
	}
}

// StageList renders the stages as a boxed checklist. Messages are shown under
// the stage name when there is room.
func StageList(rows []StageRow, width int) string {
	inner := width - 2
	lines := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		st := r.State.style()
		lines = append(lines, " "+st.Render(r.State.Icon()+" "+r.Name))
		if r.Message != "" {
			lines = append(lines, "   "+styles.SecondaryText.Render(layout.Ellipsize(r.Message, inner-3)))
		}
	}
	return RenderInfoBox("Pipeline", lines, width)
}
