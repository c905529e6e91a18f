package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/tui/styles"
)

// Responsive layout constants.
const (
	MinTerminalWidth = 60 // below this the view asks for a wider terminal
	SideBySideWidth  = 90 // at or above this, stages and details sit side by side
	StageColumnWidth = 28 // width of the stage column in side-by-side mode
)

// ComputeColumnWidths splits termWidth into the stage column and the detail
// column. stacked is true when the terminal is too narrow for two columns, in
// which case both widths equal termWidth.
func ComputeColumnWidths(termWidth int) (stages, details int, stacked bool) {
	if termWidth < SideBySideWidth {
		return termWidth, termWidth, true
	}
	// One border character between the columns.
	stages = StageColumnWidth
	details = termWidth - stages - 1
	return stages, details, false
}

// JoinColumns joins pre-rendered columns side by side with a dim separator.
// Each column is normalized to height lines and padded to its width.
func JoinColumns(columns []string, widths []int, height int) string {
	sep := lipgloss.NewStyle().Foreground(styles.Dim).Render("│")

	colLines := make([][]string, len(columns))
	for i, col := range columns {
		colLines[i] = NormalizeLines(strings.Split(col, "\n"), height)
	}

	rows := make([]string, 0, height)
	for row := 0; row < height; row++ {
		parts := make([]string, 0, len(colLines))
		for i, lines := range colLines {
			parts = append(parts, PadToWidth(lines[row], widths[i]))
		}
		rows = append(rows, strings.Join(parts, sep))
	}
	return strings.Join(rows, "\n")
}
