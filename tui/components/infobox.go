// Package components provides reusable TUI components.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/tui/layout"
	"github.com/user/cliporama/tui/styles"
)

// RenderInfoBox renders a bordered box with a tab-style header and content lines.
// Content lines are rendered as-is (caller handles styling) and truncated to fit.
//
//	╭─ Title ────╮
//	│content     │
//	╰────────────╯
func RenderInfoBox(title string, contentLines []string, width int) string {
	if width < 4 {
		return ""
	}
	innerWidth := width - 2

	border := lipgloss.NewStyle().Foreground(styles.Dim)
	header := styles.Header.Render(" " + title + " ")

	fill := innerWidth - 1 - lipgloss.Width(header)
	if fill < 0 {
		fill = 0
	}
	top := border.Render("╭─") + header + border.Render(strings.Repeat("─", fill)+"╮")
	if lipgloss.Width(top) > width {
		top = layout.PadToWidth(top, width)
	}

	lines := make([]string, 0, len(contentLines)+2)
	lines = append(lines, top)
	for _, line := range contentLines {
		lines = append(lines, border.Render("│")+layout.PadToWidth(line, innerWidth)+border.Render("│"))
	}
	lines = append(lines, border.Render("╰"+strings.Repeat("─", innerWidth)+"╯"))

	return strings.Join(lines, "\n")
}
