package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/tui/styles"
)

// Container wraps content into an exact Width x Height box. When content is
// longer than Height the oldest lines are dropped, so the tail stays visible,
// and the first line becomes an indicator.
type Container struct {
	Width  int
	Height int
}

// Render returns content constrained to exactly Width columns and Height lines.
func (c Container) Render(content string) string {
	if c.Height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")

	if len(lines) > c.Height {
		lines = lines[len(lines)-c.Height:]
		lines[0] = lipgloss.NewStyle().Foreground(styles.Dim).Render("↑ earlier output")
	}
	lines = NormalizeLines(lines, c.Height)
	for i, line := range lines {
		lines[i] = PadToWidth(line, c.Width)
	}
	return strings.Join(lines, "\n")
}
