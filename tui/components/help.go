package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/tui/layout"
	"github.com/user/cliporama/tui/styles"
)

// Binding is a key and what it does.
type Binding struct {
	Key  string
	Desc string
}

// RunningBindings are active while the pipeline runs.
var RunningBindings = []Binding{
	{"q", "cancel"},
}

// FinishedBindings are active once the run is over.
var FinishedBindings = []Binding{
	{"p", "preview clip"},
	{"r", "new clip"},
	{"q", "quit"},
}

// HelpLine renders the bindings on a single line, truncated to width.
func HelpLine(bindings []Binding, width int) string {
	key := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, key.Render(b.Key)+" "+styles.SecondaryText.Render(b.Desc))
	}
	return layout.PadToWidth(" "+strings.Join(parts, styles.SecondaryText.Render(" • ")), width)
}
