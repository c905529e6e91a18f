package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/tui/styles"
)

// StatusBarState holds what the top bar shows.
type StatusBarState struct {
	RunID   string
	Seed    int64
	Elapsed time.Duration
	Done    bool
	Failed  bool
}

// StatusBar renders the full-width top bar: run identity on the left, seed
// and elapsed time on the right.
func StatusBar(state StatusBarState, width int) string {
	icon := "▶"
	switch {
	case state.Failed:
		icon = "✗"
	case state.Done:
		icon = "■"
	}

	id := state.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	left := fmt.Sprintf(" %s cliporama", icon)
	if id != "" {
		left += "  run " + id
	}
	right := fmt.Sprintf("seed %d  %s ", state.Seed, state.Elapsed.Truncate(100*time.Millisecond))

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return styles.StatusBar.Width(width).Render(left + strings.Repeat(" ", pad) + right)
}
