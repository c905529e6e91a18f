package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/tui/layout"
	"github.com/user/cliporama/tui/styles"
)

// ServeProgressState holds what the serve box shows while ffmpeg waits for a consumer.
type ServeProgressState struct {
	Active  bool
	URL     string
	Elapsed time.Duration
	Timeout time.Duration
}

// ServeProgress renders a bordered box with the stream URL and a bar that
// fills up as the timeout approaches.
func ServeProgress(state ServeProgressState, width int) string {
	if !state.Active || width < 10 {
		return ""
	}

	green := lipgloss.NewStyle().Foreground(styles.Green)
	amber := lipgloss.NewStyle().Foreground(styles.Amber)

	innerW := width - 4
	if innerW < 6 {
		innerW = 6
	}

	var lines []string
	lines = append(lines, " "+styles.PrimaryText.Render("Waiting for a consumer on"))
	lines = append(lines, " "+styles.Path.Render(layout.Ellipsize(state.URL, innerW)))

	// Bar width: innerW minus the " 12s/30s" label.
	label := fmt.Sprintf(" %s/%s", state.Elapsed.Truncate(time.Second), state.Timeout)
	barWidth := innerW - lipgloss.Width(label)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := 0
	if state.Timeout > 0 {
		filled = int(int64(barWidth) * int64(state.Elapsed) / int64(state.Timeout))
	}
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := green.Render(strings.Repeat("█", filled)) + amber.Render(strings.Repeat("░", barWidth-filled))
	lines = append(lines, " "+bar+styles.PrimaryText.Render(label))

	return RenderInfoBox("Stream", lines, width)
}
