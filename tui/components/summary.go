package components

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/user/cliporama/tui/layout"
	"github.com/user/cliporama/tui/styles"
)

// SummaryState is the detail panel content. Empty fields are left out.
type SummaryState struct {
	Source     string
	Candidates int
	Resolution string
	Duration   float64
	Window     string
	ClipPath   string
	ClipSize   int64
	Status     string
	Err        string
}

// Summary renders what is known about the current run.
func Summary(s SummaryState, width int) string {
	inner := width - 2
	field := func(label, value string) string {
		return " " + styles.SecondaryText.Render(fmt.Sprintf("%-8s", label)) + " " + value
	}
	valueWidth := inner - 10

	var lines []string
	if s.Candidates > 0 {
		lines = append(lines, field("Library", styles.PrimaryText.Render(fmt.Sprintf("%d candidates", s.Candidates))))
	}
	if s.Source != "" {
		lines = append(lines, field("Source", styles.Path.Render(layout.Ellipsize(s.Source, valueWidth))))
	}
	if s.Resolution != "" {
		lines = append(lines, field("Video", styles.PrimaryText.Render(fmt.Sprintf("%s, %.2fs", s.Resolution, s.Duration))))
	}
	if s.Window != "" {
		lines = append(lines, field("Clip", styles.PrimaryText.Render(s.Window)))
	}
	if s.ClipPath != "" {
		out := layout.Ellipsize(s.ClipPath, valueWidth)
		if s.ClipSize > 0 {
			out = layout.Ellipsize(fmt.Sprintf("%s (%s)", s.ClipPath, humanize.Bytes(uint64(s.ClipSize))), valueWidth)
		}
		lines = append(lines, field("Output", styles.Path.Render(out)))
	}
	if s.Status != "" {
		st := styles.Success
		if s.Err != "" {
			st = styles.Warning
		}
		lines = append(lines, field("Status", st.Render(s.Status)))
	}
	if s.Err != "" {
		lines = append(lines, " "+styles.Warning.Render(layout.Ellipsize(s.Err, inner-1)))
	}
	if len(lines) == 0 {
		lines = append(lines, " "+styles.SecondaryText.Render("Starting…"))
	}
	return RenderInfoBox("Run", lines, width)
}
