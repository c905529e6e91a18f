package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/session"
	"github.com/user/cliporama/tui/styles"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(styles.Green).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(styles.Red).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	pathStyle = lipgloss.NewStyle().Foreground(styles.Cyan)
	dimStyle  = lipgloss.NewStyle().Foreground(styles.Muted)
)

// progressPrinter turns pipeline events into the plain progress lines shown
// when the TUI is off.
type progressPrinter struct {
	w io.Writer
	// serveTarget describes where the clip is sent, e.g. the stream URL.
	serveTarget string
}

func (p *progressPrinter) observe(e session.Event) {
	switch e.Kind {
	case session.EventFailed:
		msg := e.Message
		if e.Err != nil {
			if msg != "" {
				msg += ": "
			}
			msg += e.Err.Error()
		}
		fmt.Fprintf(p.w, "%s %s: %s\n", failStyle.Render("✗"), e.Stage, msg)
		return
	case session.EventSkipped:
		if e.Stage == session.StageServe {
			fmt.Fprintln(p.w, dimStyle.Render("Streaming disabled, not sending the clip"))
		}
		return
	}

	switch e.Stage {
	case session.StageScan:
		if e.Kind == session.EventStarted {
			fmt.Fprintf(p.w, "Scanning for video files in %s\n", pathStyle.Render(e.Message))
		} else {
			fmt.Fprintln(p.w, e.Message)
		}
	case session.StagePick:
		fmt.Fprintf(p.w, "Clip from %s:\n", pathStyle.Render(e.Message))
	case session.StageProbe:
		if e.Kind == session.EventDone {
			fmt.Fprintln(p.w, e.Message)
		}
	case session.StageExtract:
		if e.Kind == session.EventStarted {
			fmt.Fprintln(p.w, e.Message)
			fmt.Fprintln(p.w, "Trimming clip...")
		} else {
			fmt.Fprintf(p.w, "Clip written to %s\n", pathStyle.Render(e.Message))
		}
	case session.StageServe:
		if e.Kind == session.EventStarted {
			fmt.Fprintf(p.w, "Sending clip via %s...\n", p.serveTarget)
		} else {
			fmt.Fprintln(p.w, okStyle.Render("Done"))
		}
	}
}

// printResult prints the closing line for a finished run.
func printResult(w io.Writer, res *session.Result) {
	if res == nil {
		return
	}
	switch {
	case res.TimedOut():
		fmt.Fprintln(w, warnStyle.Render("Timeout: nobody fetched the clip, it is still at ")+pathStyle.Render(res.ClipPath))
	case res.ServeErr != nil:
		fmt.Fprintln(w, warnStyle.Render("Streaming failed, the clip is still at ")+pathStyle.Render(res.ClipPath))
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("run %s, seed %d (replay with --seed %d)", res.RunID, res.Seed, res.Seed)))
}
