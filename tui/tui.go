// Package tui shows a clip run as a live Bubble Tea view: the pipeline
// stages, what has been picked so far, the stream countdown and the log.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/user/cliporama/session"
	"github.com/user/cliporama/tui/components"
	"github.com/user/cliporama/tui/layout"
	"github.com/user/cliporama/tui/styles"
)

const (
	// tickInterval drives the elapsed clock and the stream countdown.
	tickInterval = 100 * time.Millisecond
	// messageDuration is how long preview results stay on screen.
	messageDuration = 4 * time.Second
	// maxLogLines bounds the in-memory log.
	maxLogLines = 200
)

// Options configure the view. Build and NewLogger are required.
type Options struct {
	// Build returns the runner for one run with the given seed. The runner
	// and the steps it wires should log to logger.
	Build func(logger hclog.Logger, seed int64) *session.Runner
	// NewLogger creates a logger writing to w.
	NewLogger func(w io.Writer) hclog.Logger
	// Seed is used for the first run; NewSeed for every "new clip".
	Seed    int64
	NewSeed func() int64

	StreamURL     string
	StreamTimeout time.Duration

	// Preview opens the clip and returns a line to show. Nil disables "p".
	Preview func(clipPath string) (string, error)
}

// tickMsg carries the run generation it was scheduled for, so ticks left over
// from a finished run are dropped.
type tickMsg struct {
	gen int
	at  time.Time
}

type clearMessageMsg struct{}

// Model is the Bubbletea model for a run.
type Model struct {
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	ch     <-chan tea.Msg

	seed       int64
	gen        int
	started    time.Time
	now        time.Time
	running    bool
	cancelling bool
	quitting   bool

	rows      []components.StageRow
	summary   components.SummaryState
	serve     components.ServeProgressState
	serveFrom time.Time
	logLines  []string
	message   string

	result *session.Result
	err    error

	width  int
	height int
}

// NewModel creates a model; the first run starts in Init.
func NewModel(opts Options) *Model {
	return &Model{opts: opts, seed: opts.Seed}
}

// Result returns the last run's result and error.
func (m *Model) Result() (*session.Result, error) {
	return m.result, m.err
}

// Init starts the first run.
func (m *Model) Init() tea.Cmd {
	return m.start(m.seed)
}

func (m *Model) start(seed int64) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.gen++
	m.seed = seed
	m.started = time.Now()
	m.now = m.started
	m.running = true
	m.cancelling = false
	m.result, m.err = nil, nil
	m.summary = components.SummaryState{}
	m.serve = components.ServeProgressState{URL: m.opts.StreamURL, Timeout: m.opts.StreamTimeout}
	m.logLines = nil
	m.rows = make([]components.StageRow, len(session.Stages))
	for i, s := range session.Stages {
		m.rows[i] = components.StageRow{Name: s.String()}
	}

	m.ch = startRunGoroutine(m.ctx, m.opts, seed)
	return tea.Batch(waitForRunMsg(m.ch), tickCmd(m.gen))
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func clearMessageAfter() tea.Cmd {
	return tea.Tick(messageDuration, func(time.Time) tea.Msg { return clearMessageMsg{} })
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.running || msg.gen != m.gen {
			return m, nil
		}
		m.now = msg.at
		if m.serve.Active {
			m.serve.Elapsed = m.now.Sub(m.serveFrom)
		}
		return m, tickCmd(m.gen)

	case stageEventMsg:
		m.applyEvent(msg.event)
		return m, waitForRunMsg(m.ch)

	case logLineMsg:
		m.appendLog(string(msg))
		return m, waitForRunMsg(m.ch)

	case runDoneMsg:
		m.finish(msg.result, msg.err)
		if m.cancelling {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case previewMsg:
		if msg.err != nil {
			m.message = styles.Warning.Render(msg.err.Error())
		} else {
			m.message = styles.Success.Render(msg.text)
		}
		return m, clearMessageAfter()

	case clearMessageMsg:
		m.message = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if m.running && !m.cancelling {
			// Let the runner stop ffmpeg before exiting.
			m.cancelling = true
			m.message = styles.Running.Render("Cancelling…")
			m.cancel()
			return m, nil
		}
		if m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit

	case "r":
		if m.running {
			return m, nil
		}
		seed := m.seed + 1
		if m.opts.NewSeed != nil {
			seed = m.opts.NewSeed()
		}
		return m, m.start(seed)

	case "p":
		if m.running || m.opts.Preview == nil || m.result == nil || m.result.ClipSize == 0 {
			return m, nil
		}
		clipPath := m.result.ClipPath
		preview := m.opts.Preview
		m.message = styles.SecondaryText.Render("Opening mpv…")
		return m, func() tea.Msg {
			text, err := preview(clipPath)
			return previewMsg{text: text, err: err}
		}
	}
	return m, nil
}

func (m *Model) applyEvent(e session.Event) {
	if int(e.Stage) < 0 || int(e.Stage) >= len(m.rows) {
		return
	}
	row := &m.rows[int(e.Stage)]
	switch e.Kind {
	case session.EventStarted:
		row.State = components.StageRunning
	case session.EventDone:
		row.State = components.StageDone
	case session.EventSkipped:
		row.State = components.StageSkipped
	case session.EventFailed:
		row.State = components.StageFailed
	}
	row.Message = e.Message
	if e.Kind == session.EventFailed && e.Message == "" && e.Err != nil {
		row.Message = e.Err.Error()
	}

	switch e.Stage {
	case session.StagePick:
		if e.Kind == session.EventDone {
			m.summary.Source = e.Message
		}
	case session.StageServe:
		if e.Kind == session.EventStarted {
			m.serve.Active = true
			m.serveFrom = time.Now()
			m.serve.Elapsed = 0
		} else {
			m.serve.Active = false
		}
	}

	line := fmt.Sprintf("%s %s", e.Stage, kindLabel(e.Kind))
	if e.Message != "" {
		line += ": " + e.Message
	}
	if e.Err != nil {
		line += ": " + e.Err.Error()
	}
	m.appendLog(line)
}

func kindLabel(k session.EventKind) string {
	switch k {
	case session.EventStarted:
		return "started"
	case session.EventDone:
		return "done"
	case session.EventSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

func (m *Model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
}

func (m *Model) finish(res *session.Result, err error) {
	m.running = false
	m.serve.Active = false
	m.now = time.Now()
	m.result, m.err = res, err
	if res == nil {
		return
	}

	m.summary = components.SummaryState{
		Source:     res.Video.Path,
		Candidates: res.Candidates,
		ClipSize:   res.ClipSize,
		Status:     res.Status,
	}
	if res.Meta != nil {
		m.summary.Resolution = fmt.Sprintf("%dx%d", res.Meta.Width, res.Meta.Height)
		m.summary.Duration = res.Meta.Duration
		m.summary.Window = res.Window.String()
	}
	if res.ClipSize > 0 {
		m.summary.ClipPath = res.ClipPath
	}
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		m.summary.Err = "cancelled"
	case err != nil:
		m.summary.Err = err.Error()
	case res.ServeErr != nil:
		m.summary.Err = res.ServeErr.Error()
	}
}

// View renders the current state.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Starting…\n"
	}
	if m.width < layout.MinTerminalWidth {
		return styles.Warning.Render(fmt.Sprintf("Terminal too narrow (%d cols)", m.width)) + "\n" +
			styles.SecondaryText.Render(fmt.Sprintf("Minimum width: %d columns", layout.MinTerminalWidth))
	}

	status := components.StatusBar(components.StatusBarState{
		RunID:   m.runID(),
		Seed:    m.seed,
		Elapsed: m.now.Sub(m.started),
		Done:    !m.running,
		Failed:  !m.running && m.err != nil,
	}, m.width)

	bindings := components.FinishedBindings
	if m.running {
		bindings = components.RunningBindings
	}
	help := components.HelpLine(bindings, m.width)

	// Status bar, message line and help line.
	bodyHeight := m.height - 3
	if bodyHeight < 8 {
		bodyHeight = 8
	}

	stagesW, detailsW, stacked := layout.ComputeColumnWidths(m.width)
	stages := components.StageList(m.rows, stagesW)

	var body string
	if stacked {
		top := stages + "\n" + m.renderDetails(detailsW)
		body = layout.Container{Width: m.width, Height: bodyHeight}.Render(top + "\n" + m.renderLog(detailsW, bodyHeight-lineCount(top)))
	} else {
		details := m.renderDetails(detailsW)
		logView := m.renderLog(detailsW, bodyHeight-lineCount(details))
		body = layout.JoinColumns([]string{stages, details + "\n" + logView}, []int{stagesW, detailsW}, bodyHeight)
	}

	return status + "\n" + body + "\n" + layout.PadToWidth(" "+m.message, m.width) + "\n" + help
}

func (m *Model) runID() string {
	if m.result != nil {
		return m.result.RunID
	}
	return ""
}

func (m *Model) renderDetails(width int) string {
	out := components.Summary(m.summary, width)
	if box := components.ServeProgress(m.serve, width); box != "" {
		out += "\n" + box
	}
	return out
}

func (m *Model) renderLog(width, height int) string {
	if height <= 1 {
		return ""
	}
	header := styles.Header.Render(" Log")
	c := layout.Container{Width: width, Height: height - 1}
	lines := make([]string, len(m.logLines))
	for i, l := range m.logLines {
		lines[i] = " " + styles.SecondaryText.Render(l)
	}
	return header + "\n" + c.Render(strings.Join(lines, "\n"))
}

func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}

// Run starts the Bubbletea program and returns the last run's outcome.
func Run(opts Options) (*session.Result, error) {
	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return model.Result()
}
