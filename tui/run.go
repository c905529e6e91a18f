package tui

import (
	"bytes"
	"context"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/user/cliporama/session"
)

// stageEventMsg carries a pipeline event from the run goroutine.
type stageEventMsg struct {
	event session.Event
}

// logLineMsg is one line written by the run's logger.
type logLineMsg string

// runDoneMsg is sent once when the run returns.
type runDoneMsg struct {
	result *session.Result
	err    error
}

// previewMsg reports the outcome of opening the clip in mpv.
type previewMsg struct {
	text string
	err  error
}

// waitForRunMsg returns a tea.Cmd that waits for the next message on the channel.
func waitForRunMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// lineWriter turns logger output into logLineMsg values. Writes after stop
// are dropped so late log lines never hit a closed channel.
type lineWriter struct {
	ctx     context.Context
	ch      chan<- tea.Msg
	mu      sync.Mutex
	stopped bool
	buf     bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return len(p), nil
	}
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line, keep it for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		select {
		case w.ch <- logLineMsg(strings.TrimRight(line, "\r\n")):
		case <-w.ctx.Done():
			return len(p), nil
		}
	}
	return len(p), nil
}

func (w *lineWriter) stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
}

// startRunGoroutine builds a runner through opts.Build and runs it in the
// background. Events, log lines and the final result arrive on the returned
// channel, which is closed after runDoneMsg.
func startRunGoroutine(ctx context.Context, opts Options, seed int64) <-chan tea.Msg {
	ch := make(chan tea.Msg, 32)
	lw := &lineWriter{ctx: ctx, ch: ch}

	send := func(msg tea.Msg) {
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	}

	runner := opts.Build(opts.NewLogger(lw), seed)
	runner.Observer = func(e session.Event) { send(stageEventMsg{event: e}) }

	go func() {
		defer close(ch)
		res, err := runner.Run(ctx)
		lw.stop()
		// The done message must get through even after cancellation.
		ch <- runDoneMsg{result: res, err: err}
	}()
	return ch
}
