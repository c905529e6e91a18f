package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/hashicorp/go-hclog"
	"github.com/user/cliporama/clip"
	"github.com/user/cliporama/library"
	"github.com/user/cliporama/logging"
	"github.com/user/cliporama/probe"
	"github.com/user/cliporama/session"
	"github.com/user/cliporama/tui/components"
)

type stubProber struct{}

func (stubProber) Probe(context.Context, string) (*probe.Metadata, error) {
	return &probe.Metadata{Width: 1920, Height: 1080, Duration: 300, HasAudio: true}, nil
}

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, p clip.ExtractParams) error {
	return os.WriteFile(p.Output, []byte("clip"), 0o644)
}

// stubStreamer returns err, or blocks until ctx is done when block is set.
type stubStreamer struct {
	err   error
	block bool
}

func (s stubStreamer) Serve(ctx context.Context, _ string) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func testOptions(t *testing.T, streamer session.Streamer) Options {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out.mp4")
	src := filepath.Join(t.TempDir(), "match.mp4")
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	seeds := int64(100)
	return Options{
		Build: func(logger hclog.Logger, seed int64) *session.Runner {
			return &session.Runner{
				Options: session.Options{
					Directory:  filepath.Dir(src),
					Extensions: []string{".mp4"},
					ClipPath:   out,
					MinLength:  5,
					MaxLength:  10,
					Width:      480,
					Serve:      true,
					Seed:       seed,
				},
				Prober:    stubProber{},
				Extractor: stubExtractor{},
				Streamer:  streamer,
				Logger:    logger,
				Scan: func(string, []string, []string) ([]library.Video, error) {
					return []library.Video{{Path: src, RelPath: "match.mp4", Size: 5}}, nil
				},
			}
		},
		NewLogger:     func(w io.Writer) hclog.Logger { return logging.New("debug", w) },
		Seed:          7,
		NewSeed:       func() int64 { seeds++; return seeds },
		StreamURL:     "http://0.0.0.0:8080",
		StreamTimeout: 30 * time.Second,
	}
}

// drain feeds every message from the run channel into the model and returns
// the command produced by the final message.
func drain(t *testing.T, m *Model) tea.Cmd {
	t.Helper()
	var last tea.Cmd
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg, ok := <-m.ch:
			if !ok {
				return last
			}
			_, last = m.Update(msg)
		case <-timeout:
			t.Fatal("run did not finish")
		}
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_RunToCompletion(t *testing.T) {
	m := NewModel(testOptions(t, stubStreamer{}))
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drain(t, m)

	res, err := m.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Served() {
		t.Errorf("Status = %q", res.Status)
	}
	if m.running {
		t.Error("model should not be running")
	}
	for _, r := range m.rows {
		if r.State != components.StageDone {
			t.Errorf("stage %s state = %v, want done", r.Name, r.State)
		}
	}

	view := ansi.Strip(m.View())
	for _, want := range []string{"✓ Serve", "served", "1920x1080", "p preview clip"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if len(m.logLines) == 0 {
		t.Error("expected log lines from the run")
	}
}

func TestModel_ServeTimeoutShown(t *testing.T) {
	m := NewModel(testOptions(t, stubStreamer{err: errors.New("stream: timed out waiting for consumer")}))
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	drain(t, m)

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "✗ Serve") || !strings.Contains(view, "timed out") {
		t.Errorf("serve failure not shown:\n%s", view)
	}
}

func TestModel_NewClipUsesNewSeed(t *testing.T) {
	m := NewModel(testOptions(t, stubStreamer{}))
	m.Init()
	drain(t, m)
	if m.seed != 7 {
		t.Fatalf("first seed = %d", m.seed)
	}

	m.Update(key("r"))
	if !m.running || m.seed != 101 {
		t.Fatalf("rerun: running=%v seed=%d", m.running, m.seed)
	}
	drain(t, m)
	res, _ := m.Result()
	if res == nil || res.Seed != 101 {
		t.Errorf("result = %+v", res)
	}
}

func TestModel_NewClipDropsStaleTicks(t *testing.T) {
	m := NewModel(testOptions(t, stubStreamer{}))
	m.Init()
	drain(t, m)

	firstCtx, firstGen := m.ctx, m.gen
	m.Update(key("r"))
	if firstCtx.Err() == nil {
		t.Error("previous run context should be cancelled")
	}
	if m.gen == firstGen {
		t.Fatal("generation not advanced")
	}

	_, cmd := m.Update(tickMsg{gen: firstGen, at: time.Now()})
	if cmd != nil {
		t.Error("tick from the previous run should not reschedule")
	}
	_, cmd = m.Update(tickMsg{gen: m.gen, at: time.Now()})
	if cmd == nil {
		t.Error("tick for the current run should reschedule")
	}
	drain(t, m)
}

func TestModel_QuitWhileRunningCancels(t *testing.T) {
	m := NewModel(testOptions(t, stubStreamer{block: true}))
	m.Init()

	// Wait for the serve stage to start.
	for !m.serve.Active {
		select {
		case msg := <-m.ch:
			m.Update(msg)
		case <-time.After(5 * time.Second):
			t.Fatal("serve never started")
		}
	}

	m.Update(key("q"))
	if !m.cancelling || m.quitting {
		t.Fatalf("cancelling=%v quitting=%v", m.cancelling, m.quitting)
	}

	cmd := drain(t, m)
	if !m.quitting || cmd == nil {
		t.Fatal("expected quit after the run stopped")
	}
	if _, err := m.Result(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestModel_NarrowTerminal(t *testing.T) {
	m := NewModel(testOptions(t, stubStreamer{}))
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if !strings.Contains(ansi.Strip(m.View()), "Terminal too narrow") {
		t.Error("expected narrow terminal warning")
	}
}
