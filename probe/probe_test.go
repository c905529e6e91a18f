package probe

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/user/cliporama/pkg/tool"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "duration": "1320.487000"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "duration": "1320.500000"}
  ],
  "format": {"duration": "1320.512000"}
}`

func TestParse(t *testing.T) {
	meta, err := Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Width != 1920 || meta.Height != 1080 {
		t.Errorf("dimensions = %dx%d", meta.Width, meta.Height)
	}
	if meta.Duration != 1320.487 {
		t.Errorf("Duration = %v, want stream duration 1320.487", meta.Duration)
	}
	if meta.Codec != "h264" {
		t.Errorf("Codec = %q", meta.Codec)
	}
	if !meta.HasAudio {
		t.Error("HasAudio should be true")
	}
}

func TestParse_FallsBackToFormatDuration(t *testing.T) {
	data := `{
	  "streams": [{"codec_type": "video", "codec_name": "vp9", "width": 640, "height": 360}],
	  "format": {"duration": "95.25"}
	}`
	meta, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Duration != 95.25 {
		t.Errorf("Duration = %v", meta.Duration)
	}
	if meta.HasAudio {
		t.Error("HasAudio should be false")
	}
}

func TestParse_FirstVideoStreamWins(t *testing.T) {
	data := `{
	  "streams": [
	    {"codec_type": "audio", "codec_name": "aac"},
	    {"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "duration": "10"},
	    {"codec_type": "video", "codec_name": "mjpeg", "width": 300, "height": 300, "duration": "0.04"}
	  ]
	}`
	meta, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Codec != "h264" || meta.Width != 1280 {
		t.Errorf("picked wrong stream: %+v", meta)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no streams", `{"streams": [], "format": {"duration": "10"}}`, ErrNoVideoStream},
		{"audio only", `{"streams": [{"codec_type": "audio"}], "format": {"duration": "10"}}`, ErrNoVideoStream},
		{"no duration", `{"streams": [{"codec_type": "video"}], "format": {}}`, ErrNoDuration},
		{"N/A duration", `{"streams": [{"codec_type": "video", "duration": "N/A"}], "format": {"duration": "N/A"}}`, ErrNoDuration},
		{"zero duration", `{"streams": [{"codec_type": "video", "duration": "0"}], "format": {}}`, ErrNoDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestArgs(t *testing.T) {
	args := Args("/videos/a.mp4")
	if args[len(args)-1] != "/videos/a.mp4" {
		t.Errorf("input path should be last: %v", args)
	}
	found := false
	for i, a := range args {
		if a == "-of" && i+1 < len(args) && args[i+1] == "json" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected -of json in %v", args)
	}
}

// fakeProbe writes a shell script that prints output and exits with code.
func fakeProbe(t *testing.T, output string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	data := filepath.Join(dir, "out.json")
	if err := os.WriteFile(data, []byte(output), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	script := filepath.Join(dir, "ffprobe")
	body := "#!/bin/sh\ncat '" + data + "'\necho 'probe diagnostics' >&2\nexit " + strconv.Itoa(code) + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return script
}

func TestProber_Probe(t *testing.T) {
	bin := fakeProbe(t, sampleOutput, 0)
	p := NewProber(bin, nil)

	meta, err := p.Probe(context.Background(), "/videos/a.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Width != 1920 {
		t.Errorf("Width = %d", meta.Width)
	}
}

func TestProber_ToolFailure(t *testing.T) {
	bin := fakeProbe(t, "", 1)
	p := NewProber(bin, nil)

	_, err := p.Probe(context.Background(), "/videos/a.mp4")
	var toolErr *tool.Error
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *tool.Error, got %T (%v)", err, err)
	}
	if toolErr.Output == "" {
		t.Error("expected captured stderr")
	}
}
