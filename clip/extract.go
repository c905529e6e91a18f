package clip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/user/cliporama/logging"
	"github.com/user/cliporama/pkg/tool"
)

// ExtractParams describes one clip cut.
type ExtractParams struct {
	Source string
	Output string
	Window Window
	// Width is the output width in pixels; the height follows the aspect ratio.
	Width int
	// Audio controls whether the audio chain is kept. Sources without an
	// audio stream must set it to false or ffmpeg rejects the filter graph.
	Audio bool
}

// Extractor cuts clips out of source videos with ffmpeg.
type Extractor struct {
	// Bin is the ffmpeg executable; empty means "ffmpeg".
	Bin    string
	Logger hclog.Logger
}

func NewExtractor(bin string, logger hclog.Logger) *Extractor {
	return &Extractor{Bin: bin, Logger: logging.OrNull(logger)}
}

// Args builds the ffmpeg arguments for p. Seeking happens on the input side
// (-ss before -i), which is much faster than trimming after decode; the
// filters then reset timestamps to start at zero and scale the picture.
func (e *Extractor) Args(p ExtractParams) []string {
	width := p.Width
	if width <= 0 {
		width = 480
	}

	filter := fmt.Sprintf("[0:v]setpts=PTS-STARTPTS,scale=%d:-2[v]", width)
	if p.Audio {
		filter += ";[0:a]asetpts=PTS-STARTPTS[a]"
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "warning",
		"-ss", fmt.Sprintf("%.3f", p.Window.Start),
		"-t", fmt.Sprintf("%.3f", p.Window.Length),
		"-i", p.Source,
		"-filter_complex", filter,
		"-map", "[v]",
	}
	if p.Audio {
		args = append(args, "-map", "[a]")
	} else {
		args = append(args, "-an")
	}

	return append(args, p.Output)
}

// Extract runs ffmpeg for p, creating the output directory first.
// On failure the returned *tool.Error carries everything ffmpeg printed.
func (e *Extractor) Extract(ctx context.Context, p ExtractParams) error {
	if p.Window.Length <= 0 {
		return fmt.Errorf("extract %s: empty window %s", p.Source, p.Window)
	}

	if err := os.MkdirAll(filepath.Dir(p.Output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	bin := e.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	log := logging.OrNull(e.Logger)

	args := e.Args(p)
	log.Debug("running ffmpeg", "args", strings.Join(args, " "))

	out, err := tool.RunCombined(ctx, bin, args...)
	if err != nil {
		log.Error("clip extraction failed", "source", p.Source, "output", string(out))
		return fmt.Errorf("extract %s: %w", p.Source, err)
	}
	if len(out) > 0 {
		log.Debug("ffmpeg output", "output", strings.TrimSpace(string(out)))
	}
	return nil
}
