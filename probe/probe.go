// Package probe reads the dimensions and duration of a source video with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/user/cliporama/logging"
	"github.com/user/cliporama/pkg/tool"
)

var (
	ErrNoVideoStream = errors.New("probe: no video stream")
	ErrNoDuration    = errors.New("probe: duration not available")
)

// Metadata is what the clip window computation needs to know about a source.
type Metadata struct {
	Width    int
	Height   int
	Duration float64
	Codec    string
	HasAudio bool
}

type Prober struct {
	// Bin is the ffprobe executable; empty means "ffprobe".
	Bin    string
	Logger hclog.Logger
}

func NewProber(bin string, logger hclog.Logger) *Prober {
	return &Prober{Bin: bin, Logger: logging.OrNull(logger)}
}

// Args returns the ffprobe arguments used to inspect path.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	}
}

func (p *Prober) Probe(ctx context.Context, path string) (*Metadata, error) {
	bin := p.Bin
	if bin == "" {
		bin = "ffprobe"
	}
	log := logging.OrNull(p.Logger)

	args := Args(path)
	log.Debug("running ffprobe", "args", strings.Join(args, " "))

	out, err := tool.Run(ctx, bin, args...)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	meta, err := Parse(out)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	return meta, nil
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// Parse decodes ffprobe JSON output. The first video stream supplies the
// dimensions; its duration is preferred over the container duration.
func Parse(data []byte) (*Metadata, error) {
	var ff ffprobeOutput
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	var (
		video    *ffprobeStream
		hasAudio bool
	)
	for i := range ff.Streams {
		s := &ff.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil {
				video = s
			}
		case "audio":
			hasAudio = true
		}
	}
	if video == nil {
		return nil, ErrNoVideoStream
	}

	duration, ok := parseDuration(video.Duration)
	if !ok {
		duration, ok = parseDuration(ff.Format.Duration)
	}
	if !ok {
		return nil, ErrNoDuration
	}

	return &Metadata{
		Width:    video.Width,
		Height:   video.Height,
		Duration: duration,
		Codec:    video.CodecName,
		HasAudio: hasAudio,
	}, nil
}

func parseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, false
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
