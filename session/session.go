// Package session runs one clip pipeline: scan the library, pick a video,
// probe it, choose a window, cut the clip and optionally stream it.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/user/cliporama/clip"
	"github.com/user/cliporama/db"
	"github.com/user/cliporama/library"
	"github.com/user/cliporama/logging"
	"github.com/user/cliporama/probe"
	"github.com/user/cliporama/stream"
)

// Prober reads source metadata.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.Metadata, error)
}

// Extractor writes the clip file.
type Extractor interface {
	Extract(ctx context.Context, p clip.ExtractParams) error
}

// Streamer hands the clip to a consumer.
type Streamer interface {
	Serve(ctx context.Context, clipPath string) error
}

// Recorder persists run progress. Recording failures are logged, never fatal.
type Recorder interface {
	Start(id string, seed int64) error
	Source(id string, v library.Video, meta *probe.Metadata, w clip.Window, clipPath string) error
	Extracted(id string, size int64) error
	Finish(id, status, logMsg string) error
}

// Options are the per-run parameters.
type Options struct {
	Directory  string
	Extensions []string
	Exclude    []string

	ClipPath  string
	MinLength int
	MaxLength int
	Width     int
	Serve     bool

	// Source skips scanning and picking and uses this file instead.
	Source string
	// Start fixes the clip start when HasStart is set. Length, when positive,
	// fixes the clip length as well; it is only honoured together with Start.
	Start    float64
	HasStart bool
	Length   float64

	Seed int64
}

// Result describes what a run did. Fields are filled in as stages complete,
// so a failed run still reports how far it got.
type Result struct {
	RunID      string
	Seed       int64
	Candidates int
	Index      int
	Video      library.Video
	Meta       *probe.Metadata
	Window     clip.Window
	ClipPath   string
	ClipSize   int64
	Status     string
	ServeErr   error
}

// Served reports whether a consumer received the clip.
func (r *Result) Served() bool { return r.Status == db.StatusServed }

// TimedOut reports whether streaming gave up waiting for a consumer.
func (r *Result) TimedOut() bool { return r.Status == db.StatusTimeout }

// Runner wires the pipeline steps together.
type Runner struct {
	Options   Options
	Prober    Prober
	Extractor Extractor
	Streamer  Streamer
	// Recorder may be nil.
	Recorder Recorder
	Logger   hclog.Logger
	// Observer receives progress events; may be nil.
	Observer Observer

	// Scan defaults to library.Scan.
	Scan func(root string, suffixes, exclude []string) ([]library.Video, error)
	// NewID defaults to a random UUID.
	NewID func() string
}

// NewRand returns the generator a run with seed uses. The same seed always
// yields the same file and window for the same library.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Run executes the pipeline. Extraction and everything before it are fatal;
// streaming problems are logged and reflected in Result.Status.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := logging.OrNull(r.Logger)
	opts := r.Options

	newID := r.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	res := &Result{RunID: newID(), Seed: opts.Seed, Status: db.StatusPending}
	r.record(log, "start", func(rec Recorder) error { return rec.Start(res.RunID, opts.Seed) })

	err := r.run(ctx, log, res)
	if err != nil {
		res.Status = db.StatusError
		r.record(log, "finish", func(rec Recorder) error { return rec.Finish(res.RunID, db.StatusError, err.Error()) })
		return res, err
	}

	logMsg := ""
	if res.ServeErr != nil {
		logMsg = res.ServeErr.Error()
	}
	r.record(log, "finish", func(rec Recorder) error { return rec.Finish(res.RunID, res.Status, logMsg) })
	return res, nil
}

func (r *Runner) run(ctx context.Context, log hclog.Logger, res *Result) error {
	opts := r.Options
	rng := NewRand(opts.Seed)

	clipPath, err := clip.OutputPath(opts.ClipPath)
	if err != nil {
		return err
	}
	res.ClipPath = clipPath

	// Scan and pick.
	if opts.Source != "" {
		v, err := sourceVideo(opts.Source)
		if err != nil {
			r.emit(Event{Stage: StagePick, Kind: EventFailed, Err: err})
			return err
		}
		r.emit(Event{Stage: StageScan, Kind: EventSkipped, Message: "source given"})
		res.Video = v
		res.Candidates = 1
		r.emit(Event{Stage: StagePick, Kind: EventDone, Message: v.Path})
	} else {
		r.emit(Event{Stage: StageScan, Kind: EventStarted, Message: opts.Directory})
		videos, err := r.scan(opts)
		if err != nil {
			r.emit(Event{Stage: StageScan, Kind: EventFailed, Err: err})
			return err
		}
		videos = without(videos, clipPath)
		res.Candidates = len(videos)
		r.emit(Event{Stage: StageScan, Kind: EventDone, Message: fmt.Sprintf("Found %d video files", len(videos))})

		idx, v, err := library.Pick(rng, videos)
		if err != nil {
			err = fmt.Errorf("%w in %s (extensions %s)", err, opts.Directory, strings.Join(opts.Extensions, ", "))
			r.emit(Event{Stage: StagePick, Kind: EventFailed, Err: err})
			return err
		}
		res.Index = idx
		res.Video = v
		r.emit(Event{Stage: StagePick, Kind: EventDone, Message: fmt.Sprintf("%s (random file %d)", v.RelPath, idx)})
	}
	log.Info("picked source", "path", res.Video.Path, "index", res.Index, "candidates", res.Candidates)

	// Probe and window.
	r.emit(Event{Stage: StageProbe, Kind: EventStarted, Message: res.Video.Path})
	meta, err := r.Prober.Probe(ctx, res.Video.Path)
	if err != nil {
		r.emit(Event{Stage: StageProbe, Kind: EventFailed, Err: err})
		return err
	}
	res.Meta = meta

	res.Window = chooseWindow(rng, opts, meta.Duration)
	if res.Window.Length <= 0 {
		err := fmt.Errorf("clip start %.3fs is past the end of %s (%.3fs)", opts.Start, res.Video.Path, meta.Duration)
		r.emit(Event{Stage: StageProbe, Kind: EventFailed, Err: err})
		return err
	}
	r.emit(Event{Stage: StageProbe, Kind: EventDone, Message: fmt.Sprintf("Original video width is %d, height is %d, duration is %.2fs", meta.Width, meta.Height, meta.Duration)})
	log.Info("clip window", "start", res.Window.Start, "end", res.Window.End(), "length", res.Window.Length,
		"width", meta.Width, "height", meta.Height, "duration", meta.Duration)
	r.record(log, "source", func(rec Recorder) error {
		return rec.Source(res.RunID, res.Video, meta, res.Window, clipPath)
	})

	// Extract.
	r.emit(Event{Stage: StageExtract, Kind: EventStarted, Message: "Clip is from " + res.Window.String()})
	err = r.Extractor.Extract(ctx, clip.ExtractParams{
		Source: res.Video.Path,
		Output: clipPath,
		Window: res.Window,
		Width:  opts.Width,
		Audio:  meta.HasAudio,
	})
	if err != nil {
		r.emit(Event{Stage: StageExtract, Kind: EventFailed, Err: err})
		return err
	}
	if fi, err := os.Stat(clipPath); err == nil {
		res.ClipSize = fi.Size()
	}
	res.Status = db.StatusExtracted
	r.emit(Event{Stage: StageExtract, Kind: EventDone, Message: clipPath})
	r.record(log, "extracted", func(rec Recorder) error { return rec.Extracted(res.RunID, res.ClipSize) })

	// Serve.
	if !opts.Serve || r.Streamer == nil {
		r.emit(Event{Stage: StageServe, Kind: EventSkipped, Message: "streaming disabled"})
		return nil
	}

	r.emit(Event{Stage: StageServe, Kind: EventStarted, Message: clipPath})
	err = r.Streamer.Serve(ctx, clipPath)
	switch {
	case err == nil:
		res.Status = db.StatusServed
		r.emit(Event{Stage: StageServe, Kind: EventDone, Message: "clip sent"})
	case ctx.Err() != nil:
		r.emit(Event{Stage: StageServe, Kind: EventFailed, Err: ctx.Err()})
		return ctx.Err()
	case errors.Is(err, stream.ErrTimeout):
		res.Status = db.StatusTimeout
		res.ServeErr = err
		r.emit(Event{Stage: StageServe, Kind: EventFailed, Err: err, Message: "timeout, no consumer"})
	default:
		res.Status = db.StatusServeFailed
		res.ServeErr = err
		log.Warn("streaming failed, clip kept", "clip", clipPath, "error", err)
		r.emit(Event{Stage: StageServe, Kind: EventFailed, Err: err})
	}
	return nil
}

func (r *Runner) scan(opts Options) ([]library.Video, error) {
	scan := r.Scan
	if scan == nil {
		scan = library.Scan
	}
	return scan(opts.Directory, opts.Extensions, opts.Exclude)
}

func (r *Runner) emit(e Event) {
	if r.Observer != nil {
		r.Observer(e)
	}
}

func (r *Runner) record(log hclog.Logger, step string, fn func(Recorder) error) {
	if r.Recorder == nil {
		return
	}
	if err := fn(r.Recorder); err != nil {
		log.Warn("failed to record run", "step", step, "error", err)
	}
}

func chooseWindow(rng *rand.Rand, opts Options, duration float64) clip.Window {
	switch {
	case opts.HasStart && opts.Length > 0:
		return clip.Clamp(clip.Window{Start: opts.Start, Length: opts.Length}, duration)
	case opts.HasStart:
		return clip.WindowAt(rng, opts.Start, duration, opts.MinLength, opts.MaxLength)
	default:
		return clip.PickWindow(rng, duration, opts.MinLength, opts.MaxLength)
	}
}

func sourceVideo(path string) (library.Video, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return library.Video{}, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return library.Video{}, fmt.Errorf("video file not found: %s", abs)
	}
	if err != nil {
		return library.Video{}, fmt.Errorf("failed to access video file: %w", err)
	}
	if info.IsDir() {
		return library.Video{}, fmt.Errorf("path is a directory, not a video file: %s", abs)
	}
	return library.Video{
		Path:    abs,
		RelPath: filepath.Base(abs),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// without drops the clip output from the candidates so a clip written inside
// the library is never used as a source.
func without(videos []library.Video, clipPath string) []library.Video {
	out := videos[:0]
	for _, v := range videos {
		if abs, err := filepath.Abs(v.Path); err == nil && abs == clipPath {
			continue
		}
		out = append(out, v)
	}
	return out
}
