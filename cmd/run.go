package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/user/cliporama/clip"
	"github.com/user/cliporama/config"
	"github.com/user/cliporama/db"
	"github.com/user/cliporama/deps"
	"github.com/user/cliporama/logging"
	"github.com/user/cliporama/pkg/timeutil"
	"github.com/user/cliporama/probe"
	"github.com/user/cliporama/session"
	"github.com/user/cliporama/stream"
	"github.com/user/cliporama/tui"
	"github.com/user/cliporama/tui/forms"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Cut a random clip and stream it (default command)",
	Long: `Pick a random video below the configured directory, cut a clip of
min..max seconds from a random point, write it to the output path and
serve it once over HTTP. Flags override the config file.`,
	Args: cobra.NoArgs,
	RunE: runClip,
}

// addRunFlags registers the pipeline flags on c. Both the root command and
// run accept them.
func addRunFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringP("dir", "d", "", "Directory searched for videos")
	f.StringSliceP("ext", "e", nil, "Video filename suffixes (repeatable or comma separated)")
	f.StringSlice("exclude", nil, "Directories to skip while scanning")
	f.Int("min", 0, "Minimum clip length in seconds")
	f.Int("max", 0, "Maximum clip length in seconds")
	f.StringP("out", "o", "", "Output clip path (overwritten)")
	f.Int("width", 0, "Output width in pixels; height keeps the aspect ratio")
	f.String("url", "", "Listen URL for streaming")
	f.String("format", "", "Stream container format")
	f.Duration("timeout", 0, "How long to wait for a consumer")
	f.Bool("no-serve", false, "Cut the clip without streaming it")
	f.StringP("file", "f", "", "Use this video instead of a random one")
	f.String("start", "", "Clip start (seconds, M:SS or H:MM:SS) instead of a random one")
	f.Float64("length", 0, "Clip length in seconds; only with --start")
	f.Int64("seed", 0, "Random seed; the same seed picks the same clip from the same library")
	f.Bool("tui", false, "Show the live progress view")
	f.BoolP("interactive", "i", false, "Edit the main settings in a form before running")
	f.Bool("no-history", false, "Do not record this run")
}

// applyRunFlags copies every flag the user set onto cfg.
func applyRunFlags(c *cobra.Command, cfg *config.Config) {
	f := c.Flags()
	if f.Changed("dir") {
		cfg.Directory, _ = f.GetString("dir")
	}
	if f.Changed("ext") {
		cfg.Extensions, _ = f.GetStringSlice("ext")
	}
	if f.Changed("exclude") {
		cfg.Exclude, _ = f.GetStringSlice("exclude")
	}
	if f.Changed("min") {
		cfg.MinLength, _ = f.GetInt("min")
	}
	if f.Changed("max") {
		cfg.MaxLength, _ = f.GetInt("max")
	}
	if f.Changed("out") {
		cfg.ClipPath, _ = f.GetString("out")
	}
	if f.Changed("width") {
		cfg.ScaleWidth, _ = f.GetInt("width")
	}
	if f.Changed("url") {
		cfg.StreamURL, _ = f.GetString("url")
	}
	if f.Changed("format") {
		cfg.StreamFormat, _ = f.GetString("format")
	}
	if f.Changed("timeout") {
		cfg.StreamTimeout, _ = f.GetDuration("timeout")
	}
	if noServe, _ := f.GetBool("no-serve"); noServe {
		cfg.Serve = false
	}
	if noHistory, _ := f.GetBool("no-history"); noHistory {
		cfg.HistoryPath = ""
	}
}

// runOverrides pin parts of the pipeline that are normally random.
type runOverrides struct {
	Source   string
	Start    float64
	HasStart bool
	Length   float64
}

func overridesFromFlags(c *cobra.Command) (runOverrides, error) {
	f := c.Flags()
	var o runOverrides
	o.Source, _ = f.GetString("file")
	if f.Changed("start") {
		s, _ := f.GetString("start")
		start, err := timeutil.ParseTimeToSeconds(s)
		if err != nil {
			return runOverrides{}, fmt.Errorf("invalid --start: %w", err)
		}
		o.Start, o.HasStart = start, true
	}
	if f.Changed("length") {
		if !o.HasStart {
			return runOverrides{}, errors.New("--length requires --start")
		}
		o.Length, _ = f.GetFloat64("length")
		if o.Length <= 0 {
			return runOverrides{}, fmt.Errorf("--length must be positive, got %g", o.Length)
		}
	}
	return o, nil
}

// newSeed returns a fresh non-negative seed.
func newSeed() int64 {
	return rand.Int64()
}

// newRunner wires the ffmpeg-backed steps for one run.
func newRunner(cfg config.Config, o runOverrides, seed int64, logger hclog.Logger, rec session.Recorder) *session.Runner {
	r := &session.Runner{
		Options: session.Options{
			Directory:  cfg.Directory,
			Extensions: cfg.Extensions,
			Exclude:    cfg.Exclude,
			ClipPath:   cfg.ClipPath,
			MinLength:  cfg.MinLength,
			MaxLength:  cfg.MaxLength,
			Width:      cfg.ScaleWidth,
			Serve:      cfg.Serve,
			Source:     o.Source,
			Start:      o.Start,
			HasStart:   o.HasStart,
			Length:     o.Length,
			Seed:       seed,
		},
		Prober:    probe.NewProber(cfg.FfprobePath, logger.Named("probe")),
		Extractor: clip.NewExtractor(cfg.FfmpegPath, logger.Named("extract")),
		Logger:    logger,
		Recorder:  rec,
	}
	if cfg.Serve {
		r.Streamer = newStreamer(cfg, logger)
	}
	return r
}

func newStreamer(cfg config.Config, logger hclog.Logger) *stream.Server {
	return stream.NewServer(cfg.FfmpegPath, cfg.StreamURL, cfg.StreamFormat, cfg.StreamTimeout, logger.Named("stream"))
}

// openRecorder opens the history database. A history that cannot be opened
// is logged and skipped; the returned close func is always safe to call.
func openRecorder(cfg config.Config, logger hclog.Logger) (session.Recorder, func()) {
	if cfg.HistoryPath == "" {
		return nil, func() {}
	}
	database, err := db.Open(cfg.HistoryPath)
	if err != nil {
		logger.Warn("run history disabled", "path", cfg.HistoryPath, "error", err)
		return nil, func() {}
	}
	return db.NewHistory(database), func() { database.Close() }
}

// validateConfig checks the merged config once every flag has been applied.
func validateConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return &config.Error{Err: err}
	}
	return nil
}

// checkTools reports every missing binary the pipeline needs.
func checkTools(cfg config.Config) error {
	return errors.Join(deps.Required(deps.Ffprobe(cfg.FfprobePath), deps.Ffmpeg(cfg.FfmpegPath))...)
}

// signalContext is cancelled on Ctrl-C or SIGTERM so a running ffmpeg is stopped.
func signalContext(c *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
}

func runClip(c *cobra.Command, args []string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyRunFlags(c, &cfg)

	if interactive, _ := c.Flags().GetBool("interactive"); interactive {
		if err := editInForm(&cfg); err != nil {
			return err
		}
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	o, err := overridesFromFlags(c)
	if err != nil {
		return err
	}
	if err := checkTools(cfg); err != nil {
		return err
	}

	seed := newSeed()
	if c.Flags().Changed("seed") {
		seed, _ = c.Flags().GetInt64("seed")
	}

	useTUI, _ := c.Flags().GetBool("tui")
	if useTUI {
		return runWithTUI(c, cfg, o, seed)
	}

	logger := newLogger(cfg)
	rec, closeRec := openRecorder(cfg, logger)
	defer closeRec()

	ctx, stop := signalContext(c)
	defer stop()

	runner := newRunner(cfg, o, seed, logger, rec)
	printer := &progressPrinter{w: c.OutOrStdout(), serveTarget: "http"}
	if cfg.Serve {
		printer.serveTarget = newStreamer(cfg, logger).Describe()
	}
	runner.Observer = printer.observe

	res, err := runner.Run(ctx)
	printResult(c.OutOrStdout(), res)
	return err
}

func runWithTUI(c *cobra.Command, cfg config.Config, o runOverrides, seed int64) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return errors.New("--tui needs a terminal on stdout")
	}

	// Logs go to the view; stderr would tear the alt screen.
	rec, closeRec := openRecorder(cfg, hclog.NewNullLogger())
	defer closeRec()

	res, err := tui.Run(tui.Options{
		Build: func(logger hclog.Logger, seed int64) *session.Runner {
			return newRunner(cfg, o, seed, logger, rec)
		},
		NewLogger:     func(w io.Writer) hclog.Logger { return logging.New(cfg.LogLevel, w) },
		Seed:          seed,
		NewSeed:       newSeed,
		StreamURL:     cfg.StreamURL,
		StreamTimeout: cfg.StreamTimeout,
		Preview: func(clipPath string) (string, error) {
			return previewClip(c.Context(), cfg, clipPath, false)
		},
	})
	printResult(c.OutOrStdout(), res)
	return err
}

// editInForm lets the user adjust the main settings before the run.
func editInForm(cfg *config.Config) error {
	result := forms.NewRunFormResult(forms.RunValues{
		Directory:  cfg.Directory,
		Extensions: cfg.Extensions,
		MinLength:  cfg.MinLength,
		MaxLength:  cfg.MaxLength,
		Serve:      cfg.Serve,
	})
	if err := forms.NewRunForm(result).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("cancelled")
		}
		return err
	}
	v, err := result.Values()
	if err != nil {
		return err
	}
	cfg.Directory = v.Directory
	cfg.Extensions = v.Extensions
	cfg.MinLength = v.MinLength
	cfg.MaxLength = v.MaxLength
	cfg.Serve = v.Serve
	return nil
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
