package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the config file looked up in the working directory when --config is not given.
const FileName = "cliporama.json"

// Defaults mirror the constants the tool has always shipped with.
const (
	DefaultClipName   = "out.mp4"
	DefaultMinLength  = 5
	DefaultMaxLength  = 10
	DefaultScaleWidth = 480
	DefaultFormat     = "flv"
	DefaultStreamURL  = "http://0.0.0.0:8080"
	DefaultTimeout    = 30 * time.Second
)

// DefaultExtensions are the suffixes scanned for when none are configured.
// Some containers (flv) do not expose a usable duration and are left out.
var DefaultExtensions = []string{".mp4", ".m4v"}

// Config is the effective configuration consumed by the commands.
type Config struct {
	// Directory is the root searched for source videos.
	Directory string
	// Extensions are the filename suffixes considered video files.
	Extensions []string
	// Exclude lists directories skipped while scanning, relative to Directory unless absolute.
	Exclude []string

	// ClipPath is the output clip, overwritten on every run.
	ClipPath  string
	MinLength int
	MaxLength int
	// ScaleWidth is the output width; height keeps the aspect ratio.
	ScaleWidth int

	StreamFormat  string
	StreamURL     string
	StreamTimeout time.Duration
	// Serve controls whether the clip is streamed after it is cut.
	Serve bool

	FfmpegPath  string
	FfprobePath string
	MpvPath     string

	// HistoryPath is the SQLite run history. Empty disables history.
	HistoryPath string
	LogLevel    string
}

// File is the on-disk JSON shape. Pointer fields distinguish "unset" from zero values.
type File struct {
	Directory     string   `json:"directory"`
	Extensions    []string `json:"extensions"`
	Exclude       []string `json:"exclude"`
	ClipPath      string   `json:"clip_path"`
	MinLength     int      `json:"min_length"`
	MaxLength     int      `json:"max_length"`
	ScaleWidth    int      `json:"scale_width"`
	StreamFormat  string   `json:"stream_format"`
	StreamURL     string   `json:"stream_url"`
	StreamTimeout string   `json:"stream_timeout"`
	Serve         *bool    `json:"serve"`
	FfmpegPath    string   `json:"ffmpeg"`
	FfprobePath   string   `json:"ffprobe"`
	MpvPath       string   `json:"mpv"`
	HistoryPath   *string  `json:"history"`
	LogLevel      string   `json:"log_level"`
}

// Error is a configuration error tied to the file (or flag set) it came from.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration %q: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Directory:     "video",
		Extensions:    append([]string(nil), DefaultExtensions...),
		ClipPath:      DefaultClipName,
		MinLength:     DefaultMinLength,
		MaxLength:     DefaultMaxLength,
		ScaleWidth:    DefaultScaleWidth,
		StreamFormat:  DefaultFormat,
		StreamURL:     DefaultStreamURL,
		StreamTimeout: DefaultTimeout,
		Serve:         true,
		FfmpegPath:    "ffmpeg",
		FfprobePath:   "ffprobe",
		MpvPath:       "mpv",
		HistoryPath:   DefaultHistoryPath(),
		LogLevel:      "info",
	}
}

// DefaultHistoryPath returns ~/.local/share/cliporama/history.db, or "" when
// the home directory cannot be determined.
func DefaultHistoryPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share", "cliporama", "history.db")
}

// Load reads the config file and merges it over the defaults.
//
// When path is empty, <cwd>/cliporama.json is read if it exists; a missing
// implicit file is not an error. An explicit path must exist. The result is
// not validated, since command-line flags still apply on top of it.
func Load(cwd, path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = filepath.Join(cwd, FileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	fc, exists, err := readFile(path)
	if err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}
	if !exists {
		if explicit {
			return Config{}, &Error{Path: path, Err: os.ErrNotExist}
		}
		return cfg, nil
	}

	if err := apply(&cfg, fc, filepath.Dir(path)); err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// apply merges non-empty file fields into cfg. Relative paths are resolved
// against the directory holding the config file.
func apply(cfg *Config, fc File, base string) error {
	if s := strings.TrimSpace(fc.Directory); s != "" {
		cfg.Directory = resolve(base, s)
	}
	if len(fc.Extensions) > 0 {
		cfg.Extensions = append([]string(nil), fc.Extensions...)
	}
	if len(fc.Exclude) > 0 {
		cfg.Exclude = append([]string(nil), fc.Exclude...)
	}
	if s := strings.TrimSpace(fc.ClipPath); s != "" {
		cfg.ClipPath = resolve(base, s)
	}
	if fc.MinLength != 0 {
		cfg.MinLength = fc.MinLength
	}
	if fc.MaxLength != 0 {
		cfg.MaxLength = fc.MaxLength
	}
	if fc.ScaleWidth != 0 {
		cfg.ScaleWidth = fc.ScaleWidth
	}
	if s := strings.TrimSpace(fc.StreamFormat); s != "" {
		cfg.StreamFormat = s
	}
	if s := strings.TrimSpace(fc.StreamURL); s != "" {
		cfg.StreamURL = s
	}
	if s := strings.TrimSpace(fc.StreamTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("stream_timeout: %w", err)
		}
		cfg.StreamTimeout = d
	}
	if fc.Serve != nil {
		cfg.Serve = *fc.Serve
	}
	if s := strings.TrimSpace(fc.FfmpegPath); s != "" {
		cfg.FfmpegPath = s
	}
	if s := strings.TrimSpace(fc.FfprobePath); s != "" {
		cfg.FfprobePath = s
	}
	if s := strings.TrimSpace(fc.MpvPath); s != "" {
		cfg.MpvPath = s
	}
	if fc.HistoryPath != nil {
		s := strings.TrimSpace(*fc.HistoryPath)
		if s != "" {
			s = resolve(base, s)
		}
		cfg.HistoryPath = s
	}
	if s := strings.TrimSpace(fc.LogLevel); s != "" {
		cfg.LogLevel = s
	}
	return nil
}

// Validate checks the fields the pipeline relies on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return errors.New("directory must not be empty")
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one extension is required")
	}
	for _, ext := range c.Extensions {
		if strings.TrimSpace(ext) == "" {
			return errors.New("extensions must not contain empty entries")
		}
	}
	if strings.TrimSpace(c.ClipPath) == "" {
		return errors.New("clip_path must not be empty")
	}
	if c.MinLength < 1 {
		return fmt.Errorf("min_length must be at least 1, got %d", c.MinLength)
	}
	if c.MaxLength < c.MinLength {
		return fmt.Errorf("max_length (%d) must not be less than min_length (%d)", c.MaxLength, c.MinLength)
	}
	if c.ScaleWidth < 2 || c.ScaleWidth%2 != 0 {
		return fmt.Errorf("scale_width must be a positive even number, got %d", c.ScaleWidth)
	}
	if c.StreamTimeout <= 0 {
		return fmt.Errorf("stream_timeout must be positive, got %s", c.StreamTimeout)
	}
	if strings.TrimSpace(c.StreamFormat) == "" {
		return errors.New("stream_format must not be empty")
	}
	u, err := url.Parse(c.StreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("stream_url is not a valid URL: %q", c.StreamURL)
	}
	return nil
}

// Host returns the host:port part of the stream URL.
func (c Config) Host() string {
	u, err := url.Parse(c.StreamURL)
	if err != nil {
		return c.StreamURL
	}
	return u.Host
}

func resolve(base, p string) string {
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// readFile reads and decodes a config file. exists reports whether the file was found.
func readFile(path string) (fc File, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, false, nil
		}
		return File{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return File{}, true, err
	}
	return fc, true, nil
}
