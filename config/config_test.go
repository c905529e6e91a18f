package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cwd := t.TempDir()

	cfg, err := Load(cwd, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClipPath != DefaultClipName {
		t.Errorf("ClipPath = %q, want %q", cfg.ClipPath, DefaultClipName)
	}
	if cfg.MinLength != 5 || cfg.MaxLength != 10 {
		t.Errorf("lengths = %d..%d, want 5..10", cfg.MinLength, cfg.MaxLength)
	}
	if cfg.StreamURL != "http://0.0.0.0:8080" || cfg.StreamFormat != "flv" {
		t.Errorf("stream = %s %s", cfg.StreamFormat, cfg.StreamURL)
	}
	if cfg.StreamTimeout != 30*time.Second {
		t.Errorf("StreamTimeout = %s", cfg.StreamTimeout)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != ".mp4" || cfg.Extensions[1] != ".m4v" {
		t.Errorf("Extensions = %v", cfg.Extensions)
	}
	if !cfg.Serve {
		t.Error("Serve should default to true")
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	cwd := t.TempDir()

	_, err := Load(cwd, "nope.json")
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), `{
		"directory": "library",
		"extensions": [".mkv"],
		"clip_path": "clips/latest.mp4",
		"min_length": 3,
		"max_length": 4,
		"stream_timeout": "45s",
		"serve": false,
		"history": ""
	}`)

	cfg, err := Load(cwd, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Directory != filepath.Join(cwd, "library") {
		t.Errorf("Directory = %q", cfg.Directory)
	}
	if cfg.ClipPath != filepath.Join(cwd, "clips", "latest.mp4") {
		t.Errorf("ClipPath = %q", cfg.ClipPath)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != ".mkv" {
		t.Errorf("Extensions = %v", cfg.Extensions)
	}
	if cfg.MinLength != 3 || cfg.MaxLength != 4 {
		t.Errorf("lengths = %d..%d", cfg.MinLength, cfg.MaxLength)
	}
	if cfg.StreamTimeout != 45*time.Second {
		t.Errorf("StreamTimeout = %s", cfg.StreamTimeout)
	}
	if cfg.Serve {
		t.Error("Serve should be false")
	}
	if cfg.HistoryPath != "" {
		t.Errorf("HistoryPath = %q, want empty (disabled)", cfg.HistoryPath)
	}
	// Untouched fields keep their defaults.
	if cfg.ScaleWidth != DefaultScaleWidth {
		t.Errorf("ScaleWidth = %d", cfg.ScaleWidth)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), `{not json`)

	if _, err := Load(cwd, ""); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoad_BadTimeout(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), `{"stream_timeout": "soon"}`)

	_, err := Load(cwd, "")
	if err == nil || !strings.Contains(err.Error(), "stream_timeout") {
		t.Fatalf("expected stream_timeout error, got %v", err)
	}
}

func TestLoad_DoesNotValidate(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), `{"min_length": 12}`)

	cfg, err := Load(cwd, "")
	if err != nil {
		t.Fatalf("a file that later flags can complete should load, got %v", err)
	}
	if cfg.Validate() == nil {
		t.Fatal("min 12 with the default max 10 should not validate")
	}

	cfg.MaxLength = 20
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error after raising max: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"equal min and max", func(c *Config) { c.MinLength, c.MaxLength = 7, 7 }, true},
		{"min above max", func(c *Config) { c.MinLength, c.MaxLength = 10, 5 }, false},
		{"zero min", func(c *Config) { c.MinLength = 0 }, false},
		{"no extensions", func(c *Config) { c.Extensions = nil }, false},
		{"blank extension", func(c *Config) { c.Extensions = []string{".mp4", " "} }, false},
		{"empty directory", func(c *Config) { c.Directory = "" }, false},
		{"empty clip path", func(c *Config) { c.ClipPath = "" }, false},
		{"odd width", func(c *Config) { c.ScaleWidth = 481 }, false},
		{"zero timeout", func(c *Config) { c.StreamTimeout = 0 }, false},
		{"url without scheme", func(c *Config) { c.StreamURL = "0.0.0.0:8080" }, false},
		{"empty format", func(c *Config) { c.StreamFormat = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHost(t *testing.T) {
	cfg := Default()
	if got := cfg.Host(); got != "0.0.0.0:8080" {
		t.Errorf("Host() = %q", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
