// Package stream pushes a finished clip to a single HTTP consumer by running
// ffmpeg as a one-shot listening server.
//
// ffmpeg opens the socket itself (-listen 1) and reads the clip in real time
// (-re), so the process exits roughly when the clip has been sent. Nobody
// connecting means ffmpeg blocks in accept; the Timeout bounds that wait.
package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/user/cliporama/logging"
	"github.com/user/cliporama/pkg/tool"
)

const (
	DefaultFormat  = "flv"
	DefaultURL     = "http://0.0.0.0:8080"
	DefaultTimeout = 30 * time.Second
)

// ErrTimeout is returned when no consumer finished reading the clip in time.
var ErrTimeout = errors.New("stream: timed out waiting for consumer")

// Server streams clips over HTTP with ffmpeg.
type Server struct {
	// Bin is the ffmpeg executable; empty means "ffmpeg".
	Bin     string
	URL     string
	Format  string
	Timeout time.Duration
	Logger  hclog.Logger
}

func NewServer(bin, url, format string, timeout time.Duration, logger hclog.Logger) *Server {
	return &Server{
		Bin:     bin,
		URL:     url,
		Format:  format,
		Timeout: timeout,
		Logger:  logging.OrNull(logger),
	}
}

func (s *Server) url() string {
	if s.URL == "" {
		return DefaultURL
	}
	return s.URL
}

func (s *Server) format() string {
	if s.Format == "" {
		return DefaultFormat
	}
	return s.Format
}

func (s *Server) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

// Args returns the ffmpeg arguments that serve clipPath. Streams are copied
// as-is; -re must be an input option to pace the read.
func (s *Server) Args(clipPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-re",
		"-i", clipPath,
		"-c", "copy",
		"-listen", "1",
		"-f", s.format(),
		s.url(),
	}
}

// Serve blocks until a consumer has read the clip or the timeout elapses.
// On timeout ffmpeg is terminated and ErrTimeout is returned. Cancelling ctx
// terminates ffmpeg as well and returns the context error.
func (s *Server) Serve(ctx context.Context, clipPath string) error {
	bin := s.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	log := logging.OrNull(s.Logger)

	runCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	args := s.Args(clipPath)
	log.Debug("running ffmpeg", "args", strings.Join(args, " "))

	cmd := tool.Command(runCtx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		log.Warn("timeout, terminated ffmpeg", "url", s.url(), "timeout", s.timeout())
		return ErrTimeout
	default:
		log.Error("streaming failed", "url", s.url(), "output", out.String())
		return &tool.Error{Tool: bin, Args: args, Output: out.String(), Err: err}
	}
}

// Describe returns a one-line summary used in progress output.
func (s *Server) Describe() string {
	return fmt.Sprintf("%s as %s (timeout %s)", s.url(), s.format(), s.timeout())
}
