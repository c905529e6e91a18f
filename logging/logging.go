// Package logging builds the hclog logger shared by the pipeline stages.
//
// User-facing progress is printed by the commands themselves; the logger
// carries diagnostic detail such as ffmpeg arguments, captured tool output
// and timeouts.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "cliporama"

// ParseLevel maps a level string to an hclog level. Unknown values fall back
// to info.
func ParseLevel(s string) hclog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return hclog.Trace
	case "debug":
		return hclog.Debug
	case "warn", "warning":
		return hclog.Warn
	case "error":
		return hclog.Error
	case "off":
		return hclog.Off
	default:
		return hclog.Info
	}
}

// New returns a logger writing to w at the given level. A nil w means stderr.
func New(level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Level:  ParseLevel(level),
		Output: w,
		Color:  hclog.AutoColor,
	})
}

// OrNull returns l, or a logger that discards everything when l is nil.
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
