// Package tool runs the external media binaries and reports their failures
// together with whatever they printed.
package tool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// GracePeriod is how long a terminated tool gets to exit before it is killed.
const GracePeriod = 5 * time.Second

// Error describes a tool invocation that exited unsuccessfully.
type Error struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (e *Error) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s failed: %v\n%s", e.Tool, e.Err, out)
}

func (e *Error) Unwrap() error { return e.Err }

// Command builds an exec.Cmd bound to ctx. When ctx is done the process is
// sent SIGTERM rather than killed outright, and killed after GracePeriod.
func Command(ctx context.Context, bin string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = GracePeriod
	return cmd
}

// Run executes bin with args and returns stdout. Stderr is captured and
// attached to the returned *Error on failure.
func Run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := Command(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Tool: bin, Args: args, Output: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

// RunCombined executes bin with args and returns interleaved stdout and stderr.
func RunCombined(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := Command(ctx, bin, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out.Bytes(), ctxErr
		}
		return out.Bytes(), &Error{Tool: bin, Args: args, Output: out.String(), Err: err}
	}
	return out.Bytes(), nil
}
