package mpv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ConnectTimeout bounds the wait for mpv's IPC socket.
const ConnectTimeout = 5 * time.Second

// PreviewInfo is what mpv reports about the opened clip.
type PreviewInfo struct {
	Duration float64
	Width    int
	Height   int
}

// Preview opens clipPath in mpv with an IPC socket, reads back the clip's
// duration and size, and returns the running process. mpv keeps running after
// the query; the caller decides whether to wait for it.
func Preview(ctx context.Context, clipPath string, opts LaunchOptions) (*PreviewInfo, *exec.Cmd, error) {
	if _, err := os.Stat(clipPath); err != nil {
		return nil, nil, fmt.Errorf("clip not found: %s", clipPath)
	}
	if opts.SocketPath == "" {
		opts.SocketPath = SocketPath()
	}

	process, err := Launch(clipPath, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to launch mpv: %w", err)
	}

	client := NewClient(opts.SocketPath)
	connectCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := client.WaitConnect(connectCtx, 100*time.Millisecond); err != nil {
		if process.Process != nil {
			process.Process.Kill()
			process.Wait()
		}
		return nil, nil, fmt.Errorf("failed to connect to mpv: %w", err)
	}
	defer client.Close()

	info := &PreviewInfo{}
	// The file may not be loaded yet; missing properties are not fatal.
	if d, err := client.GetDuration(); err == nil {
		info.Duration = d
	}
	if w, h, err := client.GetDimensions(); err == nil {
		info.Width, info.Height = w, h
	}
	return info, process, nil
}
