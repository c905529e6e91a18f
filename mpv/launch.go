package mpv

import (
	"os/exec"

	"github.com/user/cliporama/deps"
)

// LaunchOptions controls how a clip is opened.
type LaunchOptions struct {
	// Bin is the mpv executable; empty means "mpv".
	Bin string
	// SocketPath enables the IPC server when set.
	SocketPath string
	// Loop replays the clip until the window is closed.
	Loop bool
}

// Args returns the mpv arguments for clipPath.
func (o LaunchOptions) Args(clipPath string) []string {
	var args []string
	if o.SocketPath != "" {
		args = append(args, "--input-ipc-server="+o.SocketPath)
	}
	if o.Loop {
		args = append(args, "--loop-file=inf")
	}
	args = append(args, "--force-window=yes", clipPath)
	return args
}

// Launch starts mpv on clipPath without waiting for it. It checks that mpv is
// installed first and returns a deps.DependencyError with an install link if not.
// The returned *exec.Cmd can be waited on or killed by the caller.
func Launch(clipPath string, opts LaunchOptions) (*exec.Cmd, error) {
	bin := opts.Bin
	if bin == "" {
		bin = "mpv"
	}
	if err := deps.Mpv(bin).Check(); err != nil {
		return nil, err
	}

	cmd := exec.Command(bin, opts.Args(clipPath)...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
