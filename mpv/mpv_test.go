package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/user/cliporama/deps"
)

// fakeMpv answers get_property requests from props on a Unix socket. Each
// response is preceded by an unrelated event line.
func fakeMpv(t *testing.T, props map[string]any) string {
	t.Helper()
	ln, sock := listenUnix(t)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadBytes('\n')
			if err != nil {
				return
			}
			var req ipcRequest
			if err := json.Unmarshal(line, &req); err != nil {
				return
			}
			resp := ipcResponse{RequestID: req.RequestID, Error: "success"}
			name, _ := req.Command[1].(string)
			if v, ok := props[name]; ok {
				resp.Data = v
			} else {
				resp.Error = "property unavailable"
			}
			out, _ := json.Marshal(resp)
			conn.Write([]byte(`{"event":"playback-restart"}` + "\n"))
			conn.Write(append(out, '\n'))
		}
	}()
	return sock
}

// listenUnix opens a Unix socket listener in a short temp path, since
// sun_path is limited to ~100 bytes.
func listenUnix(t *testing.T) (net.Listener, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix sockets")
	}
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	sock := filepath.Join(dir, "s")

	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	return ln, sock
}

func TestClient_GetDuration(t *testing.T) {
	sock := fakeMpv(t, map[string]any{"duration": 7.5, "width": 480, "height": 270})

	c := NewClient(sock)
	if err := c.WaitConnect(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	d, err := c.GetDuration()
	if err != nil {
		t.Fatalf("GetDuration: %v", err)
	}
	if d != 7.5 {
		t.Errorf("duration = %v, want 7.5", d)
	}

	w, h, err := c.GetDimensions()
	if err != nil {
		t.Fatalf("GetDimensions: %v", err)
	}
	if w != 480 || h != 270 {
		t.Errorf("dimensions = %dx%d", w, h)
	}

	if _, err := c.GetProperty("chapter"); err == nil || !strings.Contains(err.Error(), "property unavailable") {
		t.Errorf("expected mpv error, got %v", err)
	}
}

func TestClient_CommandTimeout(t *testing.T) {
	ln, sock := listenUnix(t)
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	// Accept and read requests but never answer.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		go func() {
			buf := make([]byte, 512)
			for {
				if _, err := conn.Read(buf); err != nil {
					return
				}
			}
		}()
		<-done
	}()

	c := NewClient(sock)
	c.Timeout = 50 * time.Millisecond
	if err := c.WaitConnect(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	start := time.Now()
	_, err := c.GetDuration()
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("GetDuration took %s", elapsed)
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	if _, err := c.GetDuration(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.WaitConnect(ctx, 10*time.Millisecond); !errors.Is(err, ErrSocketNotFound) {
		t.Errorf("expected ErrSocketNotFound, got %v", err)
	}
}

func TestLaunchOptions_Args(t *testing.T) {
	got := strings.Join(LaunchOptions{SocketPath: "/tmp/s.sock", Loop: true}.Args("out.mp4"), " ")
	want := "--input-ipc-server=/tmp/s.sock --loop-file=inf --force-window=yes out.mp4"
	if got != want {
		t.Errorf("Args = %q, want %q", got, want)
	}
	if got := (LaunchOptions{}).Args("out.mp4"); len(got) != 2 {
		t.Errorf("plain Args = %v", got)
	}
}

func TestLaunch_MissingBinary(t *testing.T) {
	_, err := Launch("out.mp4", LaunchOptions{Bin: "definitely-not-mpv-xyz"})
	var depErr *deps.DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
}
