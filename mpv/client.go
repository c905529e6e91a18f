// Package mpv previews clips in mpv and talks to it over its JSON IPC socket.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when the socket cannot be dialled.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")

	requestID uint64
)

// CommandTimeout bounds how long a command waits for mpv's reply.
const CommandTimeout = 2 * time.Second

// SocketPath returns a per-process IPC socket path in the temp directory.
func SocketPath() string {
	return filepath.Join(os.TempDir(), "cliporama-mpv-"+strconv.Itoa(os.Getpid())+".sock")
}

type ipcRequest struct {
	Command   []any  `json:"command"`
	RequestID uint64 `json:"request_id"`
}

type ipcResponse struct {
	Data      any    `json:"data"`
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
}

// Client is an mpv IPC client over a Unix socket.
type Client struct {
	socketPath string
	conn       net.Conn
	reader     *bufio.Reader
	mu         sync.Mutex
	// Timeout overrides CommandTimeout when positive.
	Timeout time.Duration
}

// NewClient creates a client for socketPath. Empty means SocketPath().
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = SocketPath()
	}
	return &Client{socketPath: socketPath}
}

// Connect dials the socket once.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return ErrSocketNotFound
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// WaitConnect retries Connect every interval until it succeeds or ctx is done.
// mpv creates the socket a moment after it starts.
func (c *Client) WaitConnect(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := c.Connect(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrSocketNotFound, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close closes the connection to mpv.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// GetProperty retrieves an mpv property such as "duration" or "time-pos".
func (c *Client) GetProperty(name string) (any, error) {
	return c.sendCommand("get_property", name)
}

// GetDuration returns the duration of the loaded file in seconds.
func (c *Client) GetDuration() (float64, error) {
	v, err := c.GetProperty("duration")
	if err != nil {
		return 0, err
	}
	return toFloat64(v)
}

// GetDimensions returns the width and height of the decoded video.
func (c *Client) GetDimensions() (int, int, error) {
	w, err := c.GetProperty("width")
	if err != nil {
		return 0, 0, err
	}
	h, err := c.GetProperty("height")
	if err != nil {
		return 0, 0, err
	}
	wf, err := toFloat64(w)
	if err != nil {
		return 0, 0, err
	}
	hf, err := toFloat64(h)
	if err != nil {
		return 0, 0, err
	}
	return int(wf), int(hf), nil
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mpv: unexpected numeric value type: %T", v)
	}
}

// sendCommand writes {"command": [...], "request_id": n} and reads lines
// until the matching response. Event lines in between are skipped.
func (c *Client) sendCommand(command string, args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	req := ipcRequest{
		Command:   append([]any{command}, args...),
		RequestID: atomic.AddUint64(&requestID, 1),
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = CommandTimeout
	}
	if err := c.conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("mpv: failed to set deadline: %w", err)
	}
	defer c.conn.SetDeadline(time.Time{})

	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("mpv: failed to read response: %w", err)
		}
		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.RequestID != req.RequestID {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	}
}
