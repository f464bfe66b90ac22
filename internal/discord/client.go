// Package discord is a minimal Discord Rich Presence client speaking the
// local IPC protocol of the desktop app.
package discord

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/logging"
	"github.com/grovetools/tabpresence/pkg/ids"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 5 * time.Second
	socketSlots    = 10
)

// Options configures a Client.
type Options struct {
	// SocketPath pins the IPC socket instead of probing discord-ipc-0..9.
	SocketPath string
	// Timeout bounds each request when the caller's context has no deadline.
	Timeout time.Duration
	Logger  *logrus.Entry
}

// User is the account the desktop app is logged in as.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Client holds at most one IPC connection. Calls are serialized.
type Client struct {
	clientID string
	opts     Options
	logger   *logrus.Entry

	mu   sync.Mutex
	conn net.Conn
	user *User
}

// NewClient creates a client for the given application id. It does not
// connect; call Connect.
func NewClient(clientID string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("discord")
	}
	return &Client{clientID: clientID, opts: opts, logger: logger}
}

// Connected reports whether a handshake has completed on a live connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// User returns the logged-in user, or nil when not connected.
func (c *Client) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Connect dials the desktop app and performs the handshake. It is a no-op
// when already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return errors.SinkFailed("connect", err)
	}
	c.setDeadline(ctx, conn)

	if err := writeFrame(conn, OpHandshake, map[string]interface{}{"v": 1, "client_id": c.clientID}); err != nil {
		conn.Close()
		return errors.SinkFailed("handshake", err)
	}

	for {
		op, body, err := readFrame(conn)
		if err != nil {
			conn.Close()
			return errors.SinkFailed("handshake", err)
		}
		switch op {
		case OpPing:
			if err := writeFrame(conn, OpPong, json.RawMessage(body)); err != nil {
				conn.Close()
				return errors.SinkFailed("handshake", err)
			}
			continue
		case OpClose:
			conn.Close()
			return errors.SinkFailed("handshake", closeError(body))
		}

		var msg message
		if err := json.Unmarshal(body, &msg); err != nil {
			conn.Close()
			return errors.SinkFailed("handshake", err)
		}
		if msg.Cmd != "DISPATCH" || msg.Evt != "READY" {
			conn.Close()
			return errors.SinkFailed("handshake", fmt.Errorf("unexpected %s/%s before READY", msg.Cmd, msg.Evt))
		}

		var ready struct {
			User User `json:"user"`
		}
		_ = json.Unmarshal(msg.Data, &ready)
		c.conn = conn
		c.user = &ready.User
		c.logger.WithField("user", ready.User.Username).Info("Discord IPC ready")
		return nil
	}
}

// SetActivity replaces the user's activity.
func (c *Client) SetActivity(ctx context.Context, p presence.Payload) error {
	activity := FromPayload(p)
	return c.setActivity(ctx, "set_activity", &activity)
}

// Clear removes the user's activity.
func (c *Client) Clear(ctx context.Context) error {
	return c.setActivity(ctx, "clear", nil)
}

// Close drops the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = writeFrame(c.conn, OpClose, map[string]interface{}{})
	return c.dropLocked()
}

type message struct {
	Cmd   string          `json:"cmd"`
	Evt   string          `json:"evt,omitempty"`
	Nonce string          `json:"nonce,omitempty"`
	Args  interface{}     `json:"args,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type activityArgs struct {
	PID      int       `json:"pid"`
	Activity *Activity `json:"activity,omitempty"`
}

func (c *Client) setActivity(ctx context.Context, op string, activity *Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.SinkNotConnected()
	}

	nonce := ids.New()
	req := message{
		Cmd:   "SET_ACTIVITY",
		Nonce: nonce,
		Args:  activityArgs{PID: os.Getpid(), Activity: activity},
	}

	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		_ = c.dropLocked()
		return errors.SinkFailed(op, err)
	}
	if resp.Evt == "ERROR" {
		var e struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(resp.Data, &e)
		return errors.SinkFailed(op, fmt.Errorf("discord error %d: %s", e.Code, e.Message))
	}
	return nil
}

// roundTrip sends req and waits for the response carrying the same nonce,
// answering pings on the way. Caller holds c.mu.
func (c *Client) roundTrip(ctx context.Context, req message) (*message, error) {
	c.setDeadline(ctx, c.conn)
	if err := writeFrame(c.conn, OpFrame, req); err != nil {
		return nil, err
	}

	for {
		op, body, err := readFrame(c.conn)
		if err != nil {
			return nil, err
		}
		switch op {
		case OpPing:
			if err := writeFrame(c.conn, OpPong, json.RawMessage(body)); err != nil {
				return nil, err
			}
			continue
		case OpClose:
			return nil, closeError(body)
		case OpFrame:
		default:
			continue
		}

		var resp message
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		if resp.Nonce != req.Nonce {
			continue
		}
		return &resp, nil
	}
}

func (c *Client) dropLocked() error {
	err := c.conn.Close()
	c.conn = nil
	c.user = nil
	return err
}

func (c *Client) setDeadline(ctx context.Context, conn net.Conn) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.opts.Timeout)
	}
	_ = conn.SetDeadline(deadline)
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	if c.opts.SocketPath != "" {
		return d.DialContext(ctx, "unix", c.opts.SocketPath)
	}

	var lastErr error
	for _, path := range SocketCandidates() {
		conn, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = stderrors.New("no IPC socket candidates")
	}
	return nil, fmt.Errorf("discord is not running: %w", lastErr)
}

// SocketCandidates lists the IPC socket paths probed in order. Snap and
// Flatpak installs put the socket in a subdirectory of the runtime dir.
func SocketCandidates() []string {
	var bases []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if v := os.Getenv(env); v != "" {
			bases = append(bases, v)
		}
	}
	bases = append(bases, "/tmp")

	var dirs []string
	seen := make(map[string]bool)
	for _, base := range bases {
		for _, sub := range []string{"", "app/com.discordapp.Discord", "snap.discord"} {
			dir := filepath.Join(base, sub)
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}

	var paths []string
	for _, dir := range dirs {
		for i := 0; i < socketSlots; i++ {
			paths = append(paths, filepath.Join(dir, fmt.Sprintf("discord-ipc-%d", i)))
		}
	}
	return paths
}

func closeError(body []byte) error {
	var e struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &e)
	if e.Message == "" {
		return fmt.Errorf("connection closed by discord")
	}
	return fmt.Errorf("connection closed by discord: %s (%d)", e.Message, e.Code)
}
