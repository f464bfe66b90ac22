// Package daemon is the client side of the tabpresence daemon's status API.
// It talks HTTP and websockets over the daemon's Unix socket.
package daemon

import (
	"context"

	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/pkg/presence"
)

// State is the daemon's status snapshot.
type State = store.State

// StateUpdate is one message of the status stream.
type StateUpdate = store.Update

// Client defines the interface for interacting with a running daemon.
type Client interface {
	// GetState returns the current status snapshot.
	GetState(ctx context.Context) (*State, error)

	// Classify asks the daemon how it would present a page, using the site
	// configuration it loaded at start.
	Classify(ctx context.Context, url, title string) (*presence.Decision, error)

	// StreamState subscribes to real-time state updates from the daemon.
	// The first update is a snapshot. The channel is closed when ctx is
	// cancelled or the connection is lost.
	StreamState(ctx context.Context) (<-chan StateUpdate, error)

	// IsRunning returns true if the daemon is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}
