package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/internal/daemon/server"
	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/grovetools/tabpresence/pkg/sites"
	"github.com/grovetools/tabpresence/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDaemon serves a real status API on a temporary socket.
func startDaemon(t *testing.T) (string, *store.Store) {
	t.Helper()
	socket := filepath.Join(testutil.SocketDir(t), "d.sock")

	st := store.New("chrome", "/etc/sites.json", time.Second)
	cfg := &sites.Config{BrowseHosts: []string{"github.com"}, DefaultIcon: "globe"}
	srv := server.New(st, cfg, testutil.QuietLogger())

	go srv.ListenAndServe(socket)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	require.Eventually(t, func() bool {
		return NewRemoteClient(socket).IsRunning()
	}, 5*time.Second, 20*time.Millisecond)
	return socket, st
}

func TestConnectNotRunning(t *testing.T) {
	_, err := Connect(filepath.Join(t.TempDir(), "missing.sock"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonNotRunning))

	// A leftover socket file with nothing listening is also not running.
	stale := filepath.Join(testutil.SocketDir(t), "stale.sock")
	require.NoError(t, os.WriteFile(stale, nil, 0600))
	_, err = Connect(stale)
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonNotRunning))
}

func TestRemoteClient(t *testing.T) {
	socket, st := startDaemon(t)

	client, err := Connect(socket)
	require.NoError(t, err)
	defer client.Close()
	assert.True(t, client.IsRunning())

	ctx := context.Background()
	st.SetConnected(true)
	state, err := client.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "chrome", state.Browser)
	assert.Equal(t, "/etc/sites.json", state.SitesPath)
	assert.True(t, state.Connected)

	d, err := client.Classify(ctx, "https://github.com/grovetools", "")
	require.NoError(t, err)
	assert.Equal(t, presence.ActionSend, d.Action)
	assert.Equal(t, sites.Browsing, d.Classification.Verb)
	assert.Equal(t, sites.CategoryBrowse, d.Classification.Category)
	assert.Equal(t, presence.UntitledTitle, d.Key.Title)
	assert.Equal(t, "globe", d.Icon)
}

func TestStreamState(t *testing.T) {
	socket, st := startDaemon(t)
	client := NewRemoteClient(socket)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := client.StreamState(ctx)
	require.NoError(t, err)

	select {
	case u := <-ch:
		assert.Equal(t, store.UpdateSnapshot, u.Type)
		require.NotNil(t, u.State)
		assert.Equal(t, "chrome", u.State.Browser)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot received")
	}

	st.RecordConfigChange("/etc/sites.json", nil)
	select {
	case u := <-ch:
		assert.Equal(t, store.UpdateConfigChanged, u.Type)
		assert.Equal(t, "/etc/sites.json", u.ConfigFile)
	case <-time.After(5 * time.Second):
		t.Fatal("no update received")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
