package daemon

import (
	"net"
	"os"
	"time"

	"github.com/grovetools/tabpresence/errors"
)

// probeTimeout bounds the socket check done by Connect.
const probeTimeout = 100 * time.Millisecond

// Connect returns a Client for the daemon listening on socketPath, or a
// DAEMON_NOT_RUNNING error if nothing answers there.
func Connect(socketPath string) (Client, error) {
	if _, err := os.Stat(socketPath); err != nil {
		return nil, errors.DaemonNotRunning(socketPath)
	}
	conn, err := net.DialTimeout("unix", socketPath, probeTimeout)
	if err != nil {
		return nil, errors.DaemonNotRunning(socketPath)
	}
	conn.Close()
	return NewRemoteClient(socketPath), nil
}
