package process

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsProcessAlive(t *testing.T) {
	assert.True(t, IsProcessAlive(os.Getpid()))
	assert.False(t, IsProcessAlive(0))
	assert.False(t, IsProcessAlive(-1))
}

func TestTerminate(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	// Reap the child so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()

	gone, err := Terminate(cmd.Process.Pid, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, gone)
}

func TestTerminateAlreadyGone(t *testing.T) {
	gone, err := Terminate(0, time.Second)
	require.NoError(t, err)
	assert.True(t, gone)
}
