// Package paths provides XDG-compliant path resolution for tabpresence.
//
// Resolution order:
// 1. TABPRESENCE_HOME (portable root) → $TABPRESENCE_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/tabpresence
// 3. Platform defaults → ~/.config/tabpresence, ~/.local/state/tabpresence
package paths

import (
	"os"
	"path/filepath"
)

const (
	appName = "tabpresence"
	homeEnv = "TABPRESENCE_HOME"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv(homeEnv); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if home := os.Getenv(homeEnv); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the configuration directory holding tabpresence.yml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// StateDir returns the directory for the pid file and logs.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// LogDir returns the directory daemon log files are written to.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// RuntimeDir returns the directory for the status socket.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if home := os.Getenv(homeEnv); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

// SettingsPath returns the default settings file path.
func SettingsPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "tabpresence.yml")
}

// SocketPath returns the path to the daemon status socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "tabpresence.sock")
}

// PidFilePath returns the path to the daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "tabpresence.pid")
}

// EnsureDirs creates the state and runtime directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{StateDir(), LogDir(), RuntimeDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
