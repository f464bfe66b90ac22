package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *AppError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(path string, err error) *AppError {
	return Wrap(err, ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", path)).
		WithDetail("path", path)
}

// ConfigValidation creates a configuration validation error
func ConfigValidation(path, reason string) *AppError {
	return New(ErrCodeConfigValidation, fmt.Sprintf("configuration %s failed validation: %s", path, reason)).
		WithDetail("path", path)
}

// MissingClientID is returned when no Discord application id was configured.
func MissingClientID(envVar string) *AppError {
	return New(ErrCodeMissingClientID, fmt.Sprintf("missing %s (set it in the environment, a .env file, or client_id in settings)", envVar)).
		WithDetail("env", envVar)
}

// SourceFailed creates a browser source failure error
func SourceFailed(source string, err error) *AppError {
	return Wrap(err, ErrCodeSourceFailed, fmt.Sprintf("browser source %s failed", source)).
		WithDetail("source", source)
}

// SinkFailed creates a presence update failure error
func SinkFailed(op string, err error) *AppError {
	return Wrap(err, ErrCodeSinkFailed, fmt.Sprintf("presence %s failed", op)).
		WithDetail("op", op)
}

// SinkNotConnected is returned when the presence sink has no live connection.
func SinkNotConnected() *AppError {
	return New(ErrCodeSinkNotConnected, "presence sink is not connected")
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *AppError {
	appErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		appErr = appErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return appErr
}

// CommandNotFound creates an error for a missing executable
func CommandNotFound(cmd string, err error) *AppError {
	return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", cmd)).
		WithDetail("command", cmd)
}

// DaemonRunning is returned when another daemon instance holds the pidfile.
func DaemonRunning(pid int) *AppError {
	return New(ErrCodeDaemonRunning, fmt.Sprintf("daemon already running with PID %d", pid)).
		WithDetail("pid", pid)
}

// CommandTimeout is returned when a command outlives its deadline.
func CommandTimeout(cmd string, timeout fmt.Stringer) *AppError {
	return New(ErrCodeCommandTimeout, fmt.Sprintf("command %s timed out after %s", cmd, timeout)).
		WithDetail("command", cmd)
}

// DaemonNotRunning is returned when no daemon answers on the status socket.
func DaemonNotRunning(socket string) *AppError {
	return New(ErrCodeDaemonNotRunning, "daemon is not running").
		WithDetail("socket", socket)
}
