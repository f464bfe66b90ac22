package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/grovetools/tabpresence/errors"
)

const (
	// DefaultTimeout bounds a single browser query.
	DefaultTimeout = 5 * time.Second

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = time.Minute
)

// waitDelay caps how long Output waits for pipes after the process is killed.
const waitDelay = 500 * time.Millisecond

var validAppName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._-]*$`)

// SafeBuilder builds bounded, validated external commands.
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"appName":    validateAppName,
		"scriptLine": validateScriptLine,
	}
}

// validateAppName accepts macOS application names that are safe to embed
// in a quoted AppleScript string.
func validateAppName(name string) error {
	if name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if !validAppName.MatchString(name) {
		return fmt.Errorf("invalid application name: %q", name)
	}
	return nil
}

// validateScriptLine rejects script fragments that would span lines or
// carry NUL bytes into osascript -e.
func validateScriptLine(line string) error {
	if strings.TrimSpace(line) == "" {
		return fmt.Errorf("script cannot be empty")
	}
	if strings.ContainsAny(line, "\x00\n\r") {
		return fmt.Errorf("script must be a single line")
	}
	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command with validation. The timeout starts when the
// command runs, not when it is built.
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}

	return &Command{
		ctx:      ctx,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout overrides the builder's timeout for this command. It is
// capped at MaxTimeout.
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	c.timeout = timeout
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// Output runs the command and returns its trimmed stdout.
func (c *Command) Output() (string, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	cmd := c.executor.CommandContext(ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		switch {
		case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
			return "", errors.CommandTimeout(c.name, c.timeout)
		case stderrors.Is(err, exec.ErrNotFound):
			return "", errors.CommandNotFound(c.name, err)
		}
		appErr := errors.CommandFailed(c.name, err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			appErr = appErr.WithDetail("stderr", msg)
		}
		return "", appErr
	}

	return strings.TrimSpace(stdout.String()), nil
}
