package command

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/grovetools/tabpresence/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAppName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"safari", "Safari", false},
		{"chrome", "Google Chrome", false},
		{"with dot", "Safari Technology Preview.app", false},
		{"empty", "", true},
		{"quote injection", `Safari" to do shell script "rm`, true},
		{"leading space", " Safari", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAppName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAppName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateScriptLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single line", `tell application "Safari" to return URL of front document`, false},
		{"empty", "   ", true},
		{"newline", "return 1\nreturn 2", true},
		{"nul", "return\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScriptLine(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateScriptLine(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilderValidate(t *testing.T) {
	sb := NewSafeBuilder()
	assert.NoError(t, sb.Validate("appName", "Safari"))
	assert.Error(t, sb.Validate("unknown", "x"))
}

func TestBuild(t *testing.T) {
	sb := NewSafeBuilder()

	_, err := sb.Build(context.Background(), "")
	assert.Error(t, err)

	cmd, err := sb.Build(context.Background(), "osascript", "-e", "return 1")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, cmd.timeout)

	cmd.WithTimeout(2 * MaxTimeout)
	assert.Equal(t, MaxTimeout, cmd.timeout)
}

func TestOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	sb := NewSafeBuilder()
	ctx := context.Background()

	t.Run("trims stdout", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "sh", "-c", "printf '  https://example.com/\\n'")
		require.NoError(t, err)
		out, err := cmd.Output()
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/", out)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "sh", "-c", "echo nope >&2; exit 3")
		require.NoError(t, err)
		_, err = cmd.Output()
		require.Error(t, err)
		appErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeCommandFailed, appErr.Code)
		assert.Equal(t, 3, appErr.Details["exitCode"])
		assert.Equal(t, "nope", appErr.Details["stderr"])
	})

	t.Run("timeout", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "sh", "-c", "exec sleep 5")
		require.NoError(t, err)
		_, err = cmd.WithTimeout(50 * time.Millisecond).Output()
		assert.Equal(t, errors.ErrCodeCommandTimeout, errors.GetCode(err))
	})

	t.Run("missing binary", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "tabpresence-no-such-binary")
		require.NoError(t, err)
		_, err = cmd.Output()
		assert.Equal(t, errors.ErrCodeCommandNotFound, errors.GetCode(err))
	})
}
