package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TABPRESENCE_HOME", home)
	t.Setenv(ConfigEnv, "")
	t.Setenv("TABPRESENCE_LOG_LEVEL", "")
	t.Setenv("TABPRESENCE_LOG_CALLER", "")
	Reset()
	t.Cleanup(Reset)
	return home
}

func TestNewLogger(t *testing.T) {
	isolate(t)

	logger := NewLogger("test-component")
	require.NotNil(t, logger)
	assert.Equal(t, "test-component", logger.Data["component"])
	assert.Same(t, logger, NewLogger("test-component"))
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "presence updated",
				Data: logrus.Fields{
					"component": "engine",
					"verb":      "Watching",
				},
			},
			want: []string{"[INFO]", "engine", "presence updated", "verb=Watching"},
		},
		{
			name:   "simple format",
			config: FormatConfig{DisableTimestamp: true, DisableComponent: true},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "tick failed",
				Data:    logrus.Fields{"component": "engine"},
			},
			want:    []string{"[WARN]", "tick failed"},
			notWant: []string{"engine"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&TextFormatter{Config: tt.config}).Format(tt.entry)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(out), w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, string(out), nw)
			}
		})
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	entry := &logrus.Entry{
		Level:   logrus.DebugLevel,
		Message: "tick",
		Data:    logrus.Fields{"url": "u", "action": "send", "host": "h"},
	}
	out, err := (&TextFormatter{Config: FormatConfig{DisableTimestamp: true}}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[DEBUG] tick action=send host=h url=u\n", string(out))
}

func TestEnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("TABPRESENCE_LOG_LEVEL", "debug")
	t.Setenv("TABPRESENCE_LOG_CALLER", "true")

	logger := NewLogger("env-test")
	assert.Equal(t, logrus.DebugLevel, logger.Logger.Level)
	assert.True(t, logger.Logger.ReportCaller)
}

func TestSettingsLoggingSection(t *testing.T) {
	home := isolate(t)
	logPath := filepath.Join(home, "custom.log")
	settings := filepath.Join(home, "tabpresence.yml")
	require.NoError(t, os.WriteFile(settings, []byte(`
logging:
  level: warn
  file:
    path: `+logPath+`
  format:
    preset: json
    structured_to_stderr: never
`), 0644))
	t.Setenv(ConfigEnv, settings)

	logger := NewLogger("settings-test")
	assert.Equal(t, logrus.WarnLevel, logger.Logger.Level)
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Logger.Formatter)

	logger.Warn("written")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)
	assert.Equal(t, logPath, ActiveFilePath(time.Now()))
}

func TestActiveFilePath(t *testing.T) {
	home := isolate(t)
	day := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, FilePath(day), ActiveFilePath(day))

	settings := filepath.Join(home, "tabpresence.yml")
	require.NoError(t, os.WriteFile(settings, []byte("logging:\n  file:\n    disabled: true\n"), 0644))
	t.Setenv(ConfigEnv, settings)
	assert.Empty(t, ActiveFilePath(day))
}

func TestFilePath(t *testing.T) {
	home := isolate(t)
	day := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t,
		filepath.Join(home, "state", "tabpresence", "logs", "tabpresence-2026-03-09.log"),
		FilePath(day))
}

func TestShouldLogToStderr(t *testing.T) {
	assert.True(t, shouldLogToStderr("always", logrus.InfoLevel))
	assert.False(t, shouldLogToStderr("never", logrus.DebugLevel))
	assert.True(t, shouldLogToStderr("auto", logrus.DebugLevel))
}

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrettyLogger(&buf)

	p.Success("daemon stopped")
	p.Field("pid", 42)
	p.ErrorPretty("failed", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "daemon stopped")
	assert.Contains(t, out, "pid:")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "boom")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}
