package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/tabpresence/cli"
	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/logging"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/grovetools/tabpresence/pkg/sites"
	"github.com/grovetools/tabpresence/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sitesJSON = `{
  "videoHosts": ["*.youtube.com"],
  "browseHosts": ["github.com"],
  "icons": {"*.youtube.com": "youtube", "github.com": "github", "default": "globe"}
}`

// isolate points every path at a temporary home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TABPRESENCE_HOME", home)
	t.Setenv(logging.ConfigEnv, "")
	t.Setenv("TABPRESENCE_LOG_LEVEL", "")
	logging.Reset()
	t.Cleanup(logging.Reset)
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewStandardCommand("tabpresence", "test")
	root.AddCommand(NewClassifyCmd(), NewSitesCmd(), NewPathsCmd(), NewStatusCmd(), NewStopCmd(), NewLogsCmd())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return out.String(), err
}

func TestClassifyJSON(t *testing.T) {
	home := isolate(t)
	sitesPath := testutil.WriteFile(t, home, "sites.json", sitesJSON)

	out, err := execute(t, "classify", "https://music.youtube.com/watch?v=1", "Song", "--sites", sitesPath, "--json")
	require.NoError(t, err)

	var d presence.Decision
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, presence.ActionSend, d.Action)
	assert.Equal(t, sites.Watching, d.Classification.Verb)
	assert.Equal(t, sites.ActivityVideo, d.Classification.Kind)
	assert.Equal(t, "youtube", d.Icon)
	require.NotNil(t, d.Payload)
	assert.Equal(t, "Song", d.Payload.State)
}

func TestClassifyTable(t *testing.T) {
	home := isolate(t)
	sitesPath := testutil.WriteFile(t, home, "sites.json", sitesJSON)

	out, err := execute(t, "classify", "not a url", "--sites", sitesPath)
	require.NoError(t, err)
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "Browsing")
	assert.Contains(t, out, "globe")
	assert.Contains(t, out, presence.UntitledTitle)
}

func TestClassifyMissingSites(t *testing.T) {
	home := isolate(t)
	_, err := execute(t, "classify", "https://github.com", "--sites", filepath.Join(home, "none.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestSitesValidate(t *testing.T) {
	home := isolate(t)
	good := testutil.WriteFile(t, home, "sites.yaml", "videoHosts: [\"*.twitch.tv\"]\nicons:\n  default: globe\n  \"*.twitch.tv\": twitch\n")
	bad := testutil.WriteFile(t, home, "bad.json", `{"icons": {}}`)

	out, err := execute(t, "sites", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "twitch")

	_, err = execute(t, "sites", "validate", bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
}

func TestSitesSchema(t *testing.T) {
	isolate(t)
	out, err := execute(t, "sites", "schema")
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Contains(t, schema, "properties")
}

func TestPaths(t *testing.T) {
	home := isolate(t)
	out, err := execute(t, "paths")
	require.NoError(t, err)

	var p PathsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.True(t, strings.HasPrefix(p.Socket, home))
	assert.True(t, strings.HasPrefix(p.PidFile, home))
}

func TestStatusNotRunning(t *testing.T) {
	isolate(t)
	_, err := execute(t, "status")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonNotRunning))
}

func TestStopNotRunning(t *testing.T) {
	isolate(t)
	out, err := execute(t, "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}

func TestStatusRows(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	key := presence.Key{Verb: sites.Browsing, Title: "Issues", URL: "https://github.com", Icon: "github"}
	s := &store.State{
		StartedAt:     now.Add(-90 * time.Second),
		Browser:       "safari",
		Interval:      2 * time.Second,
		Connected:     true,
		Ticks:         5,
		Sends:         1,
		LastTick:      &store.Tick{State: presence.Sent(key)},
		ConfigChanged: "/x/sites.json",
	}

	rows := statusRows(s, 42, "/run/tp.sock", now)
	got := map[string]string{}
	for _, r := range rows {
		got[r[0]] = r[1]
	}
	assert.Equal(t, "42", got["PID"])
	assert.Equal(t, "1m30s", got["Uptime"])
	assert.Equal(t, "connected", got["Discord"])
	assert.Equal(t, "Browsing Issues", got["Showing"])
	assert.Contains(t, got["Config"], "restart to apply")

	assert.Equal(t, "nothing (cleared)", showingLabel(&store.Tick{State: presence.Cleared()}))
	assert.Equal(t, "-", showingLabel(nil))
}

func TestLogs(t *testing.T) {
	isolate(t)
	day := time.Now()
	logFile := logging.FilePath(day)
	require.NoError(t, os.MkdirAll(filepath.Dir(logFile), 0755))
	require.NoError(t, os.WriteFile(logFile, []byte("one\ntwo\nthree\n"), 0644))

	out, err := execute(t, "logs", "--tail", "2")
	require.NoError(t, err)
	assert.Equal(t, "two\nthree\n", out)
}

func TestFindLatestLogFile(t *testing.T) {
	dir := t.TempDir()
	old := testutil.WriteFile(t, dir, "tabpresence-2026-01-01.log", "old")
	newer := testutil.WriteFile(t, dir, "tabpresence-2026-01-02.log", "new")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	got, err := findLatestLogFile(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	_, err = findLatestLogFile(t.TempDir())
	assert.Error(t, err)
}

func TestPrintLogFollowStopsOnCancel(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "tabpresence-x.log", "first\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, printLog(ctx, &out, path, -1, true))
	assert.Equal(t, "first\n", out.String())
}
