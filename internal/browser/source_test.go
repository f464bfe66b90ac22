package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/tabpresence/command"
	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helperExecutor re-runs the test binary as a stand-in for osascript.
type helperExecutor struct {
	env []string
}

func (h *helperExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(append(os.Environ(), "GO_WANT_HELPER_PROCESS=1"), h.env...)
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	script := strings.Join(args, " ")

	if os.Getenv("FAKE_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "execution error: Not authorized to send Apple events")
		os.Exit(1)
	}
	isTitle := strings.Contains(script, "return name of")
	if isTitle && os.Getenv("FAKE_FAIL_TITLE") == "1" {
		fmt.Fprintln(os.Stderr, "execution error: AppleEvent timed out")
		os.Exit(1)
	}
	if !isTitle && os.Getenv("FAKE_FAIL_URL") == "1" {
		fmt.Fprintln(os.Stderr, "execution error: AppleEvent timed out")
		os.Exit(1)
	}
	switch {
	case strings.Contains(script, "return URL of"):
		fmt.Println(os.Getenv("FAKE_URL"))
	case strings.Contains(script, "return name of"):
		fmt.Println(os.Getenv("FAKE_TITLE"))
	}
}

func TestScriptSourceActiveTab(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		env  []string
		want presence.Observed
	}{
		{
			name: "safari page",
			kind: KindSafari,
			env:  []string{"FAKE_URL=https://www.youtube.com/watch?v=x", "FAKE_TITLE=Cats - YouTube"},
			want: presence.Observed{URL: "https://www.youtube.com/watch?v=x", Title: "Cats - YouTube"},
		},
		{
			name: "chrome page without title",
			kind: KindChrome,
			env:  []string{"FAKE_URL=https://github.com/", "FAKE_TITLE="},
			want: presence.Observed{URL: "https://github.com/"},
		},
		{
			name: "no document",
			kind: KindSafari,
			env:  []string{"FAKE_URL=", "FAKE_TITLE="},
			want: presence.Observed{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(tt.kind, Options{Executor: &helperExecutor{env: tt.env}})
			require.NoError(t, err)
			assert.Equal(t, string(tt.kind), src.Name())

			got, err := src.ActiveTab(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScriptSourceFailure(t *testing.T) {
	tests := []struct {
		name string
		env  []string
	}{
		{"both queries fail", []string{"FAKE_FAIL=1"}},
		{"url query fails", []string{"FAKE_FAIL_URL=1", "FAKE_TITLE=Cats"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(KindSafari, Options{Executor: &helperExecutor{env: tt.env}})
			require.NoError(t, err)

			got, err := src.ActiveTab(context.Background())
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeSourceFailed, errors.GetCode(err))
			assert.Equal(t, presence.Observed{}, got)
		})
	}
}

func TestScriptSourceTitleFailureKeepsURL(t *testing.T) {
	for _, kind := range []Kind{KindSafari, KindChrome} {
		t.Run(string(kind), func(t *testing.T) {
			src, err := New(kind, Options{Executor: &helperExecutor{env: []string{
				"FAKE_URL=https://www.youtube.com/watch?v=x",
				"FAKE_FAIL_TITLE=1",
			}}})
			require.NoError(t, err)

			got, err := src.ActiveTab(context.Background())
			require.NoError(t, err)
			assert.Equal(t, presence.Observed{URL: "https://www.youtube.com/watch?v=x"}, got)

			// The reducer turns the missing title into the placeholder.
			assert.Equal(t, "Untitled", presence.NormalizeTitle(got.Title))
		})
	}
}

func TestScriptSourceTimeout(t *testing.T) {
	src, err := New(KindSafari, Options{
		Executor: &helperExecutor{env: []string{"FAKE_URL=https://a.com/"}},
		Timeout:  30 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, src.(*ScriptSource).timeout)

	got, err := src.ActiveTab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://a.com/", got.URL)
}

func TestScriptLines(t *testing.T) {
	b := command.NewSafeBuilder()

	assert.Equal(t, []string{
		`tell application "Safari"`,
		`if not (exists document 1) then return ""`,
		`return URL of document 1`,
		`end tell`,
	}, NewSafari(b).Lines("URL"))

	assert.Equal(t, []string{
		`tell application "Google Chrome"`,
		`if not (exists window 1) then return ""`,
		`return name of active tab of front window`,
		`end tell`,
	}, NewChrome(b).Lines("name"))
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(Kind("netscape"), Options{})
	assert.Error(t, err)
}

func TestNewCDP(t *testing.T) {
	src, err := New(KindCDP, Options{CDPURL: "http://127.0.0.1:9222"})
	require.NoError(t, err)
	cdp, ok := src.(*CDPSource)
	require.True(t, ok)
	assert.Equal(t, defaultCDPTimeout, cdp.timeout)
	assert.NoError(t, cdp.Close())
}

func TestCDPUnreachable(t *testing.T) {
	src := NewCDP("http://127.0.0.1:1", 0)
	_, err := src.ActiveTab(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSourceFailed, errors.GetCode(err))
}

func TestPickActive(t *testing.T) {
	tests := []struct {
		name  string
		pages []pageState
		want  presence.Observed
	}{
		{"no pages", nil, presence.Observed{}},
		{
			name: "visible wins",
			pages: []pageState{
				{URL: "https://a.com/", Title: "A"},
				{URL: "https://b.com/", Title: "B", Visible: true},
			},
			want: presence.Observed{URL: "https://b.com/", Title: "B"},
		},
		{
			name: "first when none visible",
			pages: []pageState{
				{URL: "https://a.com/", Title: "A"},
				{URL: "https://b.com/", Title: "B"},
			},
			want: presence.Observed{URL: "https://a.com/", Title: "A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickActive(tt.pages))
		})
	}
}
