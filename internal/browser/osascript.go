package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/grovetools/tabpresence/command"
	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/logging"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/sirupsen/logrus"
)

// ScriptSource queries a scriptable macOS browser through osascript.
type ScriptSource struct {
	name    string
	app     string
	guard   string
	target  string
	builder *command.SafeBuilder
	// timeout bounds each osascript run; zero keeps the builder default.
	timeout time.Duration
	logger  *logrus.Entry
}

// NewSafari reads the front document of Safari.
func NewSafari(builder *command.SafeBuilder) *ScriptSource {
	return &ScriptSource{
		name:    string(KindSafari),
		app:     "Safari",
		guard:   "exists document 1",
		target:  "document 1",
		builder: builder,
		logger:  logging.NewLogger("browser"),
	}
}

// NewChrome reads the active tab of Google Chrome's front window.
func NewChrome(builder *command.SafeBuilder) *ScriptSource {
	return &ScriptSource{
		name:    string(KindChrome),
		app:     "Google Chrome",
		guard:   "exists window 1",
		target:  "active tab of front window",
		builder: builder,
		logger:  logging.NewLogger("browser"),
	}
}

// Name implements Source.
func (s *ScriptSource) Name() string { return s.name }

// ActiveTab runs the URL and title queries concurrently. Both return an
// empty string when the browser has no window or document. Only a failed
// URL query fails the call; a failed title query leaves the title absent.
func (s *ScriptSource) ActiveTab(ctx context.Context) (presence.Observed, error) {
	var (
		wg               sync.WaitGroup
		url, title       string
		urlErr, titleErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		url, urlErr = s.query(ctx, "URL")
	}()
	go func() {
		defer wg.Done()
		title, titleErr = s.query(ctx, "name")
	}()
	wg.Wait()

	if urlErr != nil {
		return presence.Observed{}, errors.SourceFailed(s.name, urlErr)
	}
	if titleErr != nil && url != "" {
		s.logger.WithError(titleErr).WithField("url", url).Debug("Title query failed, using no title")
		title = ""
	}
	return presence.Observed{URL: url, Title: title}, nil
}

// Lines returns the osascript lines that read property from the active tab.
func (s *ScriptSource) Lines(property string) []string {
	return []string{
		fmt.Sprintf("tell application %q", s.app),
		fmt.Sprintf("if not (%s) then return \"\"", s.guard),
		fmt.Sprintf("return %s of %s", property, s.target),
		"end tell",
	}
}

func (s *ScriptSource) query(ctx context.Context, property string) (string, error) {
	if err := s.builder.Validate("appName", s.app); err != nil {
		return "", err
	}

	lines := s.Lines(property)
	args := make([]string, 0, 2*len(lines))
	for _, l := range lines {
		if err := s.builder.Validate("scriptLine", l); err != nil {
			return "", err
		}
		args = append(args, "-e", l)
	}

	cmd, err := s.builder.Build(ctx, "osascript", args...)
	if err != nil {
		return "", err
	}
	if s.timeout > 0 {
		cmd = cmd.WithTimeout(s.timeout)
	}
	return cmd.Output()
}
