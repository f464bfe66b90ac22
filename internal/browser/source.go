// Package browser reads the active tab of a running web browser.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/grovetools/tabpresence/command"
	"github.com/grovetools/tabpresence/pkg/presence"
)

// Kind names a browser source implementation.
type Kind string

const (
	KindSafari Kind = "safari"
	KindChrome Kind = "chrome"
	KindCDP    Kind = "cdp"
)

// Source reports the browser's active tab. An empty URL means no page is
// open. Errors are per call; the caller decides how to degrade.
type Source interface {
	Name() string
	ActiveTab(ctx context.Context) (presence.Observed, error)
}

// Options configures New.
type Options struct {
	// CDPURL is the DevTools endpoint for KindCDP.
	CDPURL string
	// Timeout bounds one query. Zero uses the command package default.
	Timeout time.Duration
	// Executor overrides how osascript is started.
	Executor command.Executor
}

// New builds the source for kind.
func New(kind Kind, opts Options) (Source, error) {
	switch kind {
	case KindSafari, KindChrome:
		exec := opts.Executor
		if exec == nil {
			exec = &command.RealExecutor{}
		}
		builder := command.NewSafeBuilderWithExecutor(exec)
		src := NewSafari(builder)
		if kind == KindChrome {
			src = NewChrome(builder)
		}
		src.timeout = opts.Timeout
		return src, nil
	case KindCDP:
		return NewCDP(opts.CDPURL, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown browser source %q", kind)
	}
}
