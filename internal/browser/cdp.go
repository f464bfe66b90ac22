package browser

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/pkg/presence"
)

const defaultCDPTimeout = 3 * time.Second

// CDPSource reads the active tab over the Chrome DevTools Protocol. It works
// with any Chromium browser started with --remote-debugging-port.
type CDPSource struct {
	controlURL string
	timeout    time.Duration

	mu      sync.Mutex
	browser *rod.Browser
	ws      *cdp.WebSocket
}

// NewCDP creates a source for the DevTools endpoint at controlURL, which may
// be an http(s) address, a ws URL or a bare port.
func NewCDP(controlURL string, timeout time.Duration) *CDPSource {
	if timeout <= 0 {
		timeout = defaultCDPTimeout
	}
	return &CDPSource{controlURL: controlURL, timeout: timeout}
}

// Name implements Source.
func (s *CDPSource) Name() string { return string(KindCDP) }

// pageState is what the source learns about one page target.
type pageState struct {
	URL     string
	Title   string
	Visible bool
}

// ActiveTab returns the first visible page, or the first page when none
// reports itself visible. No pages means no active tab.
func (s *CDPSource) ActiveTab(ctx context.Context) (presence.Observed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b, err := s.connect(ctx)
	if err != nil {
		return presence.Observed{}, errors.SourceFailed(s.Name(), err)
	}

	pages, err := b.Context(ctx).Pages()
	if err != nil {
		s.dropLocked()
		return presence.Observed{}, errors.SourceFailed(s.Name(), err)
	}

	states := make([]pageState, 0, len(pages))
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		st := pageState{URL: info.URL, Title: info.Title}
		if res, err := p.Context(ctx).Eval(`() => document.visibilityState`); err == nil {
			st.Visible = res.Value.Str() == "visible"
		}
		states = append(states, st)
	}
	return pickActive(states), nil
}

// Close disconnects from the browser. The browser itself keeps running.
func (s *CDPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked()
	return nil
}

func (s *CDPSource) connect(ctx context.Context) (*rod.Browser, error) {
	if s.browser != nil {
		return s.browser, nil
	}

	wsURL, err := launcher.ResolveURL(s.controlURL)
	if err != nil {
		return nil, err
	}

	ws := &cdp.WebSocket{}
	if err := ws.Connect(ctx, wsURL, nil); err != nil {
		return nil, err
	}
	b := rod.New().Client(cdp.New().Start(ws))
	if err := b.Connect(); err != nil {
		_ = ws.Close()
		return nil, err
	}
	s.browser = b
	s.ws = ws
	return b, nil
}

// dropLocked closes the DevTools websocket so the next call reconnects.
// Browser.Close is never used: on a remote browser it would quit the
// user's Chrome.
func (s *CDPSource) dropLocked() {
	if s.ws != nil {
		_ = s.ws.Close()
	}
	s.browser = nil
	s.ws = nil
}

func pickActive(pages []pageState) presence.Observed {
	for _, p := range pages {
		if p.Visible {
			return presence.Observed{URL: p.URL, Title: p.Title}
		}
	}
	if len(pages) > 0 {
		return presence.Observed{URL: pages[0].URL, Title: pages[0].Title}
	}
	return presence.Observed{}
}
