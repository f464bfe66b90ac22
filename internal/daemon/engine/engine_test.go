package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/grovetools/tabpresence/pkg/sites"
	"github.com/grovetools/tabpresence/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSites = &sites.Config{
	VideoHosts:  []string{"*.youtube.com"},
	BrowseHosts: []string{"github.com"},
	Icons:       []sites.IconRule{{Pattern: "*.youtube.com", Icon: "youtube"}},
	DefaultIcon: "globe",
}

type observation struct {
	obs presence.Observed
	err error
}

type fakeSource struct {
	mu    sync.Mutex
	queue []observation
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

// ActiveTab pops the next observation, repeating the last one forever.
func (f *fakeSource) ActiveTab(ctx context.Context) (presence.Observed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.queue) == 0 {
		return presence.Observed{}, nil
	}
	o := f.queue[0]
	if len(f.queue) > 1 {
		f.queue = f.queue[1:]
	}
	return o.obs, o.err
}

type fakeSink struct {
	mu         sync.Mutex
	connected  bool
	connectErr error
	failNext   int
	connects   int
	sent       []presence.Payload
	clears     int
}

func (f *fakeSink) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeSink) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeSink) SetActivity(ctx context.Context, p presence.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext > 0 {
		f.failNext--
		return errors.New("pipe broken")
	}
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeSink) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext > 0 {
		f.failNext--
		return errors.New("pipe broken")
	}
	f.clears++
	return nil
}

func (f *fakeSink) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestEngine(src *fakeSource, sink *fakeSink) (*Engine, *store.Store) {
	st := store.New("fake", "sites.json", time.Second)
	return New(src, sink, testSites, st, testutil.QuietLogger(), Options{Interval: 10 * time.Millisecond, LogEveryTick: true}), st
}

func page(url, title string) observation {
	return observation{obs: presence.Observed{URL: url, Title: title}}
}

func TestTickSendsOnceForSamePage(t *testing.T) {
	src := &fakeSource{queue: []observation{page("https://www.youtube.com/watch?v=abc", "Cats")}}
	sink := &fakeSink{}
	e, st := newTestEngine(src, sink)
	ctx := context.Background()

	first := e.Tick(ctx)
	assert.Equal(t, presence.ActionSend, first.Decision.Action)
	assert.True(t, first.Applied)

	second := e.Tick(ctx)
	assert.Equal(t, presence.ActionNoOp, second.Decision.Action)

	require.Len(t, sink.sent, 1)
	p := sink.sent[0]
	assert.Equal(t, sites.ActivityVideo, p.Kind)
	assert.Equal(t, "Watching", p.Details)
	assert.Equal(t, "Cats", p.State)
	assert.Equal(t, "youtube", p.LargeImage)
	assert.Equal(t, "www.youtube.com", p.LargeText)

	snap := st.Get()
	assert.Equal(t, 2, snap.Ticks)
	assert.Equal(t, 1, snap.Sends)
	assert.True(t, snap.Connected)
}

func TestFailedSendIsRetried(t *testing.T) {
	src := &fakeSource{queue: []observation{page("https://github.com/x/y", "Repo")}}
	sink := &fakeSink{failNext: 1}
	e, st := newTestEngine(src, sink)
	ctx := context.Background()

	failed := e.Tick(ctx)
	assert.Equal(t, presence.ActionSend, failed.Decision.Action)
	assert.False(t, failed.Applied)
	assert.True(t, e.State().IsUnset())

	retried := e.Tick(ctx)
	assert.Equal(t, presence.ActionSend, retried.Decision.Action)
	assert.True(t, retried.Applied)

	assert.Equal(t, presence.ActionNoOp, e.Tick(ctx).Decision.Action)
	assert.Len(t, sink.sent, 1)
	assert.Equal(t, 1, st.Get().Failures)
}

func TestSourceErrorClearsOnce(t *testing.T) {
	src := &fakeSource{queue: []observation{
		page("https://github.com/", "GitHub"),
		{err: errors.New("osascript: not authorized")},
	}}
	sink := &fakeSink{}
	e, _ := newTestEngine(src, sink)
	ctx := context.Background()

	e.Tick(ctx)
	cleared := e.Tick(ctx)
	assert.Equal(t, presence.ActionClear, cleared.Decision.Action)
	assert.True(t, cleared.Applied)
	assert.Contains(t, cleared.Error, "not authorized")

	again := e.Tick(ctx)
	assert.Equal(t, presence.ActionNoOp, again.Decision.Action)
	assert.Equal(t, 1, sink.clears)
	assert.True(t, e.State().IsCleared())
}

func TestNoTabFromUnsetClears(t *testing.T) {
	src := &fakeSource{}
	sink := &fakeSink{}
	e, _ := newTestEngine(src, sink)

	assert.Equal(t, presence.ActionClear, e.Tick(context.Background()).Decision.Action)
	assert.Equal(t, 1, sink.clears)
}

func TestSinkNotReadySkipsTick(t *testing.T) {
	src := &fakeSource{queue: []observation{page("https://github.com/", "GitHub")}}
	sink := &fakeSink{connectErr: errors.New("discord is not running")}
	e, st := newTestEngine(src, sink)
	ctx := context.Background()

	skipped := e.Tick(ctx)
	assert.False(t, skipped.Applied)
	assert.Equal(t, 0, src.calls)
	assert.False(t, st.Get().Connected)

	sink.connectErr = nil
	sent := e.Tick(ctx)
	assert.True(t, sent.Applied)
	assert.Equal(t, presence.ActionSend, sent.Decision.Action)
	assert.Equal(t, 2, sink.connects)
}

func TestReconnectResendsSamePage(t *testing.T) {
	src := &fakeSource{queue: []observation{page("https://github.com/", "GitHub")}}
	sink := &fakeSink{}
	e, _ := newTestEngine(src, sink)
	ctx := context.Background()

	e.Tick(ctx)
	sink.connected = false

	resent := e.Tick(ctx)
	assert.Equal(t, presence.ActionSend, resent.Decision.Action)
	assert.Len(t, sink.sent, 2)
}

func TestTitleChangeResends(t *testing.T) {
	src := &fakeSource{queue: []observation{
		page("https://github.com/", "One"),
		page("https://github.com/", "Two"),
	}}
	sink := &fakeSink{}
	e, _ := newTestEngine(src, sink)
	ctx := context.Background()

	e.Tick(ctx)
	e.Tick(ctx)
	require.Len(t, sink.sent, 2)
	assert.Equal(t, "Two", sink.sent[1].State)
}

func TestStartTicksImmediatelyAndStops(t *testing.T) {
	src := &fakeSource{queue: []observation{page("https://github.com/", "GitHub")}}
	sink := &fakeSink{}
	e, st := newTestEngine(src, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return st.Get().Ticks >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.Equal(t, 1, sink.sentCount())
}

func TestShutdownClearsShownPresence(t *testing.T) {
	src := &fakeSource{queue: []observation{page("https://github.com/", "GitHub")}}
	sink := &fakeSink{}
	e, _ := newTestEngine(src, sink)
	ctx := context.Background()

	require.NoError(t, e.Shutdown(ctx))
	assert.Equal(t, 0, sink.clears)

	e.Tick(ctx)
	require.NoError(t, e.Shutdown(ctx))
	assert.Equal(t, 1, sink.clears)
	assert.True(t, e.State().IsCleared())
}
