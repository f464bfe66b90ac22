// Package engine drives the poll loop: read the active tab, reduce it
// against the committed presence state, and apply the result to the sink.
package engine

import (
	"context"
	"time"

	"github.com/grovetools/tabpresence/internal/browser"
	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/pkg/ids"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/grovetools/tabpresence/pkg/sites"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultInterval is the poll period used when Options.Interval is zero.
	DefaultInterval = 2 * time.Second
	// DefaultTickTimeout bounds one tick, source and sink calls included.
	DefaultTickTimeout = 10 * time.Second
)

// Sink is where presence updates go.
type Sink interface {
	Connect(ctx context.Context) error
	Connected() bool
	SetActivity(ctx context.Context, p presence.Payload) error
	Clear(ctx context.Context) error
}

// Options tunes an Engine.
type Options struct {
	Interval    time.Duration
	TickTimeout time.Duration
	// LogEveryTick logs a record for every tick, not only for changes.
	LogEveryTick bool
}

// Engine owns the committed presence state. Ticks never overlap: Start runs
// them from a single goroutine and Tick must not be called concurrently.
type Engine struct {
	source  browser.Source
	sink    Sink
	sites   *sites.Config
	store   *store.Store
	logger  *logrus.Entry
	opts    Options
	state   presence.State
	started bool
}

// New creates a new Engine instance.
func New(src browser.Source, sink Sink, cfg *sites.Config, st *store.Store, logger *logrus.Entry, opts Options) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.TickTimeout <= 0 {
		opts.TickTimeout = DefaultTickTimeout
	}
	return &Engine{
		source: src,
		sink:   sink,
		sites:  cfg,
		store:  st,
		logger: logger,
		opts:   opts,
	}
}

// Start ticks once immediately, then every interval, until ctx is canceled.
func (e *Engine) Start(ctx context.Context) {
	e.logger.WithFields(logrus.Fields{
		"source":   e.source.Name(),
		"interval": e.opts.Interval,
	}).Info("Starting tick loop")

	e.runTick(ctx)

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runTick(ctx)
		}
	}
}

func (e *Engine) runTick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, e.opts.TickTimeout)
	defer cancel()
	e.Tick(tickCtx)
}

// State returns the committed presence state.
func (e *Engine) State() presence.State {
	return e.state
}

// Tick runs one poll and returns its record. The committed state advances
// only when the sink call for the decided action succeeds, so a failed
// update is retried on the next tick.
func (e *Engine) Tick(ctx context.Context) store.Tick {
	t := store.Tick{ID: ids.New(), At: time.Now()}
	log := e.logger.WithField("tick", t.ID)

	if !e.sink.Connected() {
		if err := e.sink.Connect(ctx); err != nil {
			log.WithError(err).Warn("Presence sink not ready, skipping tick")
			t.Error = err.Error()
			t.State = e.state
			e.record(t)
			return t
		}
		// A fresh connection starts with no activity shown.
		if e.started {
			log.Info("Presence sink reconnected")
		}
		e.state = presence.Unset()
		e.setConnected(true)
	}
	e.started = true

	obs, err := e.source.ActiveTab(ctx)
	if err != nil {
		log.WithError(err).Warn("Browser source failed, treating as no active page")
		t.Error = err.Error()
		obs = presence.Observed{}
	}
	t.Observed = obs

	d := presence.Reduce(obs, e.state, e.sites)
	t.Decision = d

	if e.opts.LogEveryTick && obs.URL != "" {
		log.WithFields(logrus.Fields{
			"url":      obs.URL,
			"host":     d.Host,
			"title":    d.Key.Title,
			"category": d.Classification.Category,
			"verb":     d.Classification.Verb,
			"type":     int(d.Classification.Kind),
			"icon":     d.Icon,
			"changed":  d.Action == presence.ActionSend,
		}).Info("Tick")
	}

	var sinkErr error
	switch d.Action {
	case presence.ActionSend:
		sinkErr = e.sink.SetActivity(ctx, *d.Payload)
	case presence.ActionClear:
		sinkErr = e.sink.Clear(ctx)
	}

	if sinkErr != nil {
		log.WithError(sinkErr).WithField("action", d.Action).Error("Presence update failed")
		t.Error = sinkErr.Error()
		t.State = e.state
		e.setConnected(e.sink.Connected())
		e.record(t)
		return t
	}

	e.state = d.Next
	t.State = e.state

	switch d.Action {
	case presence.ActionSend:
		log.WithFields(logrus.Fields{
			"verb":     d.Classification.Verb,
			"category": d.Classification.Category,
			"title":    d.Key.Title,
		}).Info("Presence updated")
	case presence.ActionClear:
		log.Info("Presence cleared (no active tab)")
	case presence.ActionNoOp:
		if obs.URL == "" {
			log.Debug("Skip: no active tab")
		} else {
			log.WithField("title", d.Key.Title).Debug("Skip: unchanged")
		}
	}

	t.Applied = true
	e.record(t)
	return t
}

// Shutdown clears any presence this engine set. It is a no-op when nothing
// is shown or the sink is gone.
func (e *Engine) Shutdown(ctx context.Context) error {
	if _, shown := e.state.Key(); !shown || !e.sink.Connected() {
		return nil
	}
	if err := e.sink.Clear(ctx); err != nil {
		return err
	}
	e.state = presence.Cleared()
	e.logger.Info("Presence cleared on shutdown")
	return nil
}

func (e *Engine) record(t store.Tick) {
	if e.store != nil {
		e.store.RecordTick(t)
	}
}

func (e *Engine) setConnected(connected bool) {
	if e.store != nil {
		e.store.SetConnected(connected)
	}
}
