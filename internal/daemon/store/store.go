package store

import (
	"sync"
	"time"

	"github.com/grovetools/tabpresence/pkg/presence"
)

// Store is the in-memory status store for the daemon.
// It is thread-safe and supports pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers map[chan Update]struct{}
}

// New creates a new Store instance.
func New(browser, sitesPath string, interval time.Duration) *Store {
	return &Store{
		state: State{
			StartedAt: time.Now(),
			Browser:   browser,
			SitesPath: sitesPath,
			Interval:  interval,
		},
		subscribers: make(map[chan Update]struct{}),
	}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.LastTick != nil {
		t := *st.LastTick
		st.LastTick = &t
	}
	return st
}

// RecordTick stores the result of a tick and notifies subscribers.
func (s *Store) RecordTick(t Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Ticks++
	if !t.Applied {
		s.state.Failures++
	} else {
		switch t.Decision.Action {
		case presence.ActionSend:
			s.state.Sends++
		case presence.ActionClear:
			s.state.Clears++
		}
	}
	s.state.LastTick = &t

	tick := t
	s.broadcastLocked(Update{Type: UpdateTick, Source: "engine", Tick: &tick})
}

// SetConnected records the sink connection state. Only changes are broadcast.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Connected == connected {
		return
	}
	s.state.Connected = connected
	s.broadcastLocked(Update{Type: UpdateConnection, Source: "sink", Connected: connected})
}

// RecordConfigChange notes that the site config changed on disk.
func (s *Store) RecordConfigChange(file string, validationErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ConfigChanged = file
	u := Update{Type: UpdateConfigChanged, Source: "config", ConfigFile: file}
	if validationErr != nil {
		u.ConfigError = validationErr.Error()
	}
	s.broadcastLocked(u)
}

// Subscribe creates a new subscription channel for state updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 100)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

func (s *Store) broadcastLocked(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send to prevent slow clients from stalling the daemon
		}
	}
}
