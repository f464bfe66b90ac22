// Package monitor is a live terminal view of a running daemon, fed by its
// status stream.
package monitor

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/grovetools/tabpresence/tui/theme"
)

// maxHistory is how many applied changes the history pane keeps.
const maxHistory = 8

type updateMsg store.Update

type streamClosedMsg struct{}

// Model represents the state of the monitor TUI.
type Model struct {
	updates <-chan store.Update
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	theme   *theme.Theme

	state   *store.State
	history []store.Tick
	closed  bool
	width   int
	height  int
}

// New creates a monitor reading from updates, as returned by a daemon
// client's StreamState.
func New(updates <-chan store.Update) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.DefaultTheme.Info

	return &Model{
		updates: updates,
		keys:    DefaultKeyMap,
		help:    help.New(),
		spinner: sp,
		theme:   theme.DefaultTheme,
	}
}

// Init starts the spinner and the stream reader.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

// waitForUpdate turns the next stream message into a tea.Msg.
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return streamClosedMsg{}
		}
		return updateMsg(u)
	}
}

// apply folds one stream message into the local view of the state.
func (m *Model) apply(u store.Update) {
	switch u.Type {
	case store.UpdateSnapshot:
		if u.State != nil {
			s := *u.State
			m.state = &s
			if s.LastTick != nil {
				m.pushHistory(*s.LastTick)
			}
		}
	case store.UpdateTick:
		if m.state == nil || u.Tick == nil {
			return
		}
		t := *u.Tick
		m.state.Ticks++
		m.state.LastTick = &t
		switch {
		case !t.Applied:
			m.state.Failures++
		case t.Decision.Action == presence.ActionSend:
			m.state.Sends++
			m.pushHistory(t)
		case t.Decision.Action == presence.ActionClear:
			m.state.Clears++
			m.pushHistory(t)
		}
	case store.UpdateConnection:
		if m.state != nil {
			m.state.Connected = u.Connected
		}
	case store.UpdateConfigChanged:
		if m.state != nil {
			m.state.ConfigChanged = u.ConfigFile
		}
	}
}

func (m *Model) pushHistory(t store.Tick) {
	m.history = append([]store.Tick{t}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
}
