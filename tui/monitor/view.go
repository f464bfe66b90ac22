package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/grovetools/tabpresence/pkg/sites"
	"github.com/grovetools/tabpresence/tui/theme"
)

// View renders the monitor.
func (m *Model) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Header.Render("tabpresence monitor"))
	b.WriteString("\n")

	switch {
	case m.closed:
		b.WriteString(t.Error.Render(theme.IconError+" Lost connection to the daemon") + "\n")
	case m.state == nil:
		b.WriteString(m.spinner.View() + " Waiting for daemon...\n")
	}

	if m.state != nil {
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
		b.WriteString(m.renderCurrent())
		b.WriteString("\n")
		if len(m.history) > 0 {
			b.WriteString(t.Title.Render("Recent changes") + "\n")
			for _, tick := range m.history {
				b.WriteString(renderHistoryLine(t, tick) + "\n")
			}
		}
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderStatus() string {
	t := m.theme
	s := m.state

	conn := t.Success.Render(theme.IconSuccess + " connected")
	if !s.Connected {
		conn = t.Warning.Render(m.spinner.View() + " waiting for Discord")
	}

	rows := []string{
		t.Key.Render("Discord") + conn,
		t.Key.Render("Browser") + t.Value.Render(s.Browser),
		t.Key.Render("Interval") + t.Value.Render(s.Interval.String()),
		t.Key.Render("Ticks") + t.Value.Render(fmt.Sprintf("%d  sent %d  cleared %d  failed %d", s.Ticks, s.Sends, s.Clears, s.Failures)),
	}
	if s.ConfigChanged != "" {
		rows = append(rows, t.Warning.Render(theme.IconWarning+" "+s.ConfigChanged+" changed; restart to apply"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderCurrent() string {
	t := m.theme
	last := m.state.LastTick
	if last == nil {
		return t.Box.Render(t.Muted.Render("No ticks yet"))
	}

	if last.State.IsUnset() {
		return t.Box.Render(t.Muted.Render("Nothing shown yet"))
	}
	key, ok := last.State.Key()
	if !ok {
		return t.Box.Render(theme.IconCleared + " " + t.Muted.Render("Presence cleared"))
	}

	icon := theme.IconBrowse
	if key.Verb == sites.Watching {
		icon = theme.IconVideo
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		t.Highlight.Render(icon+" "+string(key.Verb)),
		t.Bold.Render(key.Title),
		t.Muted.Render(key.URL),
		t.Key.Render("icon")+t.Accent.Render(key.Icon),
	)
	if last.Error != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, t.Error.Render(last.Error))
	}
	return t.Box.Render(body)
}

func renderHistoryLine(t *theme.Theme, tick store.Tick) string {
	at := tick.At.Local().Format(time.TimeOnly)
	if tick.Decision.Action == presence.ActionClear {
		return fmt.Sprintf("%s %s %s", t.Muted.Render(at), theme.IconCleared, t.Muted.Render("cleared"))
	}
	title := ""
	if tick.Decision.Payload != nil {
		title = tick.Decision.Payload.State
	}
	return fmt.Sprintf("%s %s %s %s", t.Muted.Render(at), theme.IconArrow, string(tick.Decision.Classification.Verb), title)
}
