package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/grovetools/tabpresence/cli"
	"github.com/grovetools/tabpresence/internal/daemon/pidfile"
	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/pkg/daemon"
	"github.com/grovetools/tabpresence/pkg/paths"
	"github.com/grovetools/tabpresence/tui/components/table"
	"github.com/grovetools/tabpresence/tui/theme"
	"github.com/spf13/cobra"
)

// NewStatusCmd returns the command that queries the running daemon.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what the running daemon is doing",
		Long: `Query the running daemon over its status socket. Exits non-zero when no
daemon is running.

Examples:
  tabpresence status
  tabpresence status --json`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
	cmd.Flags().String("socket", "", "Path to the status socket")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	client, err := daemon.Connect(settings.Socket)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	state, err := client.GetState(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	_, pid, _ := pidfile.IsRunning(paths.PidFilePath())
	fmt.Fprintln(out, theme.RenderHeader(fmt.Sprintf("%s tabpresence is running", theme.IconSuccess)))
	fmt.Fprintln(out, table.KeyValue(statusRows(state, pid, settings.Socket, time.Now())))
	return nil
}

// statusRows lays out a state snapshot for the key/value table.
func statusRows(s *store.State, pid int, socket string, now time.Time) [][2]string {
	rows := [][2]string{}
	if pid > 0 {
		rows = append(rows, [2]string{"PID", fmt.Sprint(pid)})
	}
	rows = append(rows,
		[2]string{"Socket", socket},
		[2]string{"Uptime", now.Sub(s.StartedAt).Round(time.Second).String()},
		[2]string{"Browser", s.Browser},
		[2]string{"Sites", s.SitesPath},
		[2]string{"Interval", s.Interval.String()},
		[2]string{"Discord", connectedLabel(s.Connected)},
		[2]string{"Ticks", fmt.Sprintf("%d (sent %d, cleared %d, failed %d)", s.Ticks, s.Sends, s.Clears, s.Failures)},
		[2]string{"Showing", showingLabel(s.LastTick)},
	)
	if s.ConfigChanged != "" {
		rows = append(rows, [2]string{"Config", s.ConfigChanged + " changed; restart to apply"})
	}
	return rows
}

func connectedLabel(connected bool) string {
	if connected {
		return "connected"
	}
	return "not connected"
}

func showingLabel(t *store.Tick) string {
	if t == nil {
		return "-"
	}
	key, ok := t.State.Key()
	if !ok {
		if t.State.IsCleared() {
			return "nothing (cleared)"
		}
		return "-"
	}
	return fmt.Sprintf("%s %s", key.Verb, key.Title)
}
