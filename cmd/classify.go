package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/grovetools/tabpresence/cli"
	"github.com/grovetools/tabpresence/config"
	"github.com/grovetools/tabpresence/pkg/daemon"
	"github.com/grovetools/tabpresence/pkg/presence"
	"github.com/grovetools/tabpresence/tui/components/table"
	"github.com/spf13/cobra"
)

// NewClassifyCmd returns the command that previews the presence for a page.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <url> [title]",
		Short: "Show the presence a page would produce",
		Long: `Classify a URL against the site configuration and print the presence it
would produce as the first page seen. With --daemon the running daemon's
loaded configuration is used instead of the file on disk.

Examples:
  tabpresence classify https://www.youtube.com/watch?v=dQw4w9WgXcQ "Never Gonna Give You Up"
  tabpresence classify https://github.com --json
  tabpresence classify https://github.com --daemon`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runClassify,
	}
	cmd.Flags().String("sites", "", "Path to the site configuration file")
	cmd.Flags().String("socket", "", "Path to the status socket")
	cmd.Flags().Bool("daemon", false, "Ask the running daemon instead of reading the site config")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	obs := presence.Observed{URL: args[0]}
	if len(args) > 1 {
		obs.Title = args[1]
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	var d presence.Decision
	if useDaemon, _ := cmd.Flags().GetBool("daemon"); useDaemon {
		client, err := daemon.Connect(settings.Socket)
		if err != nil {
			return err
		}
		defer client.Close()
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		got, err := client.Classify(ctx, obs.URL, obs.Title)
		if err != nil {
			return err
		}
		d = *got
	} else {
		cfg, err := config.LoadSites(settings.Sites)
		if err != nil {
			return err
		}
		d = presence.Reduce(obs, presence.Unset(), cfg)
	}

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	printDecision(out, obs, d)
	return nil
}

func printDecision(w io.Writer, obs presence.Observed, d presence.Decision) {
	host := d.Host
	if host == "" {
		host = "(none)"
	}
	rows := [][2]string{
		{"URL", obs.URL},
		{"Host", host},
		{"Category", string(d.Classification.Category)},
		{"Verb", string(d.Classification.Verb)},
		{"Kind", fmt.Sprintf("%s (%d)", d.Classification.Kind, int(d.Classification.Kind))},
		{"Icon", d.Icon},
		{"Title", d.Key.Title},
		{"Action", string(d.Action)},
	}
	if p := d.Payload; p != nil {
		buttons := make([]string, 0, len(p.Buttons))
		for _, b := range p.Buttons {
			buttons = append(buttons, b.Label+" -> "+b.URL)
		}
		rows = append(rows,
			[2]string{"Details", p.Details},
			[2]string{"State", p.State},
			[2]string{"Image", p.LargeImage + " (" + p.LargeText + ")"},
			[2]string{"Buttons", strings.Join(buttons, ", ")},
		)
	}
	fmt.Fprintln(w, table.KeyValue(rows))
}
