package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/tabpresence/pkg/daemon"
	"github.com/grovetools/tabpresence/tui/monitor"
	"github.com/spf13/cobra"
)

// NewMonitorCmd returns the live monitor command.
func NewMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the running daemon live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			client, err := daemon.Connect(settings.Socket)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			updates, err := client.StreamState(ctx)
			if err != nil {
				return err
			}
			return monitor.Run(ctx, updates)
		},
	}
	cmd.Flags().String("socket", "", "Path to the status socket")
	return cmd
}
