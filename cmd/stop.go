package cmd

import (
	"fmt"
	"time"

	"github.com/grovetools/tabpresence/internal/daemon/pidfile"
	"github.com/grovetools/tabpresence/pkg/paths"
	"github.com/grovetools/tabpresence/pkg/process"
	"github.com/spf13/cobra"
)

// NewStopCmd returns the command that stops a running daemon.
func NewStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Long:  "Send SIGTERM to the daemon recorded in the pidfile and wait for it to clear its presence and exit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}

			timeout, _ := cmd.Flags().GetDuration("timeout")
			gone, err := process.Terminate(pid, timeout)
			if err != nil {
				return fmt.Errorf("failed to send stop signal to %d: %w", pid, err)
			}
			if !gone {
				return fmt.Errorf("daemon (PID %d) did not exit within %s", pid, timeout)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped daemon (PID %d)\n", pid)
			return nil
		},
	}
	cmd.Flags().Duration("timeout", 10*time.Second, "How long to wait for the daemon to exit")
	return cmd
}
