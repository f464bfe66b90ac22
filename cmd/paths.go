package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/tabpresence/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists the files and directories tabpresence uses.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	StateDir   string `json:"state_dir"`
	LogDir     string `json:"log_dir"`
	RuntimeDir string `json:"runtime_dir"`
	Settings   string `json:"settings"`
	Socket     string `json:"socket"`
	PidFile    string `json:"pid_file"`
}

// NewPathsCmd returns the command that prints resolved paths.
func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by tabpresence",
		Long: `Print the paths used by tabpresence as JSON.

Directories follow XDG conventions. Set TABPRESENCE_HOME to keep everything
under a single root instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:  paths.ConfigDir(),
				StateDir:   paths.StateDir(),
				LogDir:     paths.LogDir(),
				RuntimeDir: paths.RuntimeDir(),
				Settings:   paths.SettingsPath(),
				Socket:     paths.SocketPath(),
				PidFile:    paths.PidFilePath(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}
}
