// Package cli holds the cobra plumbing shared by every tabpresence command.
package cli

import (
	"os"

	"github.com/grovetools/tabpresence/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the persistent flags every command accepts.
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to the tabpresence.yml settings file")

	// Settings are read by the logging package too, so the flag has to land
	// in the environment before the first logger is built.
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		opts := GetOptions(cmd)
		if opts.ConfigFile != "" {
			os.Setenv(logging.ConfigEnv, opts.ConfigFile)
			logging.Reset()
		}
		if opts.Verbose {
			os.Setenv("TABPRESENCE_LOG_LEVEL", "debug")
			logging.Reset()
		}
	}

	SetStyledHelp(cmd)
	return cmd
}

// GetLogger returns the CLI logger, at debug level under --verbose.
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	entry := logging.NewLogger("cli")
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}
	return entry
}

// GetOptions extracts common options from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// Execute runs root and reports a failure through the ErrorHandler. It
// returns the process exit code.
func Execute(root *cobra.Command) int {
	ApplyStyledHelpRecursive(root)
	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	NewErrorHandler(verbose).Handle(cmd, err)
	return 1
}
