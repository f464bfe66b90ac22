package main

import (
	"os"

	"github.com/grovetools/tabpresence/cli"
	"github.com/grovetools/tabpresence/cmd"
	"github.com/grovetools/tabpresence/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"tabpresence",
		"Mirror the active browser tab to Discord Rich Presence",
	)
	rootCmd.Version = version.Version

	rootCmd.AddCommand(cmd.NewRunCmd())
	rootCmd.AddCommand(cmd.NewStopCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewMonitorCmd())
	rootCmd.AddCommand(cmd.NewClassifyCmd())
	rootCmd.AddCommand(cmd.NewSitesCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("tabpresence"))

	os.Exit(cli.Execute(rootCmd))
}
