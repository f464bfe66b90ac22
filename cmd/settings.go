package cmd

import (
	"fmt"

	"github.com/grovetools/tabpresence/cli"
	"github.com/grovetools/tabpresence/config"
	"github.com/spf13/cobra"
)

// addSettingsFlags registers flags that override tabpresence.yml.
func addSettingsFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("interval", "", fmt.Sprintf("Poll interval as a Go duration (default %s, minimum %s)", config.DefaultInterval, config.MinInterval))
	f.String("browser", "", "Browser source: safari, chrome, or cdp")
	f.String("cdp-url", "", "DevTools endpoint for --browser cdp")
	f.String("sites", "", "Path to the site configuration file")
	f.String("socket", "", "Path to the status socket")
	f.Bool("log-every-tick", true, "Log a record for every tick, not only for changes")
}

// loadSettings reads the settings file named by --config (or the default
// one) and applies any flags the command defines and the user set.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	s, err := config.LoadSettings(cli.GetOptions(cmd).ConfigFile)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	override := func(name string, dst *string) {
		if f.Lookup(name) != nil && f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	override("interval", &s.Interval)
	override("cdp-url", &s.CDPURL)
	override("sites", &s.Sites)
	override("socket", &s.Socket)
	if f.Lookup("browser") != nil && f.Changed("browser") {
		b, _ := f.GetString("browser")
		s.Browser = config.Browser(b)
	}
	if f.Lookup("log-every-tick") != nil && f.Changed("log-every-tick") {
		every, _ := f.GetBool("log-every-tick")
		s.LogEveryTick = &every
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}
