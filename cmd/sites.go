package cmd

import (
	"fmt"

	"github.com/grovetools/tabpresence/cli"
	"github.com/grovetools/tabpresence/config"
	"github.com/grovetools/tabpresence/logging"
	"github.com/grovetools/tabpresence/pkg/sites"
	"github.com/grovetools/tabpresence/tui/components/table"
	"github.com/spf13/cobra"
)

// NewSitesCmd returns the site configuration command group.
func NewSitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Inspect site configuration files",
	}
	cmd.AddCommand(newSitesValidateCmd())
	cmd.AddCommand(newSitesSchemaCmd())
	return cmd
}

func newSitesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Load and validate a site configuration",
		Long: `Load a site configuration (JSON, YAML or TOML) and check it against the
schema. Without a file, the configured sites path is used.

Examples:
  tabpresence sites validate
  tabpresence sites validate ~/sites.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				settings, err := loadSettings(cmd)
				if err != nil {
					return err
				}
				path = settings.Sites
			}

			cfg, err := config.LoadSites(path)
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "{\"valid\":true,\"path\":%q}\n", path)
				return nil
			}
			pretty := logging.NewPrettyLogger(cmd.OutOrStdout())
			pretty.Success(fmt.Sprintf("%s is valid", path))
			pretty.Field("Video hosts", len(cfg.VideoHosts))
			pretty.Field("Browse hosts", len(cfg.BrowseHosts))
			pretty.Field("Default icon", cfg.DefaultIcon)
			if len(cfg.Icons) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), table.SimpleTable([]string{"PATTERN", "ICON"}, iconRows(cfg.Icons)))
			}
			return nil
		},
	}
}

func iconRows(rules []sites.IconRule) [][]string {
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{r.Pattern, r.Icon})
	}
	return rows
}

func newSitesSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for site configuration files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
