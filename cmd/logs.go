package cmd

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/grovetools/tabpresence/logging"
	"github.com/grovetools/tabpresence/pkg/paths"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		Long: `Print the newest daemon log file, or follow it as the daemon writes.

Examples:
  # Last 50 lines
  tabpresence logs --tail 50

  # Follow
  tabpresence logs -f`,
		Args: cobra.NoArgs,
		RunE: runLogsE,
	}
	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of the log (default: all)")
	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	path, err := findLogFile()
	if err != nil {
		return err
	}
	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")
	return printLog(cmd.Context(), cmd.OutOrStdout(), path, tailLines, follow)
}

// findLogFile returns today's daemon log, or the newest one in the log
// directory.
func findLogFile() (string, error) {
	if path := logging.ActiveFilePath(time.Now()); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return findLatestLogFile(paths.LogDir())
}

// findLatestLogFile picks the most recently modified tabpresence-*.log in dir.
func findLatestLogFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "tabpresence-*.log"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no log files found in %s", dir)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var files []candidate
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil {
			files = append(files, candidate{m, info.ModTime()})
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no log files found in %s", dir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })
	return files[0].path, nil
}

// printLog writes the last tailLines lines of path (all when negative) and,
// when following, every line appended afterwards until ctx is done.
func printLog(ctx context.Context, w io.Writer, path string, tailLines int, follow bool) error {
	quiet := stdlog.New(io.Discard, "", 0)

	t, err := tail.TailFile(path, tail.Config{
		Follow: false,
		Logger: quiet,
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	var lines []string
	for line := range t.Lines {
		lines = append(lines, line.Text)
		if tailLines >= 0 && len(lines) > tailLines {
			lines = lines[1:]
		}
	}
	t.Cleanup()
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	if !follow {
		return nil
	}

	ft, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   quiet,
	})
	if err != nil {
		return fmt.Errorf("failed to follow %s: %w", path, err)
	}
	defer ft.Cleanup()
	for {
		select {
		case line, ok := <-ft.Lines:
			if !ok {
				return ft.Err()
			}
			fmt.Fprintln(w, line.Text)
		case <-ctx.Done():
			return ft.Stop()
		}
	}
}
