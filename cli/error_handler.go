package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/tabpresence/config"
	"github.com/grovetools/tabpresence/errors"
	"github.com/grovetools/tabpresence/tui/theme"
	"github.com/spf13/cobra"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Hint returns a suggestion for the error's code, or "" when there is none.
func Hint(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		return "Check the path, or omit the flag to use the defaults."
	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		return "Run 'tabpresence sites validate <file>' to check a site config."
	case errors.ErrCodeMissingClientID:
		return fmt.Sprintf("Export %s or add it to a .env file in the working directory.", config.ClientIDEnv)
	case errors.ErrCodeSourceFailed:
		return "Is the browser running? For --browser cdp, start Chrome with --remote-debugging-port."
	case errors.ErrCodeSinkNotConnected, errors.ErrCodeSinkFailed:
		return "Make sure the Discord desktop app is running."
	case errors.ErrCodeCommandNotFound:
		return "osascript is only available on macOS; use --browser cdp elsewhere."
	case errors.ErrCodeDaemonRunning:
		return "Stop it first with 'tabpresence stop'."
	case errors.ErrCodeDaemonNotRunning:
		return "Start it with 'tabpresence run'."
	}
	return ""
}

// Handle prints err and a hint for its code to cmd's error stream.
func (h *ErrorHandler) Handle(cmd *cobra.Command, err error) error {
	w := cmd.ErrOrStderr()
	PrintError(cmd, err)
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(w, "%s\n", theme.DefaultTheme.Muted.Render(hint))
	}
	if h.Verbose {
		printDetails(w, err)
	}
	return err
}

func printDetails(w io.Writer, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		return
	}
	fmt.Fprintf(w, "\nError details:\n%s\n", appErr.ToJSON())
}

// PrintError prints a styled error message to stderr with help hint.
func PrintError(cmd *cobra.Command, err error) {
	t := theme.DefaultTheme
	red := lipgloss.NewStyle().Bold(true).Foreground(t.Colors.Red)
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s\n", theme.IconError, red.Render("Error:"), err.Error())
}
