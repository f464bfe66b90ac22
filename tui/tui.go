package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// InitializeTUI prepares the terminal for the monitor. When `CLICOLOR_FORCE=1`
// or `COLORTERM=truecolor` is set it forces a true-color lipgloss profile, so
// colors survive piping and CI. Otherwise lipgloss detection is left alone.
func InitializeTUI() {
	if os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor" {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}
