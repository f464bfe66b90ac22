package monitor

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/tabpresence/internal/daemon/store"
	"github.com/grovetools/tabpresence/logging"
	"github.com/grovetools/tabpresence/tui"
)

// Run shows the monitor full-screen until the user quits or ctx ends.
// Log output to stderr is muted while the alternate screen is active.
func Run(ctx context.Context, updates <-chan store.Update) error {
	tui.InitializeTUI()

	logging.SetGlobalOutput(io.Discard)
	defer logging.SetGlobalOutput(os.Stderr)

	p := tea.NewProgram(New(updates), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
