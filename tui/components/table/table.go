// Package table renders themed lipgloss tables for CLI output.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/tabpresence/tui/theme"
)

// NewStyledTable creates a bordered table with the default theme.
func NewStyledTable() *ltable.Table {
	t := theme.DefaultTheme
	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return t.Bold.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// KeyValue renders two-column rows with styled keys and no header.
func KeyValue(rows [][2]string) string {
	t := theme.DefaultTheme
	tbl := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return lipgloss.NewStyle().Foreground(t.Colors.MutedText).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(t.Colors.LightText).Padding(0, 1)
		})
	for _, r := range rows {
		tbl.Row(r[0], r[1])
	}
	return tbl.String()
}

// SimpleTable creates a basic table with headers and rows.
func SimpleTable(headers []string, rows [][]string) string {
	tbl := NewStyledTable().Headers(headers...)
	for _, row := range rows {
		tbl.Row(row...)
	}
	return tbl.String()
}
