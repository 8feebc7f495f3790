package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5eead4")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1e2a2a"))
)

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return "  (none)"
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

// renderKV renders alternating label/value pairs as a two-column table.
func renderKV(pairs ...string) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return cellStyle
		})
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Row(pairs[i], pairs[i+1])
	}
	return t.Render()
}

func pageFooter(page, size int, total int64) string {
	return keyStyle.Render(fmt.Sprintf("page %d, %d per page, %d total", page, size, total))
}

// formatPoints drops the fraction of whole point amounts.
func formatPoints(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}

func signed(p float64) string {
	if p > 0 {
		return "+" + formatPoints(p)
	}
	return formatPoints(p)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
