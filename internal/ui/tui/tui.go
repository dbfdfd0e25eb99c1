// Package tui provides interactive terminal UI components using BubbleTea.
package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles contains reusable lipgloss styles for the TUI.
var Styles = struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	Normal:   lipgloss.NewStyle(),
}

// Run starts a BubbleTea program with the given model.
func Run(model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model, tea.WithAltScreen())
	return p.Run()
}

// tableStyles returns the shared table styling with the given selection background.
func tableStyles(selectedBackground string) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color(selectedBackground)).
		Bold(false)
	return s
}

// filterInput applies one keystroke to a filter string in filtering mode.
// It reports whether filtering should continue and whether the value changed.
func filterInput(current, keyName string) (next string, stillFiltering, changed bool) {
	switch keyName {
	case "enter":
		return current, false, false
	case "esc":
		return "", false, current != ""
	case "backspace":
		if current == "" {
			return current, true, false
		}
		r := []rune(current)
		return string(r[:len(r)-1]), true, true
	default:
		if len([]rune(keyName)) == 1 {
			return current + keyName, true, true
		}
		return current, true, false
	}
}
