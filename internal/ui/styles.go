// Красота

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ilkoid/poncho-techsupport/pkg/tui"
)

// styles — стили, собранные из цветовой схемы.
type styles struct {
	header    lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	tool      lipgloss.Style
	toolDim   lipgloss.Style
	system    lipgloss.Style
	err       lipgloss.Style
	border    lipgloss.Style
	hint      lipgloss.Style
}

func newStyles(scheme tui.ColorScheme) styles {
	return styles{
		header: lipgloss.NewStyle().
			Foreground(scheme.HeaderText).
			Background(scheme.HeaderBackground).
			Padding(0, 1).
			Bold(true),
		user: lipgloss.NewStyle().
			Foreground(scheme.Customer).
			Bold(true),
		assistant: lipgloss.NewStyle().
			Foreground(scheme.Assistant).
			Bold(true),
		tool: lipgloss.NewStyle().
			Foreground(scheme.ToolCall),
		toolDim: lipgloss.NewStyle().
			Foreground(scheme.ToolTrace),
		system: lipgloss.NewStyle().
			Foreground(scheme.Notice),
		err: lipgloss.NewStyle().
			Foreground(scheme.Error).
			Bold(true),
		border: lipgloss.NewStyle().
			Foreground(scheme.Border),
		hint: lipgloss.NewStyle().
			Foreground(scheme.Notice).
			Italic(true),
	}
}
