package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run запускает Bubble Tea программу в alt screen.
//
// Отмена ctx завершает программу; это не считается ошибкой.
func Run(ctx context.Context, model tea.Model, opts ...tea.ProgramOption) error {
	if model == nil {
		return fmt.Errorf("model is nil")
	}

	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}, opts...)

	p := tea.NewProgram(model, opts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
