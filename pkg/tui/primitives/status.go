package primitives

import (
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBarManager — строка состояния: spinner и текущее действие во время хода.
type StatusBarManager struct {
	spinner      spinner.Model
	isProcessing bool
	status       string
	mu           sync.RWMutex

	cfg StatusBarConfig
}

// StatusBarConfig цвета статус-бара.
type StatusBarConfig struct {
	SpinnerColor    lipgloss.Color
	IdleColor       lipgloss.Color
	BackgroundColor lipgloss.Color
	TextColor       lipgloss.Color
}

// DefaultStatusBarConfig возвращает цвета по умолчанию.
func DefaultStatusBarConfig() StatusBarConfig {
	return StatusBarConfig{
		SpinnerColor:    lipgloss.Color("86"),
		IdleColor:       lipgloss.Color("242"),
		BackgroundColor: lipgloss.Color("235"),
		TextColor:       lipgloss.Color("252"),
	}
}

// NewStatusBarManager создаёт статус-бар.
func NewStatusBarManager(cfg StatusBarConfig) *StatusBarManager {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(cfg.SpinnerColor)

	return &StatusBarManager{
		spinner: s,
		cfg:     cfg,
	}
}

// Tick возвращает команду первого тика spinner.
func (sm *StatusBarManager) Tick() tea.Cmd {
	return sm.spinner.Tick
}

// Update продвигает spinner. Пока ход не идёт, тики прекращаются.
func (sm *StatusBarManager) Update(msg spinner.TickMsg) tea.Cmd {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.isProcessing {
		return nil
	}
	var cmd tea.Cmd
	sm.spinner, cmd = sm.spinner.Update(msg)
	return cmd
}

// Render возвращает статус-бар.
func (sm *StatusBarManager) Render() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	base := lipgloss.NewStyle().
		Background(sm.cfg.BackgroundColor).
		Padding(0, 1)

	if !sm.isProcessing {
		return base.Foreground(sm.cfg.IdleColor).Render("✓ Ready")
	}

	text := sm.spinner.View()
	if sm.status != "" {
		text += " " + sm.status
	}
	return base.Foreground(sm.cfg.TextColor).Render(text)
}

// SetProcessing включает spinner. Выключение сбрасывает текст статуса.
func (sm *StatusBarManager) SetProcessing(processing bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isProcessing = processing
	if !processing {
		sm.status = ""
	}
}

// IsProcessing сообщает, идёт ли ход.
func (sm *StatusBarManager) IsProcessing() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isProcessing
}

// SetStatus задаёт текст рядом со spinner, например "using tool: get_product…".
func (sm *StatusBarManager) SetStatus(text string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.status = text
}

// Status возвращает текущий текст статуса.
func (sm *StatusBarManager) Status() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.status
}
