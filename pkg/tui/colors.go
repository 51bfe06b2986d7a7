package tui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// DefaultSchemeName — схема, которая используется для пустого или неизвестного app.color_scheme.
const DefaultSchemeName = "default"

// ColorScheme — цвета чата техподдержки.
//
// Значения lipgloss.Color: ANSI номер ("86") или hex ("#8be9fd").
type ColorScheme struct {
	HeaderBackground lipgloss.Color // строка заголовка и статус
	HeaderText       lipgloss.Color

	Customer  lipgloss.Color // "You: ..."
	Assistant lipgloss.Color // ответы и спиннер
	ToolCall  lipgloss.Color // "using tool: ..."
	ToolTrace lipgloss.Color // строки "⚙ tool ok (12ms)"
	Notice    lipgloss.Color // подсказки и экран ввода ключа
	Error     lipgloss.Color
	Border    lipgloss.Color
}

var colorSchemes = map[string]ColorScheme{
	DefaultSchemeName: {
		HeaderBackground: lipgloss.Color("235"),
		HeaderText:       lipgloss.Color("252"),
		Customer:         lipgloss.Color("226"),
		Assistant:        lipgloss.Color("86"),
		ToolCall:         lipgloss.Color("99"),
		ToolTrace:        lipgloss.Color("245"),
		Notice:           lipgloss.Color("242"),
		Error:            lipgloss.Color("196"),
		Border:           lipgloss.Color("240"),
	},
	"dark": {
		HeaderBackground: lipgloss.Color("0"),
		HeaderText:       lipgloss.Color("15"),
		Customer:         lipgloss.Color("11"),
		Assistant:        lipgloss.Color("14"),
		ToolCall:         lipgloss.Color("13"),
		ToolTrace:        lipgloss.Color("7"),
		Notice:           lipgloss.Color("8"),
		Error:            lipgloss.Color("9"),
		Border:           lipgloss.Color("4"),
	},
	"light": {
		HeaderBackground: lipgloss.Color("255"),
		HeaderText:       lipgloss.Color("0"),
		Customer:         lipgloss.Color("130"),
		Assistant:        lipgloss.Color("31"),
		ToolCall:         lipgloss.Color("90"),
		ToolTrace:        lipgloss.Color("245"),
		Notice:           lipgloss.Color("8"),
		Error:            lipgloss.Color("1"),
		Border:           lipgloss.Color("8"),
	},
}

// DefaultColorScheme возвращает схему "default".
func DefaultColorScheme() ColorScheme {
	return colorSchemes[DefaultSchemeName]
}

// GetColorScheme возвращает схему по имени. Неизвестное имя даёт default.
func GetColorScheme(name string) ColorScheme {
	if scheme, ok := colorSchemes[name]; ok {
		return scheme
	}
	return DefaultColorScheme()
}

// ColorSchemeNames возвращает имена встроенных схем по алфавиту.
func ColorSchemeNames() []string {
	names := make([]string, 0, len(colorSchemes))
	for name := range colorSchemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
