// Рендер
package ui

import (
	"fmt"
	"strings"
)

func (m MainModel) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	header := m.styles.header.
		Width(m.width).
		Render(m.headerText())

	border := m.styles.border.Render(strings.Repeat("─", max(m.width, 1)))

	if m.needsCredentials() {
		return fmt.Sprintf("%s\n\n%s\n%s\n\n%s\n%s",
			header,
			m.styles.system.Render("No LLM API key is configured for "+m.modelName+"."),
			m.styles.hint.Render("Enter a key to start chatting (it is kept in memory only)."),
			m.keyInput.View(),
			m.styles.err.Render(m.errLine),
		)
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s",
		header,
		m.vp.View(),
		m.status.Render(),
		m.styles.err.Render(m.errLine),
		border,
		m.textarea.View(),
	)
}

func (m MainModel) headerText() string {
	parts := []string{m.title}
	if m.modelName != "" {
		parts = append(parts, "MODEL: "+m.modelName)
	}
	if m.endpoint != "" {
		parts = append(parts, "MCP: "+m.endpoint)
	}
	return strings.Join(parts, " | ")
}
