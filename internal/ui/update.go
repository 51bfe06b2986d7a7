// Логика - обрабатывает нажатия клавиш, события агента и результаты ходов.

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-techsupport/internal/agent"
	"github.com/ilkoid/poncho-techsupport/pkg/events"
	"github.com/ilkoid/poncho-techsupport/pkg/tui"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

const (
	headerHeight = 1
	// статус + строка ошибки + граница
	footerChrome = 3
	scrollStep   = 5
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textarea.SetWidth(msg.Width)
		m.keyInput.Width = msg.Width - len(m.keyInput.Prompt) - 2
		m.vp.HandleResize(msg, headerHeight, m.textarea.Height()+footerChrome)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.needsCredentials() {
			return m.updateCredentials(msg)
		}
		return m.updateChat(msg)

	case turnResultMsg:
		return m.finishTurn(msg), nil

	case tui.EventMsg:
		m.handleEvent(events.Event(msg))
		return m, tui.WaitForEvent(m.eventSub, tui.ToEventMsg)

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}

	var cmd tea.Cmd
	if m.needsCredentials() {
		m.keyInput, cmd = m.keyInput.Update(msg)
	} else {
		m.textarea, cmd = m.textarea.Update(msg)
	}
	return m, tea.Batch(cmd, m.vp.Update(msg))
}

// updateCredentials — экран ввода ключа. Чат и LLM недоступны до непустого ключа.
func (m MainModel) updateCredentials(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Send) {
		var cmd tea.Cmd
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}

	apiKey := strings.TrimSpace(m.keyInput.Value())
	if apiKey == "" {
		m.errLine = "API key must not be empty"
		return m, nil
	}
	if m.build == nil {
		m.errLine = "API key entry is not available"
		return m, nil
	}

	handler, err := m.build(apiKey)
	if err != nil {
		utils.Warn("Failed to build LLM provider from entered key", "error", err)
		m.errLine = "Could not start the assistant: " + err.Error()
		return m, nil
	}

	utils.Info("LLM API key entered in UI", "model", m.modelName)
	m.handler = handler
	m.errLine = ""
	m.keyInput.Reset()
	m.keyInput.Blur()
	m.textarea.Focus()
	m.vp.Append(m.styles.system.Render("API key accepted."))
	return m, nil
}

func (m MainModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ScrollUp):
		m.vp.ScrollUp(scrollStep)
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.vp.ScrollDown(scrollStep)
		return m, nil

	case key.Matches(msg, m.keys.Send):
		// Один ход за раз: Enter во время хода игнорируется
		if m.pending {
			return m, nil
		}
		text := strings.TrimSpace(m.textarea.Value())
		if text == "" {
			return m, nil
		}

		m.textarea.Reset()
		m.errLine = ""
		m.pending = true
		m.vp.Append(m.styles.user.Render("You: ") + text)
		m.status.SetProcessing(true)
		m.status.SetStatus("thinking…")

		return m, tea.Batch(
			m.status.Tick(),
			runTurn(m.ctx, m.handler, m.session, text),
		)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// runTurn выполняет ход в горутине tea.Cmd, чтобы не блокировать UI.
func runTurn(ctx context.Context, h TurnHandler, session agent.Session, text string) tea.Cmd {
	return func() tea.Msg {
		next, answer, err := h.HandleTurn(ctx, session, text)
		return turnResultMsg{session: next, answer: answer, err: err}
	}
}

func (m MainModel) finishTurn(msg turnResultMsg) MainModel {
	m.pending = false
	m.status.SetProcessing(false)

	if msg.err != nil {
		m.errLine = "Error: " + msg.err.Error()
		return m
	}

	m.session = msg.session
	m.vp.Append(m.styles.assistant.Render("Assistant: ") + msg.answer)
	return m
}

// handleEvent обновляет статус и ленту по событиям хода.
func (m MainModel) handleEvent(event events.Event) {
	switch data := event.Data.(type) {
	case events.ThinkingData:
		m.status.SetStatus("thinking…")

	case events.ToolCallData:
		m.status.SetStatus(fmt.Sprintf("using tool: %s…", data.ToolName))

	case events.ToolResultData:
		outcome := "ok"
		if data.Failed {
			outcome = "failed"
		}
		m.vp.Append(m.styles.tool.Render("  ⚙ "+data.ToolName) +
			m.styles.toolDim.Render(fmt.Sprintf(" %s (%s)", outcome, data.Duration.Round(time.Millisecond))))
		m.status.SetStatus("thinking…")
	}
}
