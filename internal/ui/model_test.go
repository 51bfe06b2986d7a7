package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-techsupport/internal/agent"
	"github.com/ilkoid/poncho-techsupport/pkg/events"
	"github.com/ilkoid/poncho-techsupport/pkg/llm"
	"github.com/ilkoid/poncho-techsupport/pkg/tui"
)

// fakeHandler отвечает фиксированным текстом и дописывает ход в историю.
type fakeHandler struct {
	mu     sync.Mutex
	inputs []string
	answer string
	err    error
}

func (f *fakeHandler) HandleTurn(ctx context.Context, session agent.Session, text string) (agent.Session, string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()

	if f.err != nil {
		return session, "", f.err
	}
	next := session.Clone()
	next.History = append(next.History,
		llm.Message{Role: llm.RoleUser, Content: text},
		llm.Message{Role: llm.RoleAssistant, Content: f.answer},
	)
	return next, f.answer, nil
}

func (f *fakeHandler) Inputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

func newReadyModel(t *testing.T, opts Options) MainModel {
	t.Helper()
	if opts.Title == "" {
		opts.Title = "TechSupport AI"
	}
	opts.Scheme = tui.DefaultColorScheme()
	m := NewModel(opts)
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func update(t *testing.T, m MainModel, msg tea.Msg) MainModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(MainModel)
}

func typeText(t *testing.T, m MainModel, text string) MainModel {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func pressEnter(m MainModel) (MainModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(MainModel), cmd
}

// findTurnResult выполняет команду (и вложенные batch команды) и ищет результат хода.
func findTurnResult(t *testing.T, cmd tea.Cmd) turnResultMsg {
	t.Helper()
	require.NotNil(t, cmd)

	switch msg := cmd().(type) {
	case turnResultMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if res, ok := c().(turnResultMsg); ok {
				return res
			}
		}
	}
	t.Fatal("command did not produce a turn result")
	return turnResultMsg{}
}

func TestCredentialGate_BlocksChatUntilKeyEntered(t *testing.T) {
	handler := &fakeHandler{answer: "hi"}
	var builtWith []string
	m := newReadyModel(t, Options{
		ModelName: "llama-3.3-70b",
		Build: func(apiKey string) (TurnHandler, error) {
			builtWith = append(builtWith, apiKey)
			return handler, nil
		},
	})

	require.True(t, m.needsCredentials())
	assert.Contains(t, m.View(), "No LLM API key is configured")

	m = typeText(t, m, "sk-secret")
	assert.NotContains(t, m.View(), "sk-secret", "key input is masked")

	m, cmd := pressEnter(m)
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"sk-secret"}, builtWith)
	assert.False(t, m.needsCredentials())
	assert.Empty(t, handler.Inputs(), "entering a key never starts a turn")
	assert.Contains(t, m.View(), "API key accepted.")
}

func TestCredentialGate_EmptyKeyRejected(t *testing.T) {
	built := false
	m := newReadyModel(t, Options{Build: func(string) (TurnHandler, error) {
		built = true
		return &fakeHandler{}, nil
	}})

	m = typeText(t, m, "   ")
	m, _ = pressEnter(m)

	assert.False(t, built)
	assert.True(t, m.needsCredentials())
	assert.Contains(t, m.View(), "API key must not be empty")
}

func TestCredentialGate_BuildError(t *testing.T) {
	m := newReadyModel(t, Options{Build: func(string) (TurnHandler, error) {
		return nil, errors.New("unknown provider type: foo")
	}})

	m = typeText(t, m, "key")
	m, _ = pressEnter(m)

	assert.True(t, m.needsCredentials())
	assert.Contains(t, m.View(), "unknown provider type: foo")
}

func TestChat_TurnUpdatesSession(t *testing.T) {
	handler := &fakeHandler{answer: "The Gaming Laptop costs $999."}
	m := newReadyModel(t, Options{Handler: handler})
	require.False(t, m.needsCredentials())

	m = typeText(t, m, "How much is SKU123?")
	m, cmd := pressEnter(m)
	assert.True(t, m.pending)
	assert.Empty(t, m.textarea.Value())

	res := findTurnResult(t, cmd)
	assert.Equal(t, []string{"How much is SKU123?"}, handler.Inputs())

	m = update(t, m, res)
	assert.False(t, m.pending)
	assert.Len(t, m.Session().History, 2)
	assert.Contains(t, m.vp.Rendered(), "The Gaming Laptop costs $999.")
	assert.Contains(t, m.vp.Rendered(), "How much is SKU123?")
}

func TestChat_EnterIgnoredWhileTurnPending(t *testing.T) {
	handler := &fakeHandler{answer: "ok"}
	m := newReadyModel(t, Options{Handler: handler})

	m = typeText(t, m, "first")
	m, cmd := pressEnter(m)
	require.NotNil(t, cmd)
	require.True(t, m.pending)

	m = typeText(t, m, "second")
	m, cmd = pressEnter(m)
	assert.Nil(t, cmd)
	assert.Equal(t, "second", m.textarea.Value(), "input is kept for later")
	assert.True(t, m.pending)
}

func TestChat_EmptyInputIgnored(t *testing.T) {
	m := newReadyModel(t, Options{Handler: &fakeHandler{}})

	m = typeText(t, m, "   ")
	m, cmd := pressEnter(m)
	assert.Nil(t, cmd)
	assert.False(t, m.pending)
}

func TestChat_TurnErrorShowsLineAndKeepsSession(t *testing.T) {
	handler := &fakeHandler{err: errors.New("first llm pass: openai api error: 401")}
	m := newReadyModel(t, Options{Handler: handler})
	before := m.Session()

	m = typeText(t, m, "hello")
	m, cmd := pressEnter(m)
	m = update(t, m, findTurnResult(t, cmd))

	assert.False(t, m.pending)
	assert.Equal(t, before.ID, m.Session().ID)
	assert.Empty(t, m.Session().History)
	assert.Contains(t, m.View(), "Error: first llm pass: openai api error: 401")

	// сессия продолжает работать
	handler.err = nil
	handler.answer = "recovered"
	m = typeText(t, m, "again")
	m, cmd = pressEnter(m)
	m = update(t, m, findTurnResult(t, cmd))
	assert.NotContains(t, m.View(), "Error:")
	assert.Len(t, m.Session().History, 2)
}

func TestChat_ToolEventsUpdateStatus(t *testing.T) {
	emitter := events.NewChanEmitter(4)
	defer emitter.Close()

	m := newReadyModel(t, Options{Handler: &fakeHandler{answer: "ok"}, Events: emitter.Subscribe()})
	m = typeText(t, m, "q")
	m, _ = pressEnter(m)

	next, cmd := m.Update(tui.EventMsg(events.New(events.EventToolCall, events.ToolCallData{ToolName: "get_product"})))
	m = next.(MainModel)
	assert.NotNil(t, cmd, "keeps listening for events")
	assert.Equal(t, "using tool: get_product…", m.status.Status())
	assert.Contains(t, m.View(), "using tool: get_product…")

	m = update(t, m, tui.EventMsg(events.New(events.EventToolResult, events.ToolResultData{
		ToolName: "get_product",
		Duration: 12 * time.Millisecond,
	})))
	assert.Contains(t, m.vp.Rendered(), "get_product")
	assert.True(t, strings.Contains(m.vp.Rendered(), "ok (12ms)"))
}

func TestView_NotReady(t *testing.T) {
	m := NewModel(Options{Handler: &fakeHandler{}, Scheme: tui.DefaultColorScheme()})
	assert.Equal(t, "Initializing UI...", m.View())
}

func TestView_Header(t *testing.T) {
	m := newReadyModel(t, Options{
		Handler:   &fakeHandler{},
		ModelName: "gemini-flash",
		Endpoint:  "http://localhost:8080/mcp",
	})
	view := m.View()
	assert.Contains(t, view, "TechSupport AI")
	assert.Contains(t, view, "MODEL: gemini-flash")
	assert.Contains(t, view, "MCP: http://localhost:8080/mcp")
}
