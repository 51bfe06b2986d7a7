// Package ui реализует Bubble Tea TUI ассистента техподдержки.
//
// Модель владеет Session между ходами: передаёт её в HandleTurn
// и сохраняет возвращённую. Пока ход идёт, новый ввод не принимается.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-techsupport/internal/agent"
	"github.com/ilkoid/poncho-techsupport/pkg/events"
	"github.com/ilkoid/poncho-techsupport/pkg/tui"
	"github.com/ilkoid/poncho-techsupport/pkg/tui/primitives"
)

// TurnHandler выполняет один ход диалога. Реализуется agent.Orchestrator.
type TurnHandler interface {
	HandleTurn(ctx context.Context, session agent.Session, userText string) (agent.Session, string, error)
}

// HandlerBuilder строит TurnHandler из введённого пользователем API ключа.
type HandlerBuilder func(apiKey string) (TurnHandler, error)

// Options параметры UI.
type Options struct {
	Title     string
	ModelName string
	Endpoint  string

	// Handler — готовый обработчик. nil означает, что ключ не настроен
	// и UI стартует с экрана ввода ключа.
	Handler TurnHandler

	// Build вызывается после ввода ключа
	Build HandlerBuilder

	// Events — события хода (опционально)
	Events events.Subscriber

	Scheme tui.ColorScheme

	// Context — родительский контекст ходов
	Context context.Context
}

// turnResultMsg — результат хода, прилетает асинхронно из tea.Cmd.
type turnResultMsg struct {
	session agent.Session
	answer  string
	err     error
}

// MainModel представляет главную модель UI (Bubble Tea Model).
//
// viewport и статус-бар хранятся указателями, поэтому копирование
// модели в Update их не дублирует.
type MainModel struct {
	title     string
	modelName string
	endpoint  string

	ctx      context.Context
	handler  TurnHandler
	build    HandlerBuilder
	eventSub events.Subscriber
	keys     tui.KeyMap
	styles   styles

	keyInput textinput.Model
	textarea textarea.Model
	vp       *primitives.ViewportManager
	status   *primitives.StatusBarManager

	session agent.Session
	pending bool
	errLine string

	width int
	ready bool
}

// NewModel создает начальное состояние UI.
func NewModel(opts Options) MainModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ki := textinput.New()
	ki.Placeholder = "paste your API key"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.Prompt = "key> "
	ki.CharLimit = 256

	ta := textarea.New()
	ta.Placeholder = "Ask about products, customers or orders..."
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	st := newStyles(opts.Scheme)
	statusCfg := primitives.DefaultStatusBarConfig()
	statusCfg.SpinnerColor = opts.Scheme.Assistant
	statusCfg.BackgroundColor = opts.Scheme.HeaderBackground
	statusCfg.TextColor = opts.Scheme.HeaderText

	m := MainModel{
		title:     opts.Title,
		modelName: opts.ModelName,
		endpoint:  opts.Endpoint,
		ctx:       ctx,
		handler:   opts.Handler,
		build:     opts.Build,
		eventSub:  opts.Events,
		keys:      tui.DefaultKeyMap(),
		styles:    st,
		keyInput:  ki,
		textarea:  ta,
		vp:        primitives.NewViewportManager(),
		status:    primitives.NewStatusBarManager(statusCfg),
		session:   agent.NewSession(),
	}

	if m.needsCredentials() {
		m.keyInput.Focus()
	} else {
		m.textarea.Focus()
	}
	m.vp.Append(st.system.Render(m.title + " ready. Ask a question to start."))
	return m
}

// needsCredentials — чат недоступен, пока не введён ключ.
func (m MainModel) needsCredentials() bool {
	return m.handler == nil
}

// Session возвращает текущую сессию.
func (m MainModel) Session() agent.Session {
	return m.session
}

// Init запускается один раз при старте Bubble Tea программы.
func (m MainModel) Init() tea.Cmd {
	blink := textarea.Blink
	if m.needsCredentials() {
		blink = textinput.Blink
	}
	return tea.Batch(
		blink,
		tui.ReceiveEventCmd(m.eventSub, tui.ToEventMsg),
	)
}
