// Package agent реализует ход диалога ассистента техподдержки.
//
// Один ход: первый запрос к LLM с инструментами → вызовы инструментов
// через реестр (MCP bridge) → второй запрос к LLM без инструментов.
// История живёт в явном значении Session, которое ход принимает и возвращает.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/poncho-techsupport/pkg/events"
	"github.com/ilkoid/poncho-techsupport/pkg/llm"
	"github.com/ilkoid/poncho-techsupport/pkg/tools"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// DefaultMaxToolRounds — раундов инструментов за ход по умолчанию.
const DefaultMaxToolRounds = 1

// toolErrorPrefix совпадает с префиксом ошибок MCP bridge.
const toolErrorPrefix = "Error calling tool: "

// CatalogRefresher обновляет реестр активным каталогом инструментов.
// Реализуется mcp.Toolset.
type CatalogRefresher interface {
	Refresh(ctx context.Context, reg *tools.Registry) error
}

// Orchestrator выполняет ходы диалога.
//
// Thread-safe: одновременно выполняется не больше одного хода.
type Orchestrator struct {
	llm          llm.Provider
	registry     *tools.Registry
	catalog      CatalogRefresher
	emitter      events.Emitter
	systemPrompt string
	maxRounds    int
	turnTimeout  time.Duration

	mu sync.Mutex
}

// Config конфигурация для создания Orchestrator.
type Config struct {
	// LLM — провайдер языковой модели (обязательный)
	LLM llm.Provider

	// Registry — реестр инструментов (обязательный)
	Registry *tools.Registry

	// Catalog — обновление реестра в начале хода (опционально)
	Catalog CatalogRefresher

	// Emitter — события хода для UI (опционально)
	Emitter events.Emitter

	// SystemPrompt добавляется перед историей в каждый запрос и в историю не попадает
	SystemPrompt string

	// MaxToolRounds — сколько раундов инструментов разрешено за ход.
	// Последний запрос к LLM всегда идёт без инструментов.
	MaxToolRounds int

	// TurnTimeout ограничивает весь ход (0 = без ограничения)
	TurnTimeout time.Duration
}

// New создаёт новый Orchestrator с заданной конфигурацией.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("cfg.LLM is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("cfg.Registry is required")
	}
	if cfg.MaxToolRounds < 0 {
		return nil, fmt.Errorf("cfg.MaxToolRounds must not be negative")
	}
	if cfg.MaxToolRounds == 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}

	return &Orchestrator{
		llm:          cfg.LLM,
		registry:     cfg.Registry,
		catalog:      cfg.Catalog,
		emitter:      cfg.Emitter,
		systemPrompt: cfg.SystemPrompt,
		maxRounds:    cfg.MaxToolRounds,
		turnTimeout:  cfg.TurnTimeout,
	}, nil
}

// HandleTurn обрабатывает одно сообщение пользователя.
//
// Возвращает обновлённую сессию и финальный ответ модели. При ошибке
// возвращается исходная сессия без изменений: история либо пополняется
// целым ходом, либо не меняется вовсе.
func (o *Orchestrator) HandleTurn(ctx context.Context, session Session, userText string) (Session, string, error) {
	text := strings.TrimSpace(userText)
	if text == "" {
		return session, "", ErrEmptyInput
	}

	if !o.mu.TryLock() {
		return session, "", ErrTurnInProgress
	}
	defer o.mu.Unlock()

	if o.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.turnTimeout)
		defer cancel()
	}

	start := time.Now()
	utils.Info("Turn started", "session_id", session.ID, "history_len", session.Len())
	o.emit(ctx, events.EventThinking, events.ThinkingData{SessionID: session.ID, Query: text})

	next, answer, err := o.runTurn(ctx, session, text)
	if err != nil {
		utils.Error("Turn failed",
			"session_id", session.ID,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		o.emit(ctx, events.EventError, events.ErrorData{Err: err})
		return session, "", err
	}

	utils.Info("Turn completed",
		"session_id", session.ID,
		"history_len", next.Len(),
		"answer_length", len(answer),
		"duration_ms", time.Since(start).Milliseconds())
	o.emit(ctx, events.EventDone, events.MessageData{Content: answer})

	return next, answer, nil
}

func (o *Orchestrator) runTurn(ctx context.Context, session Session, text string) (Session, string, error) {
	if o.catalog != nil {
		if err := o.catalog.Refresh(ctx, o.registry); err != nil {
			utils.Warn("Tool catalog refresh failed, keeping previous tools", "error", err)
		}
	}

	working := session.Clone()
	working.History = append(working.History, llm.Message{Role: llm.RoleUser, Content: text})

	defs := o.registry.GetDefinitions()

	// Первый проход: с инструментами, tool_choice=auto
	resp, err := o.generate(ctx, working.History, defs)
	if err != nil {
		return session, "", fmt.Errorf("first llm pass: %w", err)
	}

	for round := 1; resp.HasToolCalls(); round++ {
		if round > o.maxRounds {
			// Запрос без инструментов всё равно вернул вызовы: отвечаем текстом
			utils.Warn("Ignoring tool calls after the last tool round", "tool_calls_count", len(resp.ToolCalls))
			break
		}

		assistant, toolMsgs, err := o.runTools(ctx, resp)
		if err != nil {
			return session, "", err
		}
		working.History = append(working.History, assistant)
		working.History = append(working.History, toolMsgs...)

		var passDefs []tools.ToolDefinition
		if round < o.maxRounds {
			passDefs = defs
		}
		resp, err = o.generate(ctx, working.History, passDefs)
		if err != nil {
			return session, "", fmt.Errorf("llm pass after tool round %d: %w", round, err)
		}
	}

	working.History = append(working.History, llm.Message{
		Role:    llm.RoleAssistant,
		Content: resp.Content,
	})
	return working, resp.Content, nil
}

// generate собирает запрос: системный промпт + нормализованная история.
// Пустой defs означает запрос без инструментов.
func (o *Orchestrator) generate(ctx context.Context, history []llm.Message, defs []tools.ToolDefinition) (llm.Message, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	if o.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: o.systemPrompt})
	}
	messages = append(messages, FormatHistory(history)...)

	if len(defs) > 0 {
		return o.llm.Generate(ctx, messages, defs)
	}
	return o.llm.Generate(ctx, messages)
}

// runTools выполняет вызовы инструментов из ответа модели.
//
// Сначала проверяются аргументы всех вызовов: если хоть один не JSON объект,
// ни один инструмент не вызывается. Затем вызовы выполняются по порядку.
// Возвращает одно assistant сообщение со всеми вызовами и tool сообщения.
func (o *Orchestrator) runTools(ctx context.Context, resp llm.Message) (llm.Message, []llm.Message, error) {
	calls := make([]llm.ToolCall, len(resp.ToolCalls))
	args := make([]string, len(resp.ToolCalls))

	for i, tc := range resp.ToolCalls {
		cleaned, err := normalizeArguments(tc.Args)
		if err != nil {
			return llm.Message{}, nil, fmt.Errorf("%w: tool '%s': %v", ErrMalformedToolArguments, tc.Name, err)
		}
		if tc.ID == "" {
			tc.ID = "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		}
		calls[i] = tc
		args[i] = cleaned
	}

	assistant := llm.Message{
		Role:      llm.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: calls,
	}

	toolMsgs := make([]llm.Message, 0, len(calls))
	for i, tc := range calls {
		toolMsgs = append(toolMsgs, llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: tc.ID,
			Name:       tc.Name,
			Content:    o.executeTool(ctx, tc, args[i]),
		})
	}

	return assistant, toolMsgs, nil
}

// executeTool вызывает инструмент из реестра. Ошибки становятся текстом.
func (o *Orchestrator) executeTool(ctx context.Context, tc llm.ToolCall, argsJSON string) string {
	start := time.Now()
	o.emit(ctx, events.EventToolCall, events.ToolCallData{CallID: tc.ID, ToolName: tc.Name, Args: argsJSON})

	var result string
	tool, err := o.registry.Get(tc.Name)
	if err == nil {
		result, err = tool.Execute(ctx, argsJSON)
	}
	if err != nil {
		utils.Warn("Tool call failed", "tool", tc.Name, "error", err)
		result = toolErrorPrefix + err.Error()
	}

	duration := time.Since(start)
	utils.Debug("Tool call finished", "tool", tc.Name, "duration_ms", duration.Milliseconds(), "result_length", len(result))
	o.emit(ctx, events.EventToolResult, events.ToolResultData{
		CallID:   tc.ID,
		ToolName: tc.Name,
		Result:   result,
		Failed:   strings.HasPrefix(result, toolErrorPrefix),
		Duration: duration,
	})

	return result
}

// normalizeArguments снимает markdown-обёртку и проверяет, что аргументы являются JSON объектом.
// Пустые аргументы означают {}.
func normalizeArguments(raw string) (string, error) {
	cleaned := utils.CleanJsonBlock(raw)
	if cleaned == "" {
		return "{}", nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return "", fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if obj == nil {
		return "{}", nil
	}
	return cleaned, nil
}

func (o *Orchestrator) emit(ctx context.Context, t events.EventType, data events.EventData) {
	if o.emitter == nil {
		return
	}
	o.emitter.Emit(ctx, events.New(t, data))
}
