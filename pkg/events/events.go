// Package events — порт между циклом диалога и UI.
//
// Orchestrator публикует события хода (модель думает, вызван инструмент,
// получен результат, готов ответ), UI подписывается и показывает статус
// вроде "using tool: get_product…". Библиотечный код не знает о конкретном UI.
//
//	emitter := events.NewChanEmitter(32)
//	orch, _ := agent.New(agent.Config{..., Emitter: emitter})
//
//	sub := emitter.Subscribe()
//	for event := range sub.Events() {
//	    switch data := event.Data.(type) {
//	    case events.ToolCallData:
//	        ui.setStatus("using tool: " + data.ToolName)
//	    case events.MessageData:
//	        ui.showMessage(data.Content)
//	    }
//	}
//
// Все реализации интерфейсов должны быть thread-safe.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события хода диалога.
type EventType string

const (
	// EventThinking отправляется в начале хода, до первого запроса к LLM.
	EventThinking EventType = "thinking"

	// EventToolCall отправляется перед вызовом инструмента через MCP bridge.
	EventToolCall EventType = "tool_call"

	// EventToolResult отправляется когда инструмент вернул текст.
	EventToolResult EventType = "tool_result"

	// EventError отправляется если ход завершился ошибкой.
	EventError EventType = "error"

	// EventDone отправляется с финальным ответом модели.
	EventDone EventType = "done"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс.
type EventData interface {
	eventData()
}

// ThinkingData содержит данные для EventThinking.
type ThinkingData struct {
	SessionID string
	Query     string
}

func (ThinkingData) eventData() {}

// ToolCallData содержит данные о вызове инструмента.
type ToolCallData struct {
	CallID   string
	ToolName string
	Args     string
}

func (ToolCallData) eventData() {}

// ToolResultData содержит результат выполнения инструмента.
type ToolResultData struct {
	CallID   string
	ToolName string
	Result   string
	Failed   bool // Результат является текстом ошибки bridge
	Duration time.Duration
}

func (ToolResultData) eventData() {}

// MessageData содержит финальный ответ для EventDone.
type MessageData struct {
	Content string
}

func (MessageData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	Err error
}

func (ErrorData) eventData() {}

// Event — одно событие хода.
//
// Соответствие типов:
//   - EventThinking: ThinkingData
//   - EventToolCall: ToolCallData
//   - EventToolResult: ToolResultData
//   - EventError: ErrorData
//   - EventDone: MessageData
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// New создаёт событие с текущим временем.
func New(t EventType, data EventData) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// Emitter — это Port для отправки событий.
type Emitter interface {
	// Emit отправляет событие.
	//
	// Если context отменён, событие отбрасывается.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	//
	// Канал закрывается при закрытии эмиттера.
	Events() <-chan Event

	// Close освобождает подписчика.
	Close()
}

// MultiEmitter рассылает событие всем эмиттерам по порядку.
// nil элементы пропускаются.
type MultiEmitter []Emitter

// Emit отправляет событие каждому эмиттеру.
func (m MultiEmitter) Emit(ctx context.Context, event Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(ctx, event)
		}
	}
}
