// Базовые типы - определяем универсальный язык общения с моделями
package llm

// Role — роль автора сообщения в истории диалога.
type Role string

// Константы для удобства
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message — одно сообщение истории.
//
// Единый вариант для всех ролей: адаптер провайдера строит Message сразу
// после ответа API, поэтому в истории никогда не лежат объекты SDK.
type Message struct {
	Role    Role
	Content string

	// ToolCalls заполнен у assistant сообщения, если модель запросила инструменты
	ToolCalls []ToolCall

	// ToolCallID и Name заполнены только у сообщений с ролью tool
	ToolCallID string
	Name       string
}

// EmptyToolContent подставляется вместо пустого результата инструмента:
// OpenAI-совместимые API отклоняют tool сообщение без content.
const EmptyToolContent = "No data found."

// ToolCall — запрос модели на вызов инструмента.
type ToolCall struct {
	ID   string
	Name string
	Args string // Сырой JSON аргументов, как его прислала модель
}

// HasToolCalls сообщает, запросила ли модель вызов инструментов.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// Clone возвращает копию сообщения без общих слайсов.
func (m Message) Clone() Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	return out
}
