// Package debug записывает трейс каждого хода диалога в JSON файл.
//
// Трейс собирается из событий оркестратора и вызовов LLM провайдера:
// сколько было проходов, какие инструменты вызывались, сколько длился
// каждый шаг и чем ход закончился.
package debug

import "time"

// TurnLog — трейс одного хода.
type TurnLog struct {
	// RunID — идентификатор записи (используется в имени файла)
	RunID string `json:"run_id"`

	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	UserQuery string    `json:"user_query"`

	// Duration — длительность хода в миллисекундах
	Duration int64 `json:"duration_ms"`

	LLMCalls []LLMCall       `json:"llm_calls"`
	Tools    []ToolExecution `json:"tools_executed,omitempty"`
	Summary  Summary         `json:"summary"`

	FinalAnswer string `json:"final_answer,omitempty"`
	Error       string `json:"error,omitempty"`
}

// LLMCall — один проход модели.
type LLMCall struct {
	// Pass — номер прохода в ходе, начиная с 1
	Pass int `json:"pass"`

	MessagesCount int      `json:"messages_count"`
	Tools         []string `json:"tools,omitempty"` // пусто = запрос без инструментов

	Content   string         `json:"content,omitempty"`
	ToolCalls []ToolCallInfo `json:"tool_calls,omitempty"`

	Duration int64  `json:"duration_ms"`
	Error    string `json:"error,omitempty"`
}

// ToolCallInfo описывает вызов инструмента, запрошенный моделью.
type ToolCallInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"`
}

// ToolExecution описывает выполнение одного инструмента через bridge.
type ToolExecution struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`

	// Args и Result пишутся только если это включено в RecorderConfig
	Args            string `json:"args,omitempty"`
	Result          string `json:"result,omitempty"`
	ResultTruncated bool   `json:"result_truncated,omitempty"`

	Duration int64 `json:"duration_ms"`
	Success  bool  `json:"success"`
}

// Summary — агрегированная статистика хода.
type Summary struct {
	TotalLLMCalls      int      `json:"total_llm_calls"`
	TotalToolsExecuted int      `json:"total_tools_executed"`
	FailedTools        int      `json:"failed_tools,omitempty"`
	TotalLLMDuration   int64    `json:"total_llm_duration_ms"`
	TotalToolDuration  int64    `json:"total_tool_duration_ms"`
	VisitedTools       []string `json:"visited_tools,omitempty"`
	Errors             []string `json:"errors,omitempty"`
}
