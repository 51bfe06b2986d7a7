package debug

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ilkoid/poncho-techsupport/pkg/events"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// truncatedSuffix добавляется к обрезанному результату инструмента.
const truncatedSuffix = "... (truncated)"

// RecorderConfig конфигурация для создания Recorder.
type RecorderConfig struct {
	// LogsDir — директория для JSON трейсов, создаётся при необходимости
	LogsDir string

	// IncludeToolArgs — включать аргументы инструментов в трейс
	IncludeToolArgs bool

	// IncludeToolResults — включать результаты инструментов в трейс
	IncludeToolResults bool

	// MaxResultSize — максимальный размер результата, 0 = без ограничений
	MaxResultSize int
}

// Recorder собирает трейс хода и сохраняет его при EventDone или EventError.
//
// Реализует events.Emitter: подключается к оркестратору рядом с эмиттером UI.
// Вызовы LLM попадают в трейс через WrapProvider.
// Ходы одного оркестратора не пересекаются, поэтому трейс один.
type Recorder struct {
	mu sync.Mutex

	config RecorderConfig
	now    func() time.Time

	current  *TurnLog
	started  time.Time
	visited  map[string]struct{}
	lastPath string
}

// NewRecorder создает Recorder. Если LogsDir не существует, пытается создать её.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	if cfg.LogsDir != "" {
		if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
	}
	return &Recorder{config: cfg, now: time.Now}, nil
}

// Emit обновляет трейс по событию хода.
//
// Контекст не проверяется: событие об ошибке из-за отмены тоже пишется.
func (r *Recorder) Emit(_ context.Context, event events.Event) {
	switch data := event.Data.(type) {
	case events.ThinkingData:
		r.start(data)
	case events.ToolResultData:
		r.recordTool(data)
	case events.ToolCallData:
		r.recordToolArgs(data)
	case events.MessageData:
		r.finish(data.Content, "")
	case events.ErrorData:
		msg := "unknown error"
		if data.Err != nil {
			msg = data.Err.Error()
		}
		r.finish("", msg)
	}
}

// LastPath возвращает путь к последнему сохранённому трейсу.
func (r *Recorder) LastPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPath
}

func (r *Recorder) start(data events.ThinkingData) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.started = r.now()
	r.visited = make(map[string]struct{})
	r.current = &TurnLog{
		RunID:     fmt.Sprintf("turn_%s", r.started.Format("20060102_150405.000")),
		SessionID: data.SessionID,
		Timestamp: r.started,
		UserQuery: data.Query,
		LLMCalls:  []LLMCall{},
	}
}

// recordLLMCall добавляет проход модели в текущий трейс.
func (r *Recorder) recordLLMCall(call LLMCall) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return
	}
	call.Pass = len(r.current.LLMCalls) + 1
	r.current.LLMCalls = append(r.current.LLMCalls, call)
	if call.Error != "" {
		r.current.Summary.Errors = append(r.current.Summary.Errors, "LLM error: "+call.Error)
	}
}

func (r *Recorder) recordToolArgs(data events.ToolCallData) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return
	}
	exec := ToolExecution{CallID: data.CallID, Name: data.ToolName}
	if r.config.IncludeToolArgs {
		exec.Args = data.Args
	}
	r.current.Tools = append(r.current.Tools, exec)
}

func (r *Recorder) recordTool(data events.ToolResultData) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return
	}

	exec := r.findTool(data.CallID, data.ToolName)
	exec.Duration = data.Duration.Milliseconds()
	exec.Success = !data.Failed
	if r.config.IncludeToolResults {
		exec.Result = data.Result
		if r.config.MaxResultSize > 0 && len(data.Result) > r.config.MaxResultSize {
			exec.Result = data.Result[:r.config.MaxResultSize] + truncatedSuffix
			exec.ResultTruncated = true
		}
	}

	r.visited[data.ToolName] = struct{}{}
	if data.Failed {
		r.current.Summary.Errors = append(r.current.Summary.Errors, fmt.Sprintf("Tool %s: %s", data.ToolName, data.Result))
	}
}

// findTool возвращает запись о вызове, созданную по EventToolCall.
func (r *Recorder) findTool(callID, name string) *ToolExecution {
	for i := len(r.current.Tools) - 1; i >= 0; i-- {
		if r.current.Tools[i].CallID == callID {
			return &r.current.Tools[i]
		}
	}
	r.current.Tools = append(r.current.Tools, ToolExecution{CallID: callID, Name: name})
	return &r.current.Tools[len(r.current.Tools)-1]
}

func (r *Recorder) finish(answer, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return
	}

	turn := r.current
	r.current = nil

	turn.FinalAnswer = answer
	turn.Error = errMsg
	turn.Duration = r.now().Sub(r.started).Milliseconds()
	turn.Summary = buildSummary(turn, r.visited)

	path, err := r.save(turn)
	if err != nil {
		utils.Error("Failed to save turn trace", "run_id", turn.RunID, "error", err)
		return
	}
	r.lastPath = path
	utils.Debug("Turn trace saved", "path", path)
}

func buildSummary(turn *TurnLog, visited map[string]struct{}) Summary {
	summary := Summary{Errors: turn.Summary.Errors}

	for _, call := range turn.LLMCalls {
		summary.TotalLLMCalls++
		summary.TotalLLMDuration += call.Duration
	}
	for _, tool := range turn.Tools {
		summary.TotalToolsExecuted++
		summary.TotalToolDuration += tool.Duration
		if !tool.Success {
			summary.FailedTools++
		}
	}
	for name := range visited {
		summary.VisitedTools = append(summary.VisitedTools, name)
	}
	sort.Strings(summary.VisitedTools)

	return summary
}

func (r *Recorder) save(turn *TurnLog) (string, error) {
	data, err := json.MarshalIndent(turn, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal turn trace: %w", err)
	}

	path := filepath.Join(r.config.LogsDir, turn.RunID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write turn trace: %w", err)
	}
	return path, nil
}

var _ events.Emitter = (*Recorder)(nil)
