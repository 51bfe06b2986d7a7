package debug

import (
	"context"
	"time"

	"github.com/ilkoid/poncho-techsupport/pkg/llm"
	"github.com/ilkoid/poncho-techsupport/pkg/tools"
)

// recordingProvider пишет каждый вызов Generate в трейс Recorder.
type recordingProvider struct {
	next     llm.Provider
	recorder *Recorder
}

// WrapProvider возвращает провайдера, который записывает проходы модели.
func (r *Recorder) WrapProvider(next llm.Provider) llm.Provider {
	return &recordingProvider{next: next, recorder: r}
}

func (p *recordingProvider) Generate(ctx context.Context, messages []llm.Message, opts ...any) (llm.Message, error) {
	start := time.Now()
	resp, err := p.next.Generate(ctx, messages, opts...)

	call := LLMCall{
		MessagesCount: len(messages),
		Tools:         toolNames(opts),
		Duration:      time.Since(start).Milliseconds(),
	}
	if err != nil {
		call.Error = err.Error()
	} else {
		call.Content = resp.Content
		for _, tc := range resp.ToolCalls {
			call.ToolCalls = append(call.ToolCalls, ToolCallInfo{ID: tc.ID, Name: tc.Name, Args: tc.Args})
		}
	}
	p.recorder.recordLLMCall(call)

	return resp, err
}

func toolNames(opts []any) []string {
	var names []string
	for _, opt := range opts {
		if defs, ok := opt.([]tools.ToolDefinition); ok {
			for _, def := range defs {
				names = append(names, def.Name)
			}
		}
	}
	return names
}
