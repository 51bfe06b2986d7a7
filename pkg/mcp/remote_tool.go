package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilkoid/poncho-techsupport/pkg/tools"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// Invoker — то, что умеет вызвать удалённый инструмент. Реализуется Bridge.
type Invoker interface {
	Invoke(ctx context.Context, toolName string, arguments map[string]any) string
}

// RemoteTool — инструмент реестра, выполнение которого уходит в Bridge.
type RemoteTool struct {
	def     tools.ToolDefinition
	invoker Invoker
}

// NewRemoteTool создаёт инструмент из определения.
func NewRemoteTool(def tools.ToolDefinition, invoker Invoker) *RemoteTool {
	return &RemoteTool{def: def, invoker: invoker}
}

// Definition возвращает описание инструмента для LLM.
func (t *RemoteTool) Definition() tools.ToolDefinition {
	return t.def
}

// Execute разбирает аргументы модели и вызывает инструмент через Bridge.
//
// Ошибка возвращается только для аргументов, которые не являются JSON объектом.
// Ошибки endpoint приходят текстом от Bridge.
func (t *RemoteTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	args, err := DecodeArguments(argsJSON)
	if err != nil {
		return "", fmt.Errorf("tool '%s': %w", t.def.Name, err)
	}
	return t.invoker.Invoke(ctx, t.def.Name, args), nil
}

// DecodeArguments разбирает аргументы вызова инструмента.
//
// Markdown-обёртка снимается, пустая строка означает {}.
// Всё, что не является JSON объектом, считается ошибкой.
func DecodeArguments(argsJSON string) (map[string]any, error) {
	cleaned := utils.CleanJsonBlock(argsJSON)
	if cleaned == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(cleaned), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		// "null"
		return map[string]any{}, nil
	}
	return args, nil
}

var _ tools.Tool = (*RemoteTool)(nil)
