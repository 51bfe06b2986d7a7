// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Через BaseURL работает с Groq, OpenAI, Gemini (OpenAI-compatible endpoint),
// Zai и DeepSeek. Поддерживает Function Calling (tools).
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ilkoid/poncho-techsupport/pkg/config"
	"github.com/ilkoid/poncho-techsupport/pkg/llm"
	"github.com/ilkoid/poncho-techsupport/pkg/tools"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
type Client struct {
	api      *openai.Client
	model    string
	defaults llm.GenerateOptions
}

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// Пустой BaseURL означает api.openai.com; factory подставляет URL провайдера.
func NewClient(modelDef config.ModelDef) *Client {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: modelDef.ModelName,
		defaults: llm.GenerateOptions{
			Model:       modelDef.ModelName,
			Temperature: modelDef.Temperature,
			MaxTokens:   modelDef.MaxTokens,
		},
	}
}

// Generate выполняет запрос к API и возвращает ответ модели.
//
// opts:
//   - []tools.ToolDefinition — инструменты для Function Calling;
//     непустой список включает tool_choice="auto", пустой означает запрос без tools
//   - llm.GenerateOption — переопределение модели, temperature, max_tokens
//
// Ответ SDK сразу конвертируется в llm.Message: дальше по системе
// объекты SDK не передаются.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, opts ...any) (llm.Message, error) {
	startTime := time.Now()

	var toolDefs []tools.ToolDefinition
	for _, opt := range opts {
		switch v := opt.(type) {
		case []tools.ToolDefinition:
			toolDefs = v
		case llm.GenerateOption:
			// применяется ниже через ApplyOptions
		default:
			return llm.Message{}, fmt.Errorf("invalid generate option type: %T", opt)
		}
	}
	params := llm.ApplyOptions(c.defaults, opts...)

	utils.Debug("LLM request started",
		"model", params.Model,
		"messages_count", len(messages),
		"tools_count", len(toolDefs))

	openaiMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		openaiMsgs[i] = mapToOpenAI(m)
	}

	req := openai.ChatCompletionRequest{
		Model:    params.Model,
		Messages: openaiMsgs,
	}
	if params.Temperature > 0 {
		req.Temperature = float32(params.Temperature)
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = params.MaxTokens
	}

	if len(toolDefs) > 0 {
		req.Tools = convertToolsToOpenAI(toolDefs)
		// LLM сама решает, вызывать ли инструменты
		req.ToolChoice = "auto"
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", params.Model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return llm.Message{}, fmt.Errorf("no choices in response")
	}

	result := mapFromOpenAI(resp.Choices[0].Message)

	utils.Info("LLM response received",
		"model", params.Model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

// mapToOpenAI конвертирует наше внутреннее сообщение в формат SDK.
func mapToOpenAI(m llm.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:    string(m.Role),
		Content: m.Content,
	}

	switch m.Role {
	case llm.RoleAssistant:
		if len(m.ToolCalls) > 0 {
			msg.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				msg.ToolCalls[i] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Args,
					},
				}
			}
		}
	case llm.RoleTool:
		msg.ToolCallID = m.ToolCallID
		msg.Name = m.Name
		// content у tool сообщения обязателен, а в SDK он omitempty
		if strings.TrimSpace(msg.Content) == "" {
			msg.Content = llm.EmptyToolContent
		}
	}

	return msg
}

// mapFromOpenAI строит llm.Message из ответа SDK.
func mapFromOpenAI(choice openai.ChatCompletionMessage) llm.Message {
	role := llm.Role(choice.Role)
	if role == "" {
		role = llm.RoleAssistant
	}

	result := llm.Message{
		Role:    role,
		Content: choice.Content,
	}

	if len(choice.ToolCalls) > 0 {
		result.ToolCalls = make([]llm.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			result.ToolCalls[i] = llm.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: tc.Function.Arguments,
			}
		}
	}

	return result
}

// convertToolsToOpenAI конвертирует определения инструментов
// в формат OpenAI Function Calling.
//
// ToolDefinition.Parameters уже является JSON Schema объектом
// и передаётся в SDK без изменений.
func convertToolsToOpenAI(defs []tools.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(defs))

	for i, def := range defs {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  map[string]any(def.Parameters),
			},
		}
	}

	return result
}
