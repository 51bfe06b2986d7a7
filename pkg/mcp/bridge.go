package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/ilkoid/poncho-techsupport/pkg/config"
	"github.com/ilkoid/poncho-techsupport/pkg/llm"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// Bridge вызывает инструменты удалённого endpoint через JSON-RPC tools/call.
//
// Invoke никогда не возвращает ошибку: любая неудача превращается в текст
// "Error calling tool: <причина>", который модель получает как результат.
type Bridge struct {
	transport *transport
	url       string
	affinity  bool
	identity  clientIdentity

	mu        sync.Mutex
	sessionID string
}

// NewBridge создаёт bridge по конфигурации MCP.
func NewBridge(cfg config.MCPConfig, opts ...Option) *Bridge {
	cfg = cfg.GetDefaults()
	o := applyOptions(opts)

	return &Bridge{
		transport: newTransport(cfg.URL, cfg.TimeoutDuration(), cfg.RateLimit, cfg.Burst, o.httpClient),
		url:       cfg.URL,
		affinity:  cfg.SessionAffinity,
		identity: clientIdentity{
			ProtocolVersion: cfg.ProtocolVersion,
			Name:            cfg.ClientName,
			Version:         cfg.ClientVersion,
		},
	}
}

// URL возвращает адрес endpoint.
func (b *Bridge) URL() string {
	return b.url
}

// Invoke вызывает инструмент toolName с аргументами и возвращает плоский текст.
//
// Текстовые части result.content склеиваются через "\n". Пустой content и
// ответ неожиданной формы дают llm.EmptyToolContent. Повторов нет.
func (b *Bridge) Invoke(ctx context.Context, toolName string, arguments map[string]any) (out string) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			utils.Error("MCP tool call panicked", "tool", toolName, "panic", fmt.Sprint(r))
			out = ErrorPrefix + fmt.Sprint(r)
		}
	}()

	if arguments == nil {
		arguments = map[string]any{}
	}

	sessionID := b.session(ctx)

	resp, _, err := b.transport.call(ctx, rpcRequest{
		JSONRPC: mcpgo.JSONRPC_VERSION,
		ID:      "1",
		Method:  string(mcpgo.MethodToolsCall),
		Params:  callToolParams{Name: toolName, Arguments: arguments},
	}, sessionID)
	if err != nil {
		if errors.Is(err, errUnexpectedShape) {
			utils.Warn("MCP tool call returned unexpected response shape",
				"tool", toolName,
				"error", err,
				"duration_ms", time.Since(start).Milliseconds())
			return llm.EmptyToolContent
		}

		// Сервер забыл сессию: следующий вызов выполнит initialize заново
		var statusErr *HTTPStatusError
		if sessionID != "" && errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusBadRequest) {
			b.resetSession(sessionID)
		}

		utils.Error("MCP tool call failed",
			"tool", toolName,
			"url", b.url,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return ErrorPrefix + err.Error()
	}

	if resp.Error != nil {
		utils.Warn("MCP tool returned json-rpc error",
			"tool", toolName,
			"code", resp.Error.Code,
			"error", resp.Error.Message,
			"duration_ms", time.Since(start).Milliseconds())
		return ErrorPrefix + resp.Error.Error()
	}

	text, isError, ok := flattenContent(resp.Result)
	if !ok {
		utils.Warn("MCP tool result has unexpected shape", "tool", toolName, "result", string(resp.Result))
	}
	if isError {
		utils.Warn("MCP tool reported isError", "tool", toolName)
	}
	if strings.TrimSpace(text) == "" {
		text = llm.EmptyToolContent
	}

	utils.Info("MCP tool call finished",
		"tool", toolName,
		"bytes", len(text),
		"duration_ms", time.Since(start).Milliseconds())

	return text
}

// session возвращает id сессии, при необходимости выполняя initialize.
//
// Ошибка initialize не прерывает вызов: запрос уйдёт без сессии,
// а следующий Invoke попробует снова.
func (b *Bridge) session(ctx context.Context) string {
	if !b.affinity {
		return ""
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sessionID != "" {
		return b.sessionID
	}

	_, sessionID, err := initialize(ctx, b.transport, b.identity)
	if err != nil {
		utils.Warn("MCP session initialize failed, calling without session", "url", b.url, "error", err)
		return ""
	}
	if sessionID != "" {
		utils.Debug("MCP session established", "url", b.url, "session_id", sessionID)
	}
	b.sessionID = sessionID
	return sessionID
}

func (b *Bridge) resetSession(stale string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sessionID == stale {
		b.sessionID = ""
	}
}

// SessionID возвращает текущий id сессии (пусто, если сессии нет).
func (b *Bridge) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionID
}

// flattenContent склеивает text из result.content.
//
// ok == false, если result не объект или content не массив: тогда текст пустой.
// Элементы без поля text (картинки, ресурсы) пропускаются.
func flattenContent(result json.RawMessage) (text string, isError bool, ok bool) {
	trimmed := strings.TrimSpace(string(result))
	if trimmed == "" || trimmed == "null" {
		return "", false, true
	}

	var obj map[string]any
	if err := json.Unmarshal(result, &obj); err != nil {
		return "", false, false
	}

	isError, _ = obj["isError"].(bool)

	raw, exists := obj["content"]
	if !exists || raw == nil {
		return "", isError, true
	}
	items, isArray := raw.([]any)
	if !isArray {
		return "", isError, false
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		m, isObject := item.(map[string]any)
		if !isObject {
			continue
		}
		if _, hasText := m["text"]; !hasText {
			continue
		}
		parts = append(parts, mcpgo.ExtractString(m, "text"))
	}

	return strings.Join(parts, "\n"), isError, true
}
