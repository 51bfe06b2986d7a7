// Package mcp — клиентская сторона удалённого MCP endpoint магазина.
//
// Bridge превращает вызов функции от LLM в JSON-RPC запрос tools/call
// и сворачивает ответ в плоский текст. Discover получает каталог
// инструментов через initialize + tools/list. Toolset решает, какой
// каталог (статический или обнаруженный) видит модель.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultProtocolVersion — версия протокола, которую клиент отправляет в initialize.
const DefaultProtocolVersion = "2024-11-05"

// HeaderSessionID — заголовок, в котором сервер выдаёт идентификатор сессии.
const HeaderSessionID = "Mcp-Session-Id"

// ErrorPrefix — префикс текста, который возвращается модели вместо результата.
const ErrorPrefix = "Error calling tool: "

// errUnexpectedShape — ответ является валидным JSON, но не JSON-RPC сообщением.
var errUnexpectedShape = errors.New("unexpected json-rpc response shape")

// rpcRequest — JSON-RPC 2.0 запрос (или уведомление, если ID пустой).
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse — JSON-RPC 2.0 ответ. ID бывает строкой или числом.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error возвращает только message: именно его увидит модель.
func (e *rpcError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("json-rpc error %d", e.Code)
	}
	return e.Message
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type listToolsParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// HTTPStatusError возвращается, если endpoint ответил не-2xx статусом.
type HTTPStatusError struct {
	Method     string // JSON-RPC метод
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("mcp %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}
