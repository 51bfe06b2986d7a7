package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// clientIdentity — то, что клиент сообщает серверу в initialize.
type clientIdentity struct {
	ProtocolVersion string
	Name            string
	Version         string
}

// initialize выполняет рукопожатие и возвращает ответ сервера и id сессии.
//
// Пустой id сессии означает stateless сервер. После успешного initialize
// отправляется notifications/initialized; его ошибка только логируется.
func initialize(ctx context.Context, t *transport, id clientIdentity) (*mcpgo.InitializeResult, string, error) {
	params := mcpgo.InitializeParams{
		ProtocolVersion: id.ProtocolVersion,
		ClientInfo:      mcpgo.Implementation{Name: id.Name, Version: id.Version},
	}

	resp, headers, err := t.call(ctx, rpcRequest{
		JSONRPC: mcpgo.JSONRPC_VERSION,
		ID:      "1",
		Method:  string(mcpgo.MethodInitialize),
		Params:  params,
	}, "")
	if err != nil {
		return nil, "", fmt.Errorf("initialize: %w", err)
	}
	if resp.Error != nil {
		return nil, "", fmt.Errorf("initialize: %w", resp.Error)
	}

	var result mcpgo.InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, "", fmt.Errorf("initialize: decode result: %w", err)
	}

	sessionID := headers.Get(HeaderSessionID)

	if err := t.notify(ctx, "notifications/initialized", sessionID); err != nil {
		utils.Warn("MCP initialized notification failed", "error", err)
	}

	return &result, sessionID, nil
}
