package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/ilkoid/poncho-techsupport/pkg/config"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// maxListPages ограничивает пагинацию tools/list.
const maxListPages = 20

// Discovery — результат опроса endpoint.
type Discovery struct {
	Server    mcpgo.InitializeResult
	SessionID string
	Tools     []mcpgo.Tool
}

// Discover выполняет initialize, запоминает Mcp-Session-Id и запрашивает tools/list.
//
// Схема аргументов каждого инструмента сохраняется как есть в RawInputSchema.
func Discover(ctx context.Context, cfg config.MCPConfig, opts ...Option) (*Discovery, error) {
	cfg = cfg.GetDefaults()
	o := applyOptions(opts)
	t := newTransport(cfg.URL, cfg.TimeoutDuration(), cfg.RateLimit, cfg.Burst, o.httpClient)

	server, sessionID, err := initialize(ctx, t, clientIdentity{
		ProtocolVersion: cfg.ProtocolVersion,
		Name:            cfg.ClientName,
		Version:         cfg.ClientVersion,
	})
	if err != nil {
		return nil, err
	}

	result := &Discovery{
		Server:    *server,
		SessionID: sessionID,
	}

	cursor := ""
	for page := 0; page < maxListPages; page++ {
		var params any
		if cursor != "" {
			params = listToolsParams{Cursor: cursor}
		}

		resp, _, err := t.call(ctx, rpcRequest{
			JSONRPC: mcpgo.JSONRPC_VERSION,
			ID:      strconv.Itoa(page + 2),
			Method:  string(mcpgo.MethodToolsList),
			Params:  params,
		}, sessionID)
		if err != nil {
			return nil, fmt.Errorf("tools/list: %w", err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("tools/list: %w", resp.Error)
		}

		tools, next, err := decodeToolList(resp.Result)
		if err != nil {
			return nil, fmt.Errorf("tools/list: %w", err)
		}
		result.Tools = append(result.Tools, tools...)

		if next == "" {
			break
		}
		cursor = next
	}

	utils.Info("MCP tools discovered",
		"url", cfg.URL,
		"server", server.ServerInfo.Name,
		"protocol", server.ProtocolVersion,
		"session", sessionID != "",
		"tools_count", len(result.Tools))

	return result, nil
}

// decodeToolList разбирает результат tools/list в типы mcp-go.
func decodeToolList(raw json.RawMessage) ([]mcpgo.Tool, string, error) {
	var list mcpgo.ListToolsResult
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, "", fmt.Errorf("decode result: %w", err)
	}

	// Схемы берём из сырого ответа: структурный InputSchema теряет
	// ключевые слова вроде additionalProperties
	var schemas struct {
		Tools []struct {
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(raw, &schemas); err != nil {
		return nil, "", fmt.Errorf("decode schemas: %w", err)
	}

	for i := range list.Tools {
		if i < len(schemas.Tools) && len(schemas.Tools[i].InputSchema) > 0 {
			list.Tools[i].RawInputSchema = schemas.Tools[i].InputSchema
			list.Tools[i].InputSchema = mcpgo.ToolInputSchema{}
		}
	}

	return list.Tools, string(list.NextCursor), nil
}
