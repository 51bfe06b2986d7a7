package mcp

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ilkoid/poncho-techsupport/pkg/config"
)

// newStoreServer поднимает настоящий streamable HTTP сервер mcp-go
// с каталогом магазина. stateless=false требует Mcp-Session-Id.
func newStoreServer(t *testing.T, stateless bool) *httptest.Server {
	t.Helper()

	s := server.NewMCPServer("test-store", "0.1.0", server.WithToolCapabilities(false))
	for _, tool := range StoreCatalog() {
		name := tool.Name
		s.AddTool(tool, func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			if name == ToolGetProduct && req.GetString("sku", "") == "SKU123" {
				return mcpgo.NewToolResultText("SKU123: Gaming Laptop, $999, 5 in stock"), nil
			}
			return mcpgo.NewToolResultText(fmt.Sprintf("%s: %d args", name, len(req.GetArguments()))), nil
		})
	}

	srv := httptest.NewServer(server.NewStreamableHTTPServer(s, server.WithStateLess(stateless)))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(url string) config.MCPConfig {
	return config.MCPConfig{URL: url, Timeout: "2s"}.GetDefaults()
}
