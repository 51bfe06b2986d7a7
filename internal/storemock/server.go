package storemock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ilkoid/poncho-techsupport/pkg/mcp"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

const (
	serverName    = "store-mcp"
	serverVersion = "1.0.0"
)

// NewMCPServer регистрирует все инструменты каталога магазина поверх store.
func NewMCPServer(store *Store) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Demo computer store: products, customers and orders."),
	)

	handlers := map[string]server.ToolHandlerFunc{
		mcp.ToolListProducts:      store.handleListProducts,
		mcp.ToolSearchProducts:    store.handleSearchProducts,
		mcp.ToolGetProduct:        store.handleGetProduct,
		mcp.ToolGetCustomer:       store.handleGetCustomer,
		mcp.ToolVerifyCustomerPIN: store.handleVerifyPIN,
		mcp.ToolListOrders:        store.handleListOrders,
		mcp.ToolGetOrder:          store.handleGetOrder,
		mcp.ToolCreateOrder:       store.handleCreateOrder,
	}

	for _, tool := range mcp.StoreCatalog() {
		h, ok := handlers[tool.Name]
		if !ok {
			utils.Warn("No handler for catalog tool", "tool", tool.Name)
			continue
		}
		s.AddTool(tool, logged(tool.Name, h))
	}
	return s
}

// NewHandler возвращает streamable HTTP endpoint магазина.
// stateless=false требует Mcp-Session-Id после initialize.
func NewHandler(store *Store, stateless bool, opts ...server.StreamableHTTPOption) *server.StreamableHTTPServer {
	opts = append([]server.StreamableHTTPOption{server.WithStateLess(stateless)}, opts...)
	return server.NewStreamableHTTPServer(NewMCPServer(store), opts...)
}

func logged(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		start := time.Now()
		res, err := h(ctx, req)
		utils.Info("store tool called",
			"tool", name,
			"is_error", res != nil && res.IsError,
			"duration_ms", time.Since(start).Milliseconds())
		return res, err
	}
}

// toolError превращает ошибку магазина в результат с isError.
func toolError(err error) *mcpgo.CallToolResult {
	return mcpgo.NewToolResultError("Error: " + err.Error())
}

func (s *Store) handleListProducts(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	category := strings.TrimSpace(req.GetString("category", ""))
	products := s.ListProducts(category)
	if len(products) == 0 {
		return mcpgo.NewToolResultText(fmt.Sprintf("No products found in category %q.", category)), nil
	}
	return mcpgo.NewToolResultText(formatProducts(products)), nil
}

func (s *Store) handleSearchProducts(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return toolError(err), nil
	}
	products := s.SearchProducts(query)
	if len(products) == 0 {
		return mcpgo.NewToolResultText(fmt.Sprintf("No products match %q.", query)), nil
	}
	return mcpgo.NewToolResultText(formatProducts(products)), nil
}

func (s *Store) handleGetProduct(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	sku, err := req.RequireString("sku")
	if err != nil {
		return toolError(err), nil
	}
	p, err := s.Product(sku)
	if err != nil {
		return toolError(err), nil
	}
	return mcpgo.NewToolResultText(formatProductDetails(p)), nil
}

func (s *Store) handleGetCustomer(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id, err := req.RequireString("customer_id")
	if err != nil {
		return toolError(err), nil
	}
	c, err := s.Customer(id)
	if err != nil {
		return toolError(err), nil
	}
	return mcpgo.NewToolResultText(formatCustomer(c)), nil
}

func (s *Store) handleVerifyPIN(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	email, err := req.RequireString("email")
	if err != nil {
		return toolError(err), nil
	}
	pin, err := req.RequireString("pin")
	if err != nil {
		return toolError(err), nil
	}
	c, err := s.VerifyPIN(email, pin)
	if err != nil {
		return toolError(err), nil
	}
	return mcpgo.NewToolResultText(fmt.Sprintf("Verified: %s (customer_id %s)", c.Name, c.ID)), nil
}

func (s *Store) handleListOrders(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id, err := req.RequireString("customer_id")
	if err != nil {
		return toolError(err), nil
	}
	status := strings.TrimSpace(req.GetString("status", ""))
	orders, err := s.Orders(id, status)
	if err != nil {
		return toolError(err), nil
	}
	if len(orders) == 0 {
		return mcpgo.NewToolResultText("No orders found."), nil
	}

	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, formatOrderSummary(o))
	}
	return mcpgo.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Store) handleGetOrder(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id, err := req.RequireString("order_id")
	if err != nil {
		return toolError(err), nil
	}
	o, err := s.Order(id)
	if err != nil {
		return toolError(err), nil
	}
	return mcpgo.NewToolResultText(formatOrderDetails(o)), nil
}

// createOrderArgs — аргументы create_order.
type createOrderArgs struct {
	CustomerID string `json:"customer_id"`
	Items      []struct {
		SKU      string `json:"sku"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

func (s *Store) handleCreateOrder(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	var args createOrderArgs
	if err := req.BindArguments(&args); err != nil {
		return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if args.CustomerID == "" {
		return toolError(errors.New("customer_id is required")), nil
	}

	items := make([]OrderItem, 0, len(args.Items))
	for _, it := range args.Items {
		items = append(items, OrderItem{SKU: it.SKU, Quantity: it.Quantity})
	}

	o, err := s.CreateOrder(args.CustomerID, items)
	if err != nil {
		return toolError(err), nil
	}
	return mcpgo.NewToolResultText("Order created.\n" + formatOrderDetails(o)), nil
}
