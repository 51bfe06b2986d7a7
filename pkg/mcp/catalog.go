package mcp

import (
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/ilkoid/poncho-techsupport/pkg/tools"
)

// Имена инструментов магазина.
const (
	ToolListProducts      = "list_products"
	ToolSearchProducts    = "search_products"
	ToolGetProduct        = "get_product"
	ToolGetCustomer       = "get_customer"
	ToolVerifyCustomerPIN = "verify_customer_pin"
	ToolListOrders        = "list_orders"
	ToolGetOrder          = "get_order"
	ToolCreateOrder       = "create_order"
)

// StoreCatalog возвращает статический каталог из восьми инструментов магазина.
//
// Тот же каталог обслуживает internal/storemock, поэтому схемы
// клиента и демо-сервера не расходятся.
func StoreCatalog() []mcpgo.Tool {
	return []mcpgo.Tool{
		mcpgo.NewTool(ToolListProducts,
			mcpgo.WithDescription("List computer products by category (e.g., 'Computers', 'Monitors', 'Printers')."),
			mcpgo.WithString("category",
				mcpgo.Description("Product category, e.g. 'Computers', 'Monitors', 'Printers'. Omit to list everything."),
			),
			mcpgo.WithReadOnlyHintAnnotation(true),
		),
		mcpgo.NewTool(ToolSearchProducts,
			mcpgo.WithDescription("Find products using keywords (e.g., 'gaming laptop' or 'wireless mouse')."),
			mcpgo.WithString("query",
				mcpgo.Required(),
				mcpgo.Description("Search keywords"),
			),
			mcpgo.WithReadOnlyHintAnnotation(true),
		),
		mcpgo.NewTool(ToolGetProduct,
			mcpgo.WithDescription("Get pricing, inventory, and detailed specs for a specific product SKU."),
			mcpgo.WithString("sku",
				mcpgo.Required(),
				mcpgo.Description("Product SKU, e.g. 'SKU123'"),
			),
			mcpgo.WithReadOnlyHintAnnotation(true),
		),
		mcpgo.NewTool(ToolGetCustomer,
			mcpgo.WithDescription("Look up customer details (name, address) using their UUID."),
			mcpgo.WithString("customer_id",
				mcpgo.Required(),
				mcpgo.Description("Customer UUID"),
			),
			mcpgo.WithReadOnlyHintAnnotation(true),
		),
		mcpgo.NewTool(ToolVerifyCustomerPIN,
			mcpgo.WithDescription("Authenticate a customer using their email and 4-digit PIN. Essential before placing orders."),
			mcpgo.WithString("email",
				mcpgo.Required(),
				mcpgo.Description("Customer email"),
			),
			mcpgo.WithString("pin",
				mcpgo.Required(),
				mcpgo.Description("4-digit PIN"),
				mcpgo.Pattern(`^[0-9]{4}$`),
			),
			mcpgo.WithReadOnlyHintAnnotation(true),
		),
		mcpgo.NewTool(ToolListOrders,
			mcpgo.WithDescription("View order history for a customer. Can filter by status (fulfilled, pending, etc.)."),
			mcpgo.WithString("customer_id",
				mcpgo.Required(),
				mcpgo.Description("Customer UUID"),
			),
			mcpgo.WithString("status",
				mcpgo.Description("Optional status filter, e.g. 'fulfilled', 'pending', 'cancelled'"),
			),
			mcpgo.WithReadOnlyHintAnnotation(true),
		),
		mcpgo.NewTool(ToolGetOrder,
			mcpgo.WithDescription("Get detailed status and line items for a specific Order ID."),
			mcpgo.WithString("order_id",
				mcpgo.Required(),
				mcpgo.Description("Order ID"),
			),
			mcpgo.WithReadOnlyHintAnnotation(true),
		),
		mcpgo.NewTool(ToolCreateOrder,
			mcpgo.WithDescription("Place a new order for a verified customer with specific SKUs and quantities."),
			mcpgo.WithString("customer_id",
				mcpgo.Required(),
				mcpgo.Description("UUID of a customer verified with verify_customer_pin"),
			),
			mcpgo.WithArray("items",
				mcpgo.Required(),
				mcpgo.Description("Order lines"),
				mcpgo.MinItems(1),
				mcpgo.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sku":      map[string]any{"type": "string"},
						"quantity": map[string]any{"type": "integer", "minimum": 1},
					},
					"required": []string{"sku", "quantity"},
				}),
			),
			mcpgo.WithDestructiveHintAnnotation(false),
			mcpgo.WithReadOnlyHintAnnotation(false),
		),
	}
}

// ToDefinition конвертирует инструмент mcp-go в определение для LLM.
//
// RawInputSchema (из tools/list) имеет приоритет над структурным InputSchema.
func ToDefinition(t mcpgo.Tool) (tools.ToolDefinition, error) {
	var raw []byte
	var err error
	if len(t.RawInputSchema) > 0 {
		raw = t.RawInputSchema
	} else {
		raw, err = json.Marshal(t.InputSchema)
		if err != nil {
			return tools.ToolDefinition{}, fmt.Errorf("tool '%s': encode input schema: %w", t.Name, err)
		}
	}

	var params tools.JSONSchema
	if err := json.Unmarshal(raw, &params); err != nil {
		return tools.ToolDefinition{}, fmt.Errorf("tool '%s': input schema is not an object: %w", t.Name, err)
	}
	if params == nil {
		params = tools.JSONSchema{}
	}
	if _, ok := params["type"]; !ok {
		params["type"] = "object"
	}
	// Некоторые провайдеры отклоняют object без properties
	if _, ok := params["properties"]; !ok {
		params["properties"] = map[string]any{}
	}

	return tools.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}, nil
}

// ToDefinitions конвертирует каталог целиком, сохраняя порядок.
func ToDefinitions(list []mcpgo.Tool) ([]tools.ToolDefinition, error) {
	defs := make([]tools.ToolDefinition, 0, len(list))
	for _, t := range list {
		def, err := ToDefinition(t)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
