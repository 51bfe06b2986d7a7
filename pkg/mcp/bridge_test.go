package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-techsupport/pkg/llm"
)

// captured — последний запрос, который получил cannedServer.
type captured struct {
	mu     sync.Mutex
	header http.Header
	method string
	body   map[string]any
}

func (c *captured) snapshot() (string, http.Header, map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.method, c.header, c.body
}

// cannedServer отвечает одним и тем же телом и запоминает последний запрос.
func cannedServer(t *testing.T, contentType, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decoded := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&decoded)

		c.mu.Lock()
		c.method = r.Method
		c.header = r.Header.Clone()
		c.body = decoded
		c.mu.Unlock()

		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestBridge_Invoke_FlattensText(t *testing.T) {
	srv, c := cannedServer(t, "application/json",
		`{"result":{"content":[{"text":"SKU123: Gaming Laptop, $999, 5 in stock"}]}}`)

	bridge := NewBridge(testConfig(srv.URL))
	out := bridge.Invoke(context.Background(), "get_product", map[string]any{"sku": "SKU123"})

	assert.Equal(t, "SKU123: Gaming Laptop, $999, 5 in stock", out)

	// Конверт запроса
	method, header, body := c.snapshot()
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, "application/json, text/event-stream", header.Get("Accept"))
	assert.Empty(t, header.Get(HeaderSessionID))

	assert.Equal(t, "2.0", body["jsonrpc"])
	assert.Equal(t, "1", body["id"])
	assert.Equal(t, "tools/call", body["method"])
	params := body["params"].(map[string]any)
	assert.Equal(t, "get_product", params["name"])
	assert.Equal(t, map[string]any{"sku": "SKU123"}, params["arguments"])
}

func TestBridge_Invoke_NilArgumentsSentAsObject(t *testing.T) {
	srv, c := cannedServer(t, "application/json", `{"jsonrpc":"2.0","id":"1","result":{"content":[]}}`)

	out := NewBridge(testConfig(srv.URL)).Invoke(context.Background(), "list_products", nil)

	assert.Equal(t, llm.EmptyToolContent, out)
	_, _, body := c.snapshot()
	params := body["params"].(map[string]any)
	assert.Equal(t, map[string]any{}, params["arguments"])
}

func TestBridge_Invoke_Responses(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{
			name:        "multiple parts joined with newline",
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":"1","result":{"content":[{"type":"text","text":"Laptop A"},{"type":"image","data":"x","mimeType":"image/png"},{"type":"text","text":"Laptop B"}]}}`,
			want:        "Laptop A\nLaptop B",
		},
		{
			name:        "json-rpc error",
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":"1","error":{"code":-32602,"message":"Unknown tool: foo"}}`,
			want:        "Error calling tool: Unknown tool: foo",
		},
		{
			name:        "isError result still returns its text",
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":"1","result":{"isError":true,"content":[{"type":"text","text":"Order not found"}]}}`,
			want:        "Order not found",
		},
		{
			name:        "missing content",
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":"1","result":{}}`,
			want:        llm.EmptyToolContent,
		},
		{
			name:        "only blank text parts",
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":"1","result":{"content":[{"type":"text","text":"  "}]}}`,
			want:        llm.EmptyToolContent,
		},
		{
			name:        "isError without text",
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":"1","result":{"isError":true,"content":[]}}`,
			want:        llm.EmptyToolContent,
		},
		{
			name:        "result is a string",
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":"1","result":"oops"}`,
			want:        llm.EmptyToolContent,
		},
		{
			name:        "content is not an array",
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":"1","result":{"content":"text"}}`,
			want:        llm.EmptyToolContent,
		},
		{
			name:        "body is a json array",
			contentType: "application/json",
			body:        `[1, 2, 3]`,
			want:        llm.EmptyToolContent,
		},
		{
			name:        "sse stream",
			contentType: "text/event-stream",
			body: "event: message\n" +
				`data: {"jsonrpc":"2.0","method":"notifications/progress","params":{}}` + "\n\n" +
				"event: message\n" +
				`data: {"jsonrpc":"2.0","id":"1","result":{"content":[{"type":"text","text":"Order A1: shipped"}]}}` + "\n\n",
			want: "Order A1: shipped",
		},
		{
			name:        "sse without trailing blank line",
			contentType: "text/event-stream; charset=utf-8",
			body:        `data: {"jsonrpc":"2.0","id":"1","result":{"content":[{"text":"ok"}]}}`,
			want:        "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := cannedServer(t, tt.contentType, tt.body)
			out := NewBridge(testConfig(srv.URL)).Invoke(context.Background(), "get_order", map[string]any{"order_id": "A1"})
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestBridge_Invoke_FailuresBecomeText(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		srv, _ := cannedServer(t, "application/json", `{"result": `)
		out := NewBridge(testConfig(srv.URL)).Invoke(context.Background(), "get_product", nil)
		assert.True(t, strings.HasPrefix(out, "Error calling tool: "), out)
	})

	t.Run("http 500", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
		}))
		defer srv.Close()

		out := NewBridge(testConfig(srv.URL)).Invoke(context.Background(), "get_product", nil)
		assert.Contains(t, out, "Error calling tool")
		assert.Contains(t, out, "status 500")
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		var out string
		assert.NotPanics(t, func() {
			out = NewBridge(testConfig(url)).Invoke(context.Background(), "get_product", map[string]any{"sku": "SKU123"})
		})
		assert.Contains(t, out, "Error calling tool")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.Timeout = "50ms"
		out := NewBridge(cfg).Invoke(context.Background(), "get_product", nil)
		assert.Contains(t, out, "Error calling tool")
	})
}

func TestBridge_SessionAffinity(t *testing.T) {
	srv := newStoreServer(t, false)

	t.Run("stateful server rejects calls without session", func(t *testing.T) {
		out := NewBridge(testConfig(srv.URL)).Invoke(context.Background(), ToolGetProduct, map[string]any{"sku": "SKU123"})
		assert.Contains(t, out, "Error calling tool")
	})

	t.Run("initialize once and reuse the session", func(t *testing.T) {
		cfg := testConfig(srv.URL)
		cfg.SessionAffinity = true
		bridge := NewBridge(cfg)

		out := bridge.Invoke(context.Background(), ToolGetProduct, map[string]any{"sku": "SKU123"})
		assert.Equal(t, "SKU123: Gaming Laptop, $999, 5 in stock", out)

		sessionID := bridge.SessionID()
		require.NotEmpty(t, sessionID)

		out = bridge.Invoke(context.Background(), ToolListOrders, map[string]any{"customer_id": "c1", "status": "pending"})
		assert.Equal(t, "list_orders: 2 args", out)
		assert.Equal(t, sessionID, bridge.SessionID())
	})
}

func TestBridge_StatelessStoreServer(t *testing.T) {
	srv := newStoreServer(t, true)

	out := NewBridge(testConfig(srv.URL)).Invoke(context.Background(), ToolGetProduct, map[string]any{"sku": "SKU123"})
	assert.Equal(t, "SKU123: Gaming Laptop, $999, 5 in stock", out)

	out = NewBridge(testConfig(srv.URL)).Invoke(context.Background(), "no_such_tool", nil)
	assert.True(t, strings.HasPrefix(out, "Error calling tool: "), out)
}

func TestBridge_RateLimitPacesCalls(t *testing.T) {
	srv, _ := cannedServer(t, "application/json", `{"result":{"content":[{"text":"ok"}]}}`)

	cfg := testConfig(srv.URL)
	cfg.RateLimit = 3000 // один запрос в 20ms
	cfg.Burst = 1
	bridge := NewBridge(cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		assert.Equal(t, "ok", bridge.Invoke(context.Background(), "get_product", nil))
	}
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestFlattenContent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		isError bool
		ok      bool
	}{
		{name: "empty", raw: ``, want: "", ok: true},
		{name: "null", raw: `null`, want: "", ok: true},
		{name: "single", raw: `{"content":[{"text":"a"}]}`, want: "a", ok: true},
		{name: "empty text kept", raw: `{"content":[{"text":"a"},{"text":""},{"text":"b"}]}`, want: "a\n\nb", ok: true},
		{name: "non-object items skipped", raw: `{"content":["x",{"text":"a"}]}`, want: "a", ok: true},
		{name: "is error", raw: `{"isError":true,"content":[{"text":"bad"}]}`, want: "bad", isError: true, ok: true},
		{name: "string result", raw: `"text"`, want: "", ok: false},
		{name: "content object", raw: `{"content":{"text":"a"}}`, want: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError, ok := flattenContent(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, text)
			assert.Equal(t, tt.isError, isError)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
