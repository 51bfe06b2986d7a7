package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes ограничивает размер тела ответа endpoint.
const maxResponseBytes = 4 << 20

// transport отправляет JSON-RPC запросы по HTTP POST.
//
// Не хранит состояние сессии: идентификатор передаёт вызывающий код.
type transport struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter // nil = без ограничения частоты
}

func newTransport(url string, timeout time.Duration, requestsPerMinute, burst int, client *http.Client) *transport {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	t := &transport{url: url, client: client}

	// Лимитер только задерживает запрос, повторов нет
	if requestsPerMinute > 0 {
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}

	return t
}

// call отправляет запрос и возвращает разобранный ответ и заголовки.
//
// Ответ бывает application/json или text/event-stream; во втором случае
// берётся первое событие, содержащее JSON-RPC ответ.
func (t *transport) call(ctx context.Context, req rpcRequest, sessionID string) (*rpcResponse, http.Header, error) {
	body, headers, err := t.post(ctx, req, sessionID)
	if err != nil {
		return nil, headers, err
	}

	resp, err := decodeResponse(body, headers.Get("Content-Type"))
	if err != nil {
		return nil, headers, err
	}
	return resp, headers, nil
}

// notify отправляет уведомление (без id) и игнорирует тело ответа.
func (t *transport) notify(ctx context.Context, method, sessionID string) error {
	_, _, err := t.post(ctx, rpcRequest{JSONRPC: "2.0", Method: method}, sessionID)
	return err
}

func (t *transport) post(ctx context.Context, req rpcRequest, sessionID string) ([]byte, http.Header, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if sessionID != "" {
		httpReq.Header.Set(HeaderSessionID, sessionID)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.Header, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.Header, &HTTPStatusError{
			Method:     req.Method,
			URL:        t.url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return body, resp.Header, nil
}

// decodeResponse разбирает тело ответа как JSON или SSE поток.
func decodeResponse(body []byte, contentType string) (*rpcResponse, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/event-stream" {
		data, err := firstSSEMessage(body)
		if err != nil {
			return nil, err
		}
		body = data
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if json.Valid(body) {
			return nil, fmt.Errorf("%w: %v", errUnexpectedShape, err)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// firstSSEMessage возвращает data первого события, похожего на JSON-RPC ответ.
//
// Уведомления сервера (есть method, нет result/error) пропускаются.
func firstSSEMessage(body []byte) ([]byte, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseBytes)

	var data bytes.Buffer
	flush := func() []byte {
		defer data.Reset()
		if data.Len() == 0 {
			return nil
		}
		var probe struct {
			Method string          `json:"method"`
			Result json.RawMessage `json:"result"`
			Error  json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(data.Bytes(), &probe); err != nil {
			return nil
		}
		if probe.Method != "" && probe.Result == nil && probe.Error == nil {
			return nil
		}
		return append([]byte(nil), data.Bytes()...)
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			if msg := flush(); msg != nil {
				return msg, nil
			}
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue // event:, id:, комментарии
		}
		if data.Len() > 0 {
			data.WriteByte('\n')
		}
		data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sse stream: %w", err)
	}
	// Последнее событие без завершающей пустой строки
	if msg := flush(); msg != nil {
		return msg, nil
	}
	return nil, fmt.Errorf("sse stream ended without a json-rpc response")
}
