package mcp

import (
	"net/http"
	"time"
)

// options — общие настройки Bridge, Discover и Toolset.
type options struct {
	httpClient *http.Client
	now        func() time.Time
}

// Option настраивает клиентов пакета.
type Option func(*options)

// WithHTTPClient задаёт HTTP клиент (по умолчанию клиент с timeout из конфигурации).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// withClock подменяет часы для проверки TTL кэша каталога.
func withClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
