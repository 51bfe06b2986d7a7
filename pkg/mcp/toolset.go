package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/ilkoid/poncho-techsupport/pkg/config"
	"github.com/ilkoid/poncho-techsupport/pkg/tools"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// CatalogSource — откуда взят активный каталог.
type CatalogSource string

const (
	SourceStatic     CatalogSource = "static"     // режим static
	SourceDiscovered CatalogSource = "discovered" // свежий tools/list
	SourceCached     CatalogSource = "cached"     // кэш в пределах TTL или после ошибки
	SourceFallback   CatalogSource = "fallback"   // discovery не удался, кэша нет
)

// discoverFunc получает каталог с endpoint.
type discoverFunc func(ctx context.Context) ([]mcpgo.Tool, error)

// Toolset выбирает активный каталог и наполняет им реестр.
//
// В режиме static модель всегда видит StoreCatalog. В режиме discover
// каталог запрашивается у endpoint и кэшируется на cache_ttl; при ошибке
// используется последний удачный кэш, затем статический каталог.
type Toolset struct {
	mode     string
	ttl      time.Duration
	invoker  Invoker
	discover discoverFunc
	now      func() time.Time

	mu        sync.Mutex
	cached    []mcpgo.Tool
	fetchedAt time.Time
}

// NewToolset создаёт набор инструментов поверх bridge.
func NewToolset(cfg config.MCPConfig, invoker Invoker, opts ...Option) *Toolset {
	cfg = cfg.GetDefaults()
	o := applyOptions(opts)

	return &Toolset{
		mode:    cfg.CatalogMode,
		ttl:     cfg.CacheTTLDuration(),
		invoker: invoker,
		discover: func(ctx context.Context) ([]mcpgo.Tool, error) {
			d, err := Discover(ctx, cfg, opts...)
			if err != nil {
				return nil, err
			}
			return d.Tools, nil
		},
		now: o.now,
	}
}

// Catalog возвращает активный каталог и его источник.
func (s *Toolset) Catalog(ctx context.Context) ([]mcpgo.Tool, CatalogSource) {
	if s.mode != config.CatalogDiscover {
		return StoreCatalog(), SourceStatic
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.cached, SourceCached
	}

	discovered, err := s.discover(ctx)
	if err == nil && len(discovered) == 0 {
		err = fmt.Errorf("endpoint returned an empty tool list")
	}
	if err != nil {
		if s.cached != nil {
			utils.Warn("MCP discovery failed, using cached catalog", "error", err, "tools_count", len(s.cached))
			return s.cached, SourceCached
		}
		utils.Warn("MCP discovery failed, using static catalog", "error", err)
		return StoreCatalog(), SourceFallback
	}

	s.cached = discovered
	s.fetchedAt = s.now()
	return discovered, SourceDiscovered
}

// Tools возвращает инструменты активного каталога, привязанные к bridge.
func (s *Toolset) Tools(ctx context.Context) ([]tools.Tool, CatalogSource, error) {
	catalog, source := s.Catalog(ctx)
	list, err := s.remoteTools(catalog)
	return list, source, err
}

// Refresh заменяет содержимое реестра активным каталогом.
//
// Если обнаруженный каталог не проходит валидацию, реестр получает
// статический каталог. Вызывается в начале каждого хода.
func (s *Toolset) Refresh(ctx context.Context, reg *tools.Registry) error {
	list, source, err := s.Tools(ctx)
	if err == nil {
		err = reg.ReplaceAll(list)
	}
	if err == nil {
		utils.Debug("Tool registry refreshed", "source", string(source), "tools_count", len(list))
		return nil
	}

	if source == SourceStatic || source == SourceFallback {
		return fmt.Errorf("static catalog rejected: %w", err)
	}

	utils.Warn("Discovered catalog rejected, using static catalog", "source", string(source), "error", err)
	static, staticErr := s.remoteTools(StoreCatalog())
	if staticErr == nil {
		staticErr = reg.ReplaceAll(static)
	}
	if staticErr != nil {
		return fmt.Errorf("static catalog rejected: %w", staticErr)
	}
	return nil
}

func (s *Toolset) remoteTools(catalog []mcpgo.Tool) ([]tools.Tool, error) {
	defs, err := ToDefinitions(catalog)
	if err != nil {
		return nil, err
	}
	list := make([]tools.Tool, len(defs))
	for i, def := range defs {
		list[i] = NewRemoteTool(def, s.invoker)
	}
	return list, nil
}
