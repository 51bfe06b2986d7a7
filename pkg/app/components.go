// Package app собирает компоненты приложения из конфигурации.
//
// Entry points (cmd/*) только инициализируют и запускают:
// вся сборка bridge, каталога, реестра и оркестратора живёт здесь.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ilkoid/poncho-techsupport/internal/agent"
	"github.com/ilkoid/poncho-techsupport/pkg/config"
	"github.com/ilkoid/poncho-techsupport/pkg/debug"
	"github.com/ilkoid/poncho-techsupport/pkg/events"
	"github.com/ilkoid/poncho-techsupport/pkg/factory"
	"github.com/ilkoid/poncho-techsupport/pkg/mcp"
	"github.com/ilkoid/poncho-techsupport/pkg/tools"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

const (
	// eventBuffer — размер буфера канала событий для TUI.
	eventBuffer = 100

	// traceResultLimit — сколько символов результата инструмента попадает в трейс.
	traceResultLimit = 4000
)

// Components — всё, что нужно для хода диалога, кроме LLM провайдера.
//
// Провайдер создаётся отдельно через NewOrchestrator: ключ может
// появиться только после ввода в UI.
type Components struct {
	Config     *config.AppConfig
	ModelAlias string
	Model      config.ModelDef

	Bridge   *mcp.Bridge
	Toolset  *mcp.Toolset
	Registry *tools.Registry
	Emitter  *events.ChanEmitter

	// Recorder пишет JSON трейсы ходов, nil если app.debug выключен
	Recorder *debug.Recorder
}

// Initialize создаёт bridge, каталог инструментов и реестр.
func Initialize(ctx context.Context, cfg *config.AppConfig, opts ...mcp.Option) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	alias := cfg.Models.DefaultChat
	model, ok := cfg.GetChatModel(alias)
	if !ok {
		return nil, fmt.Errorf("default_chat model '%s' is not defined", alias)
	}

	bridge := mcp.NewBridge(cfg.MCP, opts...)
	toolset := mcp.NewToolset(cfg.MCP, bridge, opts...)

	registry := tools.NewRegistry()
	if err := toolset.Refresh(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	var recorder *debug.Recorder
	if cfg.App.Debug {
		rec, err := debug.NewRecorder(debug.RecorderConfig{
			LogsDir:            filepath.Join(cfg.App.LogDir, "debug"),
			IncludeToolArgs:    true,
			IncludeToolResults: true,
			MaxResultSize:      traceResultLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create debug recorder: %w", err)
		}
		recorder = rec
	}

	utils.Info("Components initialized",
		"model", alias,
		"provider", model.Provider,
		"mcp_url", bridge.URL(),
		"catalog_mode", cfg.MCP.CatalogMode,
		"tools_count", registry.Len(),
		"debug_trace", recorder != nil)

	return &Components{
		Config:     cfg,
		ModelAlias: alias,
		Model:      model,
		Bridge:     bridge,
		Toolset:    toolset,
		Registry:   registry,
		Emitter:    events.NewChanEmitter(eventBuffer),
		Recorder:   recorder,
	}, nil
}

// HasCredentials сообщает, настроен ли ключ для модели по умолчанию.
func (c *Components) HasCredentials() bool {
	return c.Model.HasCredentials()
}

// NewOrchestrator создаёт провайдера и оркестратор.
//
// Непустой apiKey заменяет ключ из конфигурации. Без ключа
// возвращается factory.ErrMissingAPIKey.
func (c *Components) NewOrchestrator(apiKey string) (*agent.Orchestrator, error) {
	model := c.Model
	if key := strings.TrimSpace(apiKey); key != "" {
		model.APIKey = key
	}

	provider, err := factory.NewLLMProvider(model)
	if err != nil {
		return nil, err
	}

	var emitter events.Emitter = c.Emitter
	if c.Recorder != nil {
		provider = c.Recorder.WrapProvider(provider)
		emitter = events.MultiEmitter{c.Emitter, c.Recorder}
	}

	return agent.New(agent.Config{
		LLM:           provider,
		Registry:      c.Registry,
		Catalog:       c.Toolset,
		Emitter:       emitter,
		SystemPrompt:  c.Config.App.SystemPrompt,
		MaxToolRounds: c.Config.App.MaxToolRounds,
		TurnTimeout:   model.TimeoutDuration(),
	})
}

// Close освобождает ресурсы компонентов.
func (c *Components) Close() {
	c.Emitter.Close()
}
