// TechSupport AI — чат-ассистент магазина с инструментами через MCP endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/joho/godotenv"

	"github.com/ilkoid/poncho-techsupport/internal/ui"
	"github.com/ilkoid/poncho-techsupport/pkg/app"
	"github.com/ilkoid/poncho-techsupport/pkg/tui"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "", "path to config.yaml or config.toml")
	flag.Parse()

	// .env необязателен: ключи могут прийти из окружения или из UI
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, cfgPath, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configFlag})
	if err != nil {
		return err
	}

	level := cfg.App.LogLevel
	if cfg.App.Debug {
		level = "debug"
	}
	if err := utils.InitLogger(utils.LogConfig{Dir: cfg.App.LogDir, Prefix: "techsupport", Level: level}); err != nil {
		log.Printf("Warning: failed to init logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer utils.SetupGracefulShutdown(cancel)()

	utils.Info("Application started", "config", cfgPath, "default_model", cfg.Models.DefaultChat)

	components, err := app.Initialize(ctx, cfg)
	if err != nil {
		utils.Error("Initialization failed", "error", err)
		return err
	}
	defer components.Close()

	var handler ui.TurnHandler
	if components.HasCredentials() {
		orchestrator, err := components.NewOrchestrator("")
		if err != nil {
			utils.Error("Orchestrator creation failed", "error", err)
			return fmt.Errorf("orchestrator creation failed: %w", err)
		}
		handler = orchestrator
	} else {
		utils.Warn("LLM API key is not configured, asking in UI", "model", components.ModelAlias)
	}

	if !slices.Contains(tui.ColorSchemeNames(), cfg.App.ColorScheme) {
		utils.Warn("Unknown color scheme, using default",
			"color_scheme", cfg.App.ColorScheme,
			"available", tui.ColorSchemeNames())
	}

	model := ui.NewModel(ui.Options{
		Title:     cfg.App.Title,
		ModelName: components.ModelAlias,
		Endpoint:  components.Bridge.URL(),
		Handler:   handler,
		Build: func(apiKey string) (ui.TurnHandler, error) {
			orchestrator, err := components.NewOrchestrator(apiKey)
			if err != nil {
				return nil, err
			}
			return orchestrator, nil
		},
		Events:  components.Emitter.Subscribe(),
		Scheme:  tui.GetColorScheme(cfg.App.ColorScheme),
		Context: ctx,
	})

	if err := tui.Run(ctx, model); err != nil {
		utils.Error("TUI error", "error", err)
		return err
	}

	utils.Info("Application exited normally")
	return nil
}
