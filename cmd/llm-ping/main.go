// llm-ping — проверка доступности LLM провайдера и API ключа.
//
// Использование:
//
//	llm-ping                  # модель default_chat из config.yaml
//	llm-ping -model groq-llama
//
// Ключи берутся из config.yaml (${VAR}), .env и переменных окружения
// LLM_API_KEY / <PROVIDER>_API_KEY.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/ilkoid/poncho-techsupport/pkg/app"
	"github.com/ilkoid/poncho-techsupport/pkg/factory"
	"github.com/ilkoid/poncho-techsupport/pkg/llm"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFlag = flag.String("config", "", "path to config.yaml or config.toml")
		modelFlag  = flag.String("model", "", "model alias (default: models.default_chat)")
		timeout    = flag.Duration("timeout", 15*time.Second, "request timeout")
	)
	flag.Parse()

	_ = godotenv.Load()
	utils.SetOutput(os.Stderr, "warn")

	cfg, _, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configFlag})
	if err != nil {
		return err
	}

	alias := *modelFlag
	if alias == "" {
		alias = cfg.Models.DefaultChat
	}
	model, ok := cfg.GetChatModel(alias)
	if !ok {
		return fmt.Errorf("model '%s' is not defined, available: %v", alias, modelAliases(cfg.Models.Definitions))
	}

	fmt.Printf("🔍 Testing LLM Provider: %s (%s, %s)\n\n", alias, model.Provider, model.ModelName)

	provider, err := factory.NewLLMProvider(model)
	if errors.Is(err, factory.ErrMissingAPIKey) {
		return fmt.Errorf("no API key for %s: set LLM_API_KEY or api_key in config", alias)
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	reply, err := provider.Generate(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Reply with the single word: pong"},
	}, llm.WithMaxTokens(16))
	latency := time.Since(start)

	if err != nil {
		fmt.Printf("❌ Status: UNAVAILABLE\n")
		fmt.Printf("   Latency: %dms\n", latency.Milliseconds())
		return err
	}

	fmt.Printf("✅ Status: AVAILABLE\n")
	fmt.Printf("   Latency: %dms\n", latency.Milliseconds())
	fmt.Printf("   Reply: %s\n", reply.Content)
	return nil
}

func modelAliases[T any](defs map[string]T) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
