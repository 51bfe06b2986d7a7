// mcp-inspect — диагностика MCP endpoint: initialize, session id и список инструментов.
//
// Примеры:
//
//	mcp-inspect -url http://localhost:8080/mcp
//	mcp-inspect -json
//	mcp-inspect -call get_product -args '{"sku":"SKU123"}'
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ilkoid/poncho-techsupport/pkg/app"
	"github.com/ilkoid/poncho-techsupport/pkg/mcp"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	var (
		configFlag = flag.String("config", "", "path to config.yaml or config.toml")
		urlFlag    = flag.String("url", "", "MCP endpoint URL (overrides config and MCP_URL)")
		jsonFlag   = flag.Bool("json", false, "print raw tool schemas as JSON")
		callFlag   = flag.String("call", "", "invoke a tool after discovery")
		argsFlag   = flag.String("args", "{}", "JSON object with arguments for -call")
		timeout    = flag.Duration("timeout", 30*time.Second, "overall timeout")
		verbose    = flag.Bool("v", false, "log requests to stderr")
	)
	flag.Parse()

	_ = godotenv.Load()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	utils.SetOutput(os.Stderr, level)

	cfg, _, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configFlag})
	if err != nil {
		return err
	}
	if *urlFlag != "" {
		cfg.MCP.URL = *urlFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	defer utils.SetupGracefulShutdown(cancel)()

	d, err := mcp.Discover(ctx, cfg.MCP)
	if err != nil {
		return fmt.Errorf("discovery against %s failed: %w", cfg.MCP.URL, err)
	}

	if *jsonFlag {
		if err := printJSON(out, d); err != nil {
			return err
		}
	} else {
		printSummary(out, cfg.MCP.URL, d)
	}

	if *callFlag == "" {
		return nil
	}

	args, err := mcp.DecodeArguments(*argsFlag)
	if err != nil {
		return fmt.Errorf("invalid -args: %w", err)
	}
	// Вызов идёт через bridge с session affinity: сессия из discovery не переиспользуется
	bridgeCfg := cfg.MCP
	bridgeCfg.SessionAffinity = d.SessionID != ""
	result := mcp.NewBridge(bridgeCfg).Invoke(ctx, *callFlag, args)

	fmt.Fprintf(out, "\nResult of %s:\n%s\n", *callFlag, result)
	if strings.HasPrefix(result, mcp.ErrorPrefix) {
		return errors.New("tool call failed")
	}
	return nil
}

func printSummary(out io.Writer, url string, d *mcp.Discovery) {
	info := d.Server.ServerInfo
	fmt.Fprintf(out, "Endpoint: %s\n", url)
	fmt.Fprintf(out, "Server:   %s %s (protocol %s)\n", info.Name, info.Version, d.Server.ProtocolVersion)

	session := d.SessionID
	if session == "" {
		session = "(none, stateless endpoint)"
	}
	fmt.Fprintf(out, "Session:  %s\n", session)

	fmt.Fprintf(out, "\nTools (%d):\n", len(d.Tools))
	for _, t := range d.Tools {
		fmt.Fprintf(out, "  - %s: %s\n", t.Name, t.Description)
	}

	// Те же проверки, что проходит каталог перед отправкой в LLM
	if _, err := mcp.ToDefinitions(d.Tools); err != nil {
		fmt.Fprintf(out, "\nSchemas:  rejected (%v), the assistant will fall back to the static catalog\n", err)
		return
	}
	fmt.Fprintf(out, "\nSchemas:  valid\n")
}

// printJSON печатает результат discovery со схемами инструментов как их прислал сервер.
func printJSON(out io.Writer, d *mcp.Discovery) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"server":     d.Server,
		"session_id": d.SessionID,
		"tools":      d.Tools,
	})
}
