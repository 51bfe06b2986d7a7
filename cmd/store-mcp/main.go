// store-mcp — демо-магазин как MCP streamable HTTP endpoint для локальных запусков.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ilkoid/poncho-techsupport/internal/storemock"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr      = flag.String("addr", ":8080", "listen address")
		stateless = flag.Bool("stateless", true, "accept tools/call without Mcp-Session-Id")
		logLevel  = flag.String("log-level", "info", "debug, info, warn or error")
	)
	flag.Parse()

	utils.SetOutput(os.Stdout, *logLevel)

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	srv := storemock.NewHandler(storemock.NewSeededStore(), *stateless)

	errCh := make(chan error, 1)
	go func() {
		utils.Info("store-mcp listening", "addr", *addr, "path", "/mcp", "stateless", *stateless)
		errCh <- srv.Start(*addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	utils.Info("store-mcp stopped")
	return nil
}
