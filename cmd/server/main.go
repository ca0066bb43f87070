// Command server runs the invoice conversion HTTP service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/invoice-converter/cmd/api"
	"github.com/FACorreiaa/invoice-converter/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := api.NewLogger(cfg.Observability, os.Stdout)
	slog.SetDefault(logger)

	deps, err := api.InitDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := deps.Run(ctx); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
