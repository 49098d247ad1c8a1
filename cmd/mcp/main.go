package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/termlens/internal/adapters/mcp"
	"github.com/kirillkom/termlens/internal/bootstrap"
	"github.com/kirillkom/termlens/internal/config"
	"github.com/kirillkom/termlens/internal/observability/logging"
)

const (
	service = "mcp"
	version = "1.0.0"
)

func main() {
	cfg := config.Load()
	// stdout carries the protocol.
	logger := logging.NewJSONLoggerTo(os.Stderr, service, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, service)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	tools := mcpadapter.NewTools(app.AnalyzeUC, app.Knowledge)
	logger.Info("mcp_serving_stdio")
	if err := server.ServeStdio(tools.Server(version)); err != nil {
		logger.Error("mcp_server_failed", "error", err)
	}
}
