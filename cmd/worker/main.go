package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/termlens/internal/config"
	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/core/usecase"
	natsevents "github.com/kirillkom/termlens/internal/infrastructure/events/nats"
	"github.com/kirillkom/termlens/internal/observability/logging"
	"github.com/kirillkom/termlens/internal/observability/metrics"
)

const service = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.NATSURL == "" {
		logger.Error("worker_config_invalid", "error", "NATS_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	subscriber, err := natsevents.NewSubscriber(cfg.NATSURL, cfg.NATSSubject, cfg.WorkerQueueGroup, natsevents.Options{})
	if err != nil {
		logger.Error("worker_bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer subscriber.Close()

	workerMetrics := metrics.NewWorkerMetrics(service)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           metricsMux(workerMetrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	audit := usecase.NewAuditUseCase(domain.RiskLevel(cfg.WorkerAlertLevel))

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "queue_group", cfg.WorkerQueueGroup)
	err = subscriber.SubscribeAnalysisCompleted(ctx, func(handlerCtx context.Context, event domain.AnalysisEvent) error {
		workerMetrics.StartEvent()
		workerMetrics.ObserveEventLag(service, time.Since(event.CreatedAt))

		processCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		_, err := audit.Handle(processCtx, event)
		workerMetrics.FinishEvent(service, event, err)
		return err
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("worker_metrics_shutdown_failed", "error", err)
	}
}

func metricsMux(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
