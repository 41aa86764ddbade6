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

	"github.com/JCZoom/techpulse-blog/internal/bootstrap"
	"github.com/JCZoom/techpulse-blog/internal/config"
	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/observability/logging"
	"github.com/JCZoom/techpulse-blog/internal/observability/metrics"
)

const recordTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, nil)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if app.Queue == nil || app.SearchLog == nil {
		slog.Error("worker_misconfigured", "error", "worker requires NATS_URL and POSTGRES_DSN")
		os.Exit(1)
	}

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSearchSubject)
	err = app.Queue.SubscribeSearchExecuted(ctx, func(handlerCtx context.Context, event domain.SearchEvent) error {
		workerMetrics.ObserveQueueLag(time.Since(event.ExecutedAt))
		workerMetrics.StartEvent()
		start := time.Now()

		recordCtx, cancel := context.WithTimeout(handlerCtx, recordTimeout)
		defer cancel()
		err := app.SearchLog.Record(recordCtx, event)
		workerMetrics.FinishEvent(time.Since(start), err)
		return err
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
	}
}
