package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/JCZoom/techpulse-blog/internal/adapters/http"
	"github.com/JCZoom/techpulse-blog/internal/bootstrap"
	"github.com/JCZoom/techpulse-blog/internal/config"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
	"github.com/JCZoom/techpulse-blog/internal/observability/logging"
	"github.com/JCZoom/techpulse-blog/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	app, err := bootstrap.New(ctx, cfg, serverMetrics)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if app.Queue != nil {
		go func() {
			err := app.Queue.SubscribeShardsPublished(ctx, func(handlerCtx context.Context, dates []string) error {
				stats, err := app.Session.Reload(handlerCtx)
				serverMetrics.ObserveReload("nats", err)
				if err != nil {
					return err
				}
				slog.Info("corpus_reloaded", "dates", dates, "articles", stats.Articles, "shards", stats.Shards)
				return nil
			})
			if err != nil {
				slog.Error("shards_subscribe_failed", "error", err)
			}
		}()
	}

	var analytics ports.SearchAnalytics
	if app.SearchLog != nil {
		analytics = app.SearchLog
	}
	handler := httpadapter.NewRouter(cfg, app.Session, app.Session, analytics).
		WithMetrics(serverMetrics).
		Handler()
	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		slog.Error("api_listen_failed", "port", cfg.APIPort, "error", err)
		os.Exit(1)
	}
	if cfg.APIMaxConns > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConns)
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "shard_source", cfg.ShardSource, "max_conns", cfg.APIMaxConns)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
