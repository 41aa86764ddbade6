package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/JCZoom/techpulse-blog/internal/config"
	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
	"github.com/JCZoom/techpulse-blog/internal/core/usecase"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/queue/nats"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/repository/postgres"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/resilience"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/shards/httpsource"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/shards/localfs"
)

type App struct {
	Config config.Config

	Session *usecase.SearchSession
	Loader  *usecase.CorpusLoader

	// Optional backends; nil when not configured.
	Queue      *nats.Queue
	SearchLog  *usecase.SearchLogProcessor
	ShardStore ports.ShardStore

	closeFn func()
}

// breakerObserver is implemented by metrics sinks that export breaker
// state.
type breakerObserver interface {
	ObserveBreakerState(operation, state string)
}

// New wires the search stack for cfg. observer may be nil.
func New(ctx context.Context, cfg config.Config, observer ports.SearchObserver) (*App, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var listener resilience.StateListener
	if bo, ok := observer.(breakerObserver); ok {
		listener = func(operation string, _, to gobreaker.State) {
			bo.ObserveBreakerState(operation, to.String())
		}
	}

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = postgres.OpenDB(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			closeAll()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	source, store, err := newShardSource(cfg, db, listener)
	if err != nil {
		closeAll()
		return nil, err
	}

	app := &App{Config: cfg, ShardStore: store}
	if db != nil {
		app.SearchLog = usecase.NewSearchLogProcessor(postgres.NewSearchLogRepository(db))
		app.ShardStore = postgres.NewShardRepository(db)
	}

	if cfg.NATSURL != "" {
		executor := resilience.NewExecutor(resilience.PublisherConfig()).WithStateListener(listener)
		queue, err := nats.NewWithOptions(cfg.NATSURL, nats.Subjects{
			ShardsPublished: cfg.NATSShardsSubject,
			SearchExecuted:  cfg.NATSSearchSubject,
		}, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		closers = append(closers, queue.Close)
		app.Queue = queue
	}

	app.Loader = usecase.NewCorpusLoader(source, observer, usecase.CorpusLoaderConfig{
		WindowDays:   cfg.ShardWindowDays,
		ShardsPerDay: cfg.ShardsPerDay,
		Concurrency:  cfg.ShardFetchConcurrency,
	}, time.Now)

	var publisher ports.EventPublisher
	if app.Queue != nil {
		publisher = app.Queue
	}
	app.Session = usecase.NewSearchSession(
		app.Loader,
		publisher,
		observer,
		time.Duration(cfg.SearchTimeoutSeconds)*time.Second,
		time.Now,
	)
	app.closeFn = closeAll
	return app, nil
}

// newShardSource selects the shard backend named by cfg.ShardSource. The
// returned store is nil for read-only sources.
func newShardSource(cfg config.Config, db *sql.DB, listener resilience.StateListener) (ports.ShardSource, ports.ShardStore, error) {
	switch cfg.ShardSource {
	case config.ShardSourceFS, "":
		store, err := localfs.New(cfg.ContentDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init content dir: %w", err)
		}
		return store, store, nil
	case config.ShardSourceHTTP:
		if cfg.ContentBaseURL == "" {
			return nil, nil, domain.WrapError(domain.ErrInvalidInput, "init shard source", errors.New("CONTENT_BASE_URL is required for SHARD_SOURCE=http"))
		}
		rc := resilience.DefaultConfig()
		rc.RetryMaxAttempts = cfg.ShardRetryMaxAttempts
		rc.BreakerEnabled = cfg.ShardBreakerEnabled
		executor := resilience.NewExecutor(rc).WithStateListener(listener)
		timeout := time.Duration(cfg.ShardFetchTimeoutSeconds) * time.Second
		return httpsource.New(cfg.ContentBaseURL, timeout, executor), nil, nil
	case config.ShardSourcePostgres:
		if db == nil {
			return nil, nil, domain.WrapError(domain.ErrInvalidInput, "init shard source", errors.New("POSTGRES_DSN is required for SHARD_SOURCE=postgres"))
		}
		repo := postgres.NewShardRepository(db)
		return repo, repo, nil
	default:
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "init shard source", fmt.Errorf("unknown SHARD_SOURCE %q", cfg.ShardSource))
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
