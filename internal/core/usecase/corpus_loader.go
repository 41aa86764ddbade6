package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
)

const (
	defaultWindowDays   = 60
	defaultShardsPerDay = 5
	defaultConcurrency  = 32
)

type CorpusLoaderConfig struct {
	WindowDays   int
	ShardsPerDay int
	Concurrency  int
}

func (c CorpusLoaderConfig) normalize() CorpusLoaderConfig {
	if c.WindowDays <= 0 {
		c.WindowDays = defaultWindowDays
	}
	if c.ShardsPerDay <= 0 {
		c.ShardsPerDay = defaultShardsPerDay
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	return c
}

// CorpusLoader assembles a Corpus from the most recent WindowDays days of
// shards, today first.
type CorpusLoader struct {
	source   ports.ShardSource
	observer ports.SearchObserver
	cfg      CorpusLoaderConfig
	now      func() time.Time
}

func NewCorpusLoader(
	source ports.ShardSource,
	observer ports.SearchObserver,
	cfg CorpusLoaderConfig,
	now func() time.Time,
) *CorpusLoader {
	if observer == nil {
		observer = nopObserver{}
	}
	if now == nil {
		now = time.Now
	}
	return &CorpusLoader{
		source:   source,
		observer: observer,
		cfg:      cfg.normalize(),
		now:      now,
	}
}

// Keys lists every candidate shard slot in load order.
func (l *CorpusLoader) Keys() []domain.ShardKey {
	today := l.now().UTC()
	keys := make([]domain.ShardKey, 0, l.cfg.WindowDays*l.cfg.ShardsPerDay)
	for day := 0; day < l.cfg.WindowDays; day++ {
		date := today.AddDate(0, 0, -day).Format(time.DateOnly)
		for idx := 0; idx < l.cfg.ShardsPerDay; idx++ {
			keys = append(keys, domain.ShardKey{Date: date, Index: idx})
		}
	}
	return keys
}

// Load fetches every slot concurrently and waits for all of them. A slot
// that fails contributes nothing. If ctx expires first Load stops waiting
// and returns domain.ErrTimeout.
func (l *CorpusLoader) Load(ctx context.Context) (*domain.Corpus, domain.LoadStats, error) {
	started := time.Now()
	keys := l.Keys()
	slots := make([][]domain.Article, len(keys))

	done := make(chan struct{})
	go func() {
		defer close(done)
		var g errgroup.Group
		g.SetLimit(l.cfg.Concurrency)
		for i, key := range keys {
			g.Go(func() error {
				slots[i] = l.fetch(ctx, key)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, domain.LoadStats{}, domain.WrapError(domain.ErrTimeout, "load corpus", ctx.Err())
	}

	stats := domain.LoadStats{Attempted: len(keys)}
	var articles []domain.Article
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		stats.Shards++
		articles = append(articles, slot...)
	}
	stats.Articles = len(articles)
	stats.Duration = time.Since(started)

	l.observer.ObserveCorpus(stats)
	slog.Info("corpus_loaded",
		"attempted", stats.Attempted,
		"shards", stats.Shards,
		"articles", stats.Articles,
		"duration_ms", stats.Duration.Milliseconds(),
	)
	return domain.NewCorpus(articles), stats, nil
}

// fetch returns nil for a failed slot and a non-nil (possibly empty) slice
// for a loaded one.
func (l *CorpusLoader) fetch(ctx context.Context, key domain.ShardKey) []domain.Article {
	shard, err := l.source.Fetch(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrShardNotFound) {
			l.observer.ObserveShardFetch(ports.ShardOutcomeMissing)
			return nil
		}
		l.observer.ObserveShardFetch(ports.ShardOutcomeFailed)
		slog.Debug("shard_fetch_failed", "shard", key.Filename(), "error", err)
		return nil
	}
	if shard == nil {
		l.observer.ObserveShardFetch(ports.ShardOutcomeFailed)
		return nil
	}

	l.observer.ObserveShardFetch(ports.ShardOutcomeLoaded)
	out := make([]domain.Article, 0, len(shard.Articles))
	for _, a := range shard.Articles {
		a.Date = shard.Date
		a.DateDisplay = shard.DateDisplay
		out = append(out, a)
	}
	return out
}

type nopObserver struct{}

func (nopObserver) ObserveShardFetch(string)             {}
func (nopObserver) ObserveCorpus(domain.LoadStats)       {}
func (nopObserver) ObserveSearch(*domain.SearchResponse) {}
