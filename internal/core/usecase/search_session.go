package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
)

const (
	defaultSearchTimeout  = 10 * time.Second
	publishTimeout        = 2 * time.Second
	sessionLoadFlightName = "corpus"
)

// SearchSession owns the current SearchEngine. The corpus is loaded on
// first use and replaced only by an explicit Reload.
type SearchSession struct {
	loader    *CorpusLoader
	publisher ports.EventPublisher
	observer  ports.SearchObserver
	timeout   time.Duration
	now       func() time.Time

	engine atomic.Pointer[SearchEngine]
	loads  singleflight.Group
}

// NewSearchSession builds a session. publisher may be nil.
func NewSearchSession(
	loader *CorpusLoader,
	publisher ports.EventPublisher,
	observer ports.SearchObserver,
	timeout time.Duration,
	now func() time.Time,
) *SearchSession {
	if observer == nil {
		observer = nopObserver{}
	}
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &SearchSession{
		loader:    loader,
		publisher: publisher,
		observer:  observer,
		timeout:   timeout,
		now:       now,
	}
}

// Search loads the corpus if needed and runs req. The load and the search
// share one timeout; on expiry the caller gets domain.ErrTimeout.
func (s *SearchSession) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	engine, err := s.ensureEngine(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.SearchResponse, 1)
	go func() {
		out <- engine.Search(req)
	}()

	var resp *domain.SearchResponse
	select {
	case resp = <-out:
	case <-ctx.Done():
		return nil, domain.WrapError(domain.ErrTimeout, "search articles", ctx.Err())
	}

	s.observer.ObserveSearch(resp)
	slog.Debug("search_executed",
		"query", resp.Query.RawQuery,
		"sort", string(resp.Sort),
		"count", resp.Count,
		"state", string(resp.State),
		"elapsed", resp.ElapsedSeconds(),
	)
	s.publishSearch(ctx, resp)
	return resp, nil
}

// Facets lists the categories and sources of the current corpus.
func (s *SearchSession) Facets(ctx context.Context) (domain.Facets, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	engine, err := s.ensureEngine(ctx)
	if err != nil {
		return domain.Facets{}, err
	}
	return engine.Corpus().Facets(), nil
}

// Reload loads a fresh corpus and swaps it in. Searches already running
// finish against the previous engine.
func (s *SearchSession) Reload(ctx context.Context) (domain.LoadStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	corpus, stats, err := s.loader.Load(ctx)
	if err != nil {
		return domain.LoadStats{}, fmt.Errorf("reload corpus: %w", err)
	}
	s.engine.Store(NewSearchEngine(corpus, s.now))
	return stats, nil
}

// Engine returns the current engine or nil before the first load.
func (s *SearchSession) Engine() *SearchEngine {
	return s.engine.Load()
}

// ensureEngine shares one in-flight load between concurrent callers; each
// caller stops waiting when its own ctx expires. A failed load is not
// cached, so the next call retries.
func (s *SearchSession) ensureEngine(ctx context.Context) (*SearchEngine, error) {
	if engine := s.engine.Load(); engine != nil {
		return engine, nil
	}

	ch := s.loads.DoChan(sessionLoadFlightName, func() (any, error) {
		if engine := s.engine.Load(); engine != nil {
			return engine, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		corpus, _, err := s.loader.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		engine := NewSearchEngine(corpus, s.now)
		s.engine.Store(engine)
		return engine, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load corpus: %w", res.Err)
		}
		return res.Val.(*SearchEngine), nil
	case <-ctx.Done():
		return nil, domain.WrapError(domain.ErrTimeout, "load corpus", ctx.Err())
	}
}

func (s *SearchSession) publishSearch(ctx context.Context, resp *domain.SearchResponse) {
	if s.publisher == nil {
		return
	}
	event := domain.SearchEvent{
		ID:         uuid.NewString(),
		RawQuery:   resp.Query.RawQuery,
		Sort:       resp.Sort,
		Count:      resp.Count,
		State:      string(resp.State),
		ElapsedMS:  float64(resp.Elapsed.Microseconds()) / 1000,
		ExecutedAt: s.now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishSearchExecuted(pubCtx, event); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("search_event_publish_failed", "event_id", event.ID, "error", err)
	}
}
