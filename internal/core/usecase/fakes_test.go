package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

var testNow = time.Date(2025, 11, 27, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type shardSourceFake struct {
	mu      sync.Mutex
	shards  map[string]*domain.Shard
	errs    map[string]error
	block   chan struct{}
	fetched []domain.ShardKey
}

func newShardSourceFake() *shardSourceFake {
	return &shardSourceFake{
		shards: map[string]*domain.Shard{},
		errs:   map[string]error{},
	}
}

func (f *shardSourceFake) put(key domain.ShardKey, shard *domain.Shard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shards[key.Filename()] = shard
}

func (f *shardSourceFake) Fetch(_ context.Context, key domain.ShardKey) (*domain.Shard, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, key)
	if err, ok := f.errs[key.Filename()]; ok {
		return nil, err
	}
	shard, ok := f.shards[key.Filename()]
	if !ok {
		return nil, domain.WrapError(domain.ErrShardNotFound, "fetch shard", errors.New(key.Filename()))
	}
	return shard, nil
}

func (f *shardSourceFake) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

type observerFake struct {
	mu       sync.Mutex
	outcomes map[string]int
	corpus   []domain.LoadStats
	searches int
}

func newObserverFake() *observerFake {
	return &observerFake{outcomes: map[string]int{}}
}

func (f *observerFake) ObserveShardFetch(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[outcome]++
}

func (f *observerFake) ObserveCorpus(stats domain.LoadStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corpus = append(f.corpus, stats)
}

func (f *observerFake) ObserveSearch(*domain.SearchResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.SearchEvent
	err    error
}

func (f *publisherFake) PublishSearchExecuted(_ context.Context, event domain.SearchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *publisherFake) PublishShardsPublished(context.Context, []string) error {
	return errors.New("not implemented")
}

type searchLogStoreFake struct {
	appended []domain.SearchEvent
	limit    int
	popular  []domain.PopularQuery
	err      error
}

func (f *searchLogStoreFake) Append(_ context.Context, event domain.SearchEvent) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, event)
	return nil
}

func (f *searchLogStoreFake) Popular(_ context.Context, limit int) ([]domain.PopularQuery, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.limit = limit
	return f.popular, nil
}
