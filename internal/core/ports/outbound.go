package ports

import (
	"context"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

// ShardSource retrieves one daily shard. A missing shard is reported with
// domain.ErrShardNotFound.
type ShardSource interface {
	Fetch(ctx context.Context, key domain.ShardKey) (*domain.Shard, error)
}

// ShardStore persists shards for sources that read from a database.
type ShardStore interface {
	Put(ctx context.Context, key domain.ShardKey, shard *domain.Shard) error
}

// EventPublisher emits search lifecycle events.
type EventPublisher interface {
	PublishSearchExecuted(ctx context.Context, event domain.SearchEvent) error
	PublishShardsPublished(ctx context.Context, dates []string) error
}

// EventSubscriber consumes search lifecycle events.
type EventSubscriber interface {
	SubscribeSearchExecuted(ctx context.Context, handler func(context.Context, domain.SearchEvent) error) error
	SubscribeShardsPublished(ctx context.Context, handler func(context.Context, []string) error) error
}

// SearchLogStore persists executed searches.
type SearchLogStore interface {
	Append(ctx context.Context, event domain.SearchEvent) error
	Popular(ctx context.Context, limit int) ([]domain.PopularQuery, error)
}

// Shard fetch outcomes reported to SearchObserver.
const (
	ShardOutcomeLoaded  = "loaded"
	ShardOutcomeMissing = "missing"
	ShardOutcomeFailed  = "failed"
)

// SearchObserver receives instrumentation callbacks from the use cases.
type SearchObserver interface {
	ObserveShardFetch(outcome string)
	ObserveCorpus(stats domain.LoadStats)
	ObserveSearch(resp *domain.SearchResponse)
}
