package ports

import (
	"context"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

// ArticleSearcher is the inbound contract for running queries over the
// loaded corpus.
type ArticleSearcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
	Facets(ctx context.Context) (domain.Facets, error)
}

// CorpusReloader rebuilds the corpus from the shard source and swaps it in.
type CorpusReloader interface {
	Reload(ctx context.Context) (domain.LoadStats, error)
}

// SearchAnalytics records executed searches and reports on them.
type SearchAnalytics interface {
	Record(ctx context.Context, event domain.SearchEvent) error
	Popular(ctx context.Context, limit int) ([]domain.PopularQuery, error)
}
