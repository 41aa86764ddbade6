package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/ports"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 100
)

// SearchLogProcessor persists search events consumed by the worker and
// serves popular-query aggregates.
type SearchLogProcessor struct {
	store ports.SearchLogStore
}

func NewSearchLogProcessor(store ports.SearchLogStore) *SearchLogProcessor {
	return &SearchLogProcessor{store: store}
}

func (uc *SearchLogProcessor) Record(ctx context.Context, event domain.SearchEvent) error {
	if strings.TrimSpace(event.ID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "record search event", errors.New("event id is required"))
	}
	if event.ExecutedAt.IsZero() {
		return domain.WrapError(domain.ErrInvalidInput, "record search event", errors.New("executed_at is required"))
	}
	event.RawQuery = strings.TrimSpace(event.RawQuery)
	if err := uc.store.Append(ctx, event); err != nil {
		return fmt.Errorf("append search log: %w", err)
	}
	return nil
}

// Popular returns the most frequent queries. limit is clamped to
// [1, maxPopularLimit]; zero selects the default.
func (uc *SearchLogProcessor) Popular(ctx context.Context, limit int) ([]domain.PopularQuery, error) {
	switch {
	case limit <= 0:
		limit = defaultPopularLimit
	case limit > maxPopularLimit:
		limit = maxPopularLimit
	}
	out, err := uc.store.Popular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list popular queries: %w", err)
	}
	return out, nil
}
