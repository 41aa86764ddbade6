package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

type SearchLogRepository struct {
	db *sql.DB
}

func NewSearchLogRepository(db *sql.DB) *SearchLogRepository {
	return &SearchLogRepository{db: db}
}

// Append stores event. Redelivered events are ignored.
func (r *SearchLogRepository) Append(ctx context.Context, event domain.SearchEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO search_log (id, raw_query, sort_mode, result_count, state, elapsed_ms, executed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO NOTHING
`, event.ID, event.RawQuery, string(event.Sort), event.Count, event.State, event.ElapsedMS, event.ExecutedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert search log: %w", err)
	}
	return nil
}

func (r *SearchLogRepository) Popular(ctx context.Context, limit int) ([]domain.PopularQuery, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT raw_query, COUNT(*) AS searches, MAX(executed_at) AS last_seen
FROM search_log
WHERE raw_query <> ''
GROUP BY raw_query
ORDER BY searches DESC, last_seen DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query popular searches: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PopularQuery, 0, limit)
	for rows.Next() {
		var item domain.PopularQuery
		if err := rows.Scan(&item.RawQuery, &item.Searches, &item.LastSeen); err != nil {
			return nil, fmt.Errorf("scan popular search: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular searches: %w", err)
	}
	return out, nil
}
