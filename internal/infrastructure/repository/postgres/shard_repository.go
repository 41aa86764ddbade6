package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

// ShardRepository serves daily shards imported into the daily_shards table.
type ShardRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewShardRepository(db *sql.DB) *ShardRepository {
	return &ShardRepository{db: db, now: time.Now}
}

func (r *ShardRepository) Fetch(ctx context.Context, key domain.ShardKey) (*domain.Shard, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT date_display, articles
FROM daily_shards
WHERE shard_date = $1 AND shard_index = $2
`, key.Date, key.Index)

	shard := domain.Shard{Date: key.Date}
	var articlesRaw []byte
	if err := row.Scan(&shard.DateDisplay, &articlesRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrShardNotFound, "get shard", fmt.Errorf("%s", key.Filename()))
		}
		return nil, fmt.Errorf("scan shard: %w", err)
	}
	if err := json.Unmarshal(articlesRaw, &shard.Articles); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode shard articles", err)
	}
	return &shard, nil
}

func (r *ShardRepository) Put(ctx context.Context, key domain.ShardKey, shard *domain.Shard) error {
	if shard == nil {
		return domain.WrapError(domain.ErrInvalidInput, "put shard", errors.New("shard is nil"))
	}
	articles := shard.Articles
	if articles == nil {
		articles = []domain.Article{}
	}
	articlesJSON, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("marshal articles: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO daily_shards (shard_date, shard_index, date_display, articles, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (shard_date, shard_index) DO UPDATE
SET date_display = EXCLUDED.date_display, articles = EXCLUDED.articles, updated_at = EXCLUDED.updated_at
`, key.Date, key.Index, shard.DateDisplay, articlesJSON, r.now().UTC())
	if err != nil {
		return fmt.Errorf("upsert shard: %w", err)
	}
	return nil
}
