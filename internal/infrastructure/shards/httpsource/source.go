package httpsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/resilience"
)

const (
	shardPathPrefix = "/content/daily/"
	maxShardBytes   = 32 << 20
	fetchOperation  = "shard_fetch"
)

// Source reads daily shards published as static JSON files under
// {baseURL}/content/daily/.
type Source struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

// New builds a Source. executor may be nil to fetch without retry or
// circuit breaking.
func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Source {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Source{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

func (s *Source) URL(key domain.ShardKey) string {
	return s.baseURL + shardPathPrefix + key.Filename()
}

func (s *Source) Fetch(ctx context.Context, key domain.ShardKey) (*domain.Shard, error) {
	if s.executor == nil {
		return s.get(ctx, key)
	}
	shard, err := resilience.Do(ctx, s.executor, fetchOperation, func(ctx context.Context) (*domain.Shard, error) {
		return s.get(ctx, key)
	}, resilience.ClassifyHTTP)
	if err != nil {
		return nil, resilience.WrapTemporary("fetch shard", err, resilience.ClassifyHTTP)
	}
	return shard, nil
}

func (s *Source) get(ctx context.Context, key domain.ShardKey) (*domain.Shard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("create shard request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shard request %s: %w", key.Filename(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.WrapError(domain.ErrShardNotFound, "fetch shard", errors.New(key.Filename()))
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &resilience.HTTPStatusError{
			Operation:  "fetch shard " + key.Filename(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	var shard domain.Shard
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxShardBytes)).Decode(&shard); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode shard "+key.Filename(), err)
	}
	return &shard, nil
}
