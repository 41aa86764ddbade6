package httpadapter

import (
	"context"
	"net/http"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/config"
	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

var testNow = time.Date(2025, 11, 27, 12, 0, 0, 0, time.UTC)

type searcherFake struct {
	resp   *domain.SearchResponse
	err    error
	facets domain.Facets
	last   domain.SearchRequest
}

func (f *searcherFake) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &domain.SearchResponse{
		Results: []domain.ScoredArticle{},
		Query:   domain.NewParsedQuery(req.Query),
		Sort:    req.Sort,
		State:   domain.StateNoContent,
	}, nil
}

func (f *searcherFake) Facets(context.Context) (domain.Facets, error) {
	return f.facets, f.err
}

type reloaderFake struct {
	calls int
	stats domain.LoadStats
	err   error
}

func (f *reloaderFake) Reload(context.Context) (domain.LoadStats, error) {
	f.calls++
	return f.stats, f.err
}

type analyticsFake struct {
	limit   int
	popular []domain.PopularQuery
}

func (f *analyticsFake) Record(context.Context, domain.SearchEvent) error { return nil }

func (f *analyticsFake) Popular(_ context.Context, limit int) ([]domain.PopularQuery, error) {
	f.limit = limit
	return f.popular, nil
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, &searcherFake{}, nil, nil).WithClock(func() time.Time { return testNow }).Handler()
}

func sampleResponse() *domain.SearchResponse {
	q := domain.NewParsedQuery("agents")
	q.Terms = []string{"agents"}
	return &domain.SearchResponse{
		Results: []domain.ScoredArticle{{
			Article: domain.Article{
				Title:     "AI agents rise",
				Category:  "AI",
				Source:    "TechPulse",
				Published: "2025-11-27T09:00:00Z",
				Score:     8.2,
				WordCount: 450,
			},
			SearchScore: 41.456,
		}},
		Count:       1,
		Elapsed:     4 * time.Millisecond,
		Query:       q,
		Sort:        domain.SortRelevance,
		State:       domain.StateOK,
		CorpusTotal: 10,
	}
}
