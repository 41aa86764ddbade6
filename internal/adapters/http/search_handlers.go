package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/export/xlsx"
	"github.com/JCZoom/techpulse-blog/internal/presenter"
	"github.com/JCZoom/techpulse-blog/internal/syntax"
)

type searchResponse struct {
	Query          domain.ParsedQuery `json:"query"`
	Sort           domain.SortMode    `json:"sort"`
	State          domain.SearchState `json:"state"`
	Count          int                `json:"count"`
	CorpusTotal    int                `json:"corpus_total"`
	ElapsedSeconds string             `json:"elapsed_seconds"`
	Summary        string             `json:"summary"`
	Notice         *presenter.Notice  `json:"notice,omitempty"`
	Results        []presenter.Card   `json:"results"`
}

type searchErrorResponse struct {
	Error  string           `json:"error"`
	Notice presenter.Notice `json:"notice"`
}

// bindSearchRequest reads q, sort and limit from the query string.
func (rt *Router) bindSearchRequest(r *http.Request) (domain.SearchRequest, error) {
	var (
		q     *string
		sort  *string
		limit *int
	)
	params := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", params, &q); err != nil {
		return domain.SearchRequest{}, domain.WrapError(domain.ErrInvalidInput, "bind q", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "sort", params, &sort); err != nil {
		return domain.SearchRequest{}, domain.WrapError(domain.ErrInvalidInput, "bind sort", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", params, &limit); err != nil {
		return domain.SearchRequest{}, domain.WrapError(domain.ErrInvalidInput, "bind limit", err)
	}

	req := domain.SearchRequest{Limit: rt.defaultLimit}
	if q != nil {
		req.Query = *q
	}
	mode, err := domain.ParseSortMode(deref(sort))
	if err != nil {
		return domain.SearchRequest{}, err
	}
	req.Sort = mode
	if limit != nil {
		if *limit < 0 {
			return domain.SearchRequest{}, domain.WrapError(domain.ErrInvalidInput, "bind limit", errors.New("limit must be >= 0"))
		}
		req.Limit = *limit
	}
	return req, nil
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	req, err := rt.bindSearchRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := rt.searcher.Search(r.Context(), req)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), searchErrorResponse{
			Error:  err.Error(),
			Notice: presenter.NoticeForError(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:          resp.Query,
		Sort:           resp.Sort,
		State:          resp.State,
		Count:          resp.Count,
		CorpusTotal:    resp.CorpusTotal,
		ElapsedSeconds: resp.ElapsedSeconds(),
		Summary:        presenter.Summary(resp),
		Notice:         presenter.NoticeForState(resp.State),
		Results:        presenter.NewCards(resp.Results, rt.now()),
	})
}

func (rt *Router) exportSearch(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	req, err := rt.bindSearchRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := rt.searcher.Search(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf, resp); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) facets(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	facets, err := rt.searcher.Facets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (rt *Router) syntaxHelp(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	items, err := syntax.Catalog()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": syntax.Filter(items, r.URL.Query().Get("q")),
	})
}

func (rt *Router) popularQueries(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if rt.analytics == nil {
		writeError(w, r, domain.WrapError(domain.ErrUnavailable, "popular queries", errors.New("search analytics is not configured")))
		return
	}
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "bind limit", err))
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	queries, err := rt.analytics.Popular(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if queries == nil {
		queries = []domain.PopularQuery{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"queries": queries})
}

func (rt *Router) reloadCorpus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if !isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.adminAPIKey) {
		writeError(w, r, domain.WrapError(domain.ErrUnauthorized, "reload corpus", errors.New("admin bearer token required")))
		return
	}
	if rt.reloader == nil {
		writeError(w, r, domain.WrapError(domain.ErrUnavailable, "reload corpus", errors.New("reload is not configured")))
		return
	}
	stats, err := rt.reloader.Reload(r.Context())
	if rt.metrics != nil {
		rt.metrics.ObserveReload("http", err)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attempted":   stats.Attempted,
		"shards":      stats.Shards,
		"articles":    stats.Articles,
		"duration_ms": stats.Duration.Milliseconds(),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
