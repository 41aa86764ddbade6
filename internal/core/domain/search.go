package domain

import (
	"fmt"
	"strings"
	"time"
)

type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortDate      SortMode = "date"
	SortScore     SortMode = "score"
)

// ParseSortMode resolves a caller-supplied sort token. An empty token
// selects relevance.
func ParseSortMode(raw string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortRelevance:
		return SortRelevance, nil
	case SortDate:
		return SortDate, nil
	case SortScore:
		return SortScore, nil
	default:
		return "", WrapError(ErrInvalidInput, "parse sort mode", fmt.Errorf("unknown sort %q", raw))
	}
}

// ScoredArticle is an Article annotated with its computed relevance.
type ScoredArticle struct {
	Article
	SearchScore float64 `json:"searchScore"`
}

type SearchState string

const (
	StateOK        SearchState = "ok"
	StateNoMatches SearchState = "no_matches"
	StateNoContent SearchState = "no_content"
)

// SearchResponse is the output of one search over a Corpus.
type SearchResponse struct {
	Results     []ScoredArticle `json:"results"`
	Count       int             `json:"count"`
	Elapsed     time.Duration   `json:"-"`
	Query       ParsedQuery     `json:"query"`
	Sort        SortMode        `json:"sort"`
	State       SearchState     `json:"state"`
	CorpusTotal int             `json:"corpus_total"`
}

// ElapsedSeconds formats the elapsed time as seconds with three decimals.
func (r SearchResponse) ElapsedSeconds() string {
	return fmt.Sprintf("%.3f", r.Elapsed.Seconds())
}

// SearchEvent records one executed search for analytics.
type SearchEvent struct {
	ID         string    `json:"id"`
	RawQuery   string    `json:"raw_query"`
	Sort       SortMode  `json:"sort"`
	Count      int       `json:"count"`
	State      string    `json:"state"`
	ElapsedMS  float64   `json:"elapsed_ms"`
	ExecutedAt time.Time `json:"executed_at"`
}

// PopularQuery is an aggregate over logged searches.
type PopularQuery struct {
	RawQuery string    `json:"raw_query"`
	Searches int       `json:"searches"`
	LastSeen time.Time `json:"last_seen"`
}

// SearchRequest is one caller invocation of the query engine. Limit <= 0
// returns every match.
type SearchRequest struct {
	Query string
	Sort  SortMode
	Limit int
}
