package usecase

import (
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/core/query"
)

// SearchEngine evaluates queries against one immutable Corpus. It holds no
// state between searches and is safe for concurrent use.
type SearchEngine struct {
	corpus *domain.Corpus
	parser *query.Parser
	now    func() time.Time
}

// NewSearchEngine binds an engine to corpus. now is the evaluation clock
// used for relative dates and the recency bonus.
func NewSearchEngine(corpus *domain.Corpus, now func() time.Time) *SearchEngine {
	if corpus == nil {
		corpus = domain.NewCorpus(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &SearchEngine{
		corpus: corpus,
		parser: query.NewParser(now),
		now:    now,
	}
}

func (e *SearchEngine) Corpus() *domain.Corpus {
	return e.corpus
}

// Search runs parse, match, score and sort over the corpus.
func (e *SearchEngine) Search(req domain.SearchRequest) *domain.SearchResponse {
	started := time.Now()

	mode := req.Sort
	if mode == "" {
		mode = domain.SortRelevance
	}

	parsed := e.parser.Parse(req.Query)
	evaluatedAt := e.now()

	results := make([]domain.ScoredArticle, 0)
	for _, a := range e.corpus.Articles() {
		if !query.Match(a, parsed) {
			continue
		}
		results = append(results, domain.ScoredArticle{
			Article:     a,
			SearchScore: query.Score(a, parsed, evaluatedAt),
		})
	}
	query.Sort(results, mode)

	count := len(results)
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}

	return &domain.SearchResponse{
		Results:     results,
		Count:       count,
		Elapsed:     time.Since(started),
		Query:       parsed,
		Sort:        mode,
		State:       searchState(e.corpus.Len(), count),
		CorpusTotal: e.corpus.Len(),
	}
}

func searchState(corpusSize, matches int) domain.SearchState {
	switch {
	case corpusSize == 0:
		return domain.StateNoContent
	case matches == 0:
		return domain.StateNoMatches
	default:
		return domain.StateOK
	}
}
