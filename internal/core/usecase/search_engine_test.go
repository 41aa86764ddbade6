package usecase

import (
	"testing"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

func engineCorpus() *domain.Corpus {
	return domain.NewCorpus([]domain.Article{
		{ID: "old-high", Title: "Crypto winter thaws", Content: "Blockchain funding returns.", Category: "Crypto", Source: "CoinDesk", Published: "2025-10-01T08:00:00Z", Score: 9.5},
		{ID: "fresh-mid", Title: "AI agents in the enterprise", Content: "A survey of rollouts.", Category: "Enterprise AI", Source: "VentureBeat", Published: "2025-11-27T06:00:00Z", Score: 7.1},
		{ID: "mid-low", Title: "Weekly roundup", Content: "Notes on ai agents and crypto.", Category: "AI", Source: "TechPulse", Published: "2025-11-15T10:00:00Z", Score: 6.0},
	})
}

func resultIDs(resp *domain.SearchResponse) []string {
	out := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, r.ID)
	}
	return out
}

func TestSearchEngineEndToEndScenario(t *testing.T) {
	corpus := domain.NewCorpus([]domain.Article{{
		Title:     "AI agents rise",
		Content:   "...",
		Category:  "AI",
		Source:    "TechPulse",
		Published: "2025-11-27T00:00:00Z",
		Score:     8.2,
	}})
	engine := NewSearchEngine(corpus, fixedClock)

	resp := engine.Search(domain.SearchRequest{Query: `"AI agents" tag:ai score:>8`})
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Fatalf("expected exactly one result, got %d", resp.Count)
	}
	minimum := 20 + 5 + 16.4 + 4.9
	if resp.Results[0].SearchScore < minimum {
		t.Fatalf("expected relevance >= %.2f, got %.2f", minimum, resp.Results[0].SearchScore)
	}
	if resp.State != domain.StateOK {
		t.Fatalf("expected state ok, got %s", resp.State)
	}
	if resp.Sort != domain.SortRelevance {
		t.Fatalf("expected default relevance sort, got %s", resp.Sort)
	}
	if resp.Query.RawQuery != `"AI agents" tag:ai score:>8` {
		t.Fatalf("expected parsed query echoed, got %q", resp.Query.RawQuery)
	}
}

func TestSearchEngineEmptyQueryReturnsCorpusPerSortMode(t *testing.T) {
	engine := NewSearchEngine(engineCorpus(), fixedClock)

	tests := []struct {
		sort domain.SortMode
		want []string
	}{
		{sort: domain.SortDate, want: []string{"fresh-mid", "mid-low", "old-high"}},
		{sort: domain.SortScore, want: []string{"old-high", "fresh-mid", "mid-low"}},
	}
	for _, tt := range tests {
		resp := engine.Search(domain.SearchRequest{Sort: tt.sort})
		got := resultIDs(resp)
		if resp.Count != 3 || len(got) != 3 {
			t.Fatalf("sort %s: expected full corpus, got %v", tt.sort, got)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Fatalf("sort %s: expected %v, got %v", tt.sort, tt.want, got)
			}
		}
	}
}

func TestSearchEngineRelevanceOrdering(t *testing.T) {
	engine := NewSearchEngine(engineCorpus(), fixedClock)
	resp := engine.Search(domain.SearchRequest{Query: `"ai agents"`, Sort: domain.SortRelevance})
	got := resultIDs(resp)
	if len(got) != 2 || got[0] != "fresh-mid" || got[1] != "mid-low" {
		t.Fatalf("expected title match first, got %v", got)
	}
	if resp.Results[0].SearchScore <= resp.Results[1].SearchScore {
		t.Fatalf("expected descending relevance, got %.2f then %.2f", resp.Results[0].SearchScore, resp.Results[1].SearchScore)
	}
}

func TestSearchEngineStates(t *testing.T) {
	empty := NewSearchEngine(domain.NewCorpus(nil), fixedClock)
	resp := empty.Search(domain.SearchRequest{Query: "anything"})
	if resp.State != domain.StateNoContent || resp.Count != 0 {
		t.Fatalf("expected no_content on empty corpus, got %s/%d", resp.State, resp.Count)
	}
	if resp.Results == nil {
		t.Fatalf("expected non-nil empty results")
	}

	engine := NewSearchEngine(engineCorpus(), fixedClock)
	resp = engine.Search(domain.SearchRequest{Query: "quantum"})
	if resp.State != domain.StateNoMatches {
		t.Fatalf("expected no_matches, got %s", resp.State)
	}
	if resp.CorpusTotal != 3 {
		t.Fatalf("expected corpus total 3, got %d", resp.CorpusTotal)
	}
}

func TestSearchEngineLimitKeepsTotalCount(t *testing.T) {
	engine := NewSearchEngine(engineCorpus(), fixedClock)
	resp := engine.Search(domain.SearchRequest{Sort: domain.SortScore, Limit: 1})
	if resp.Count != 3 {
		t.Fatalf("expected total count 3, got %d", resp.Count)
	}
	if got := resultIDs(resp); len(got) != 1 || got[0] != "old-high" {
		t.Fatalf("expected top scored article only, got %v", got)
	}
}

func TestSearchEngineRepeatedSearchesAreIndependent(t *testing.T) {
	engine := NewSearchEngine(engineCorpus(), fixedClock)
	first := engine.Search(domain.SearchRequest{Query: "crypto -winter"})
	_ = engine.Search(domain.SearchRequest{Query: "tag:enterprise"})
	again := engine.Search(domain.SearchRequest{Query: "crypto -winter"})

	a, b := resultIDs(first), resultIDs(again)
	if len(a) != len(b) || len(a) != 1 || a[0] != b[0] || a[0] != "mid-low" {
		t.Fatalf("expected identical results, got %v and %v", a, b)
	}
}
