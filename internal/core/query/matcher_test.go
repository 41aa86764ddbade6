package query

import (
	"testing"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

func sampleArticle() domain.Article {
	return domain.Article{
		Title:     "Enterprise AI agents go mainstream",
		Content:   "Vendors are shipping autonomous agents for the enterprise back office.",
		Category:  "AI Tools",
		Source:    "VentureBeat",
		Published: "2025-11-27T09:15:00Z",
		Score:     8.2,
	}
}

func TestMatchEmptyQueryMatchesEverything(t *testing.T) {
	q := newTestParser().Parse("")
	if !Match(sampleArticle(), q) {
		t.Fatalf("expected empty query to match")
	}
	if !Match(domain.Article{Title: "x", Source: "y", Category: "z"}, q) {
		t.Fatalf("expected empty query to match a sparse article")
	}
}

func TestMatchPredicates(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "phrase in title", query: `"ai agents"`, want: true},
		{name: "phrase missing", query: `"agents ai"`, want: false},
		{name: "term in content", query: "office", want: true},
		{name: "term is substring match", query: "vend", want: true},
		{name: "all terms required", query: "office quantum", want: false},
		{name: "or pair either side", query: "quantum OR office", want: true},
		{name: "or pair neither side", query: "quantum OR crypto", want: false},
		{name: "exclusion hit", query: "agents -autonomous", want: false},
		{name: "exclusion miss", query: "agents -hype", want: true},
		{name: "tag substring of category", query: "tag:tools", want: true},
		{name: "tag or logic", query: "tags:crypto;ai", want: true},
		{name: "tag and logic all present", query: "tags:ai+tools", want: true},
		{name: "tag and logic one missing", query: "tags:ai+crypto", want: false},
		{name: "category phrase", query: `category:"AI Tools"`, want: true},
		{name: "source case insensitive", query: "source:venturebeat", want: true},
		{name: "source list", query: "sources:OpenAI;Venture", want: true},
		{name: "source mismatch", query: "source:OpenAI", want: false},
		{name: "excluded source", query: "-source:Venture", want: false},
		{name: "excluded other source", query: "-source:Medium", want: true},
		{name: "date after", query: "date:>2025-11-26", want: true},
		{name: "date after is strict", query: "date:>2025-11-27", want: false},
		{name: "date before", query: "date:<2025-11-28", want: true},
		{name: "date range inclusive", query: "date:2025-11-27..2025-11-27", want: true},
		{name: "date range outside", query: "date:2025-11-01..2025-11-26", want: false},
		{name: "score above", query: "score:>8", want: true},
		{name: "score above is strict", query: "score:>8.2", want: false},
		{name: "score below", query: "score:<9", want: true},
		{name: "malformed score is ignored", query: "score:>abc", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestParser().Parse(tt.query)
			if got := Match(sampleArticle(), q); got != tt.want {
				t.Fatalf("query %q: expected %v, got %v", tt.query, tt.want, got)
			}
		})
	}
}

func TestMatchScoreRangeIsInclusive(t *testing.T) {
	q := newTestParser().Parse("score:7..9")
	tests := []struct {
		score float64
		want  bool
	}{
		{score: 7, want: true},
		{score: 9, want: true},
		{score: 8.5, want: true},
		{score: 6.99, want: false},
		{score: 9.01, want: false},
	}
	for _, tt := range tests {
		a := sampleArticle()
		a.Score = tt.score
		if got := Match(a, q); got != tt.want {
			t.Fatalf("score %.2f: expected %v, got %v", tt.score, tt.want, got)
		}
	}
}

func TestMatchExactDateUsesDayPrecision(t *testing.T) {
	q := newTestParser().Parse("date:2025-11-27")
	for _, published := range []string{"2025-11-27T00:00:00Z", "2025-11-27T23:59:59Z", "2025-11-27 12:00:00", "2025-11-27"} {
		a := sampleArticle()
		a.Published = published
		if !Match(a, q) {
			t.Fatalf("expected %s to match exact date", published)
		}
	}

	a := sampleArticle()
	a.Published = "2025-11-28T00:00:00Z"
	if Match(a, q) {
		t.Fatalf("expected next day not to match")
	}
}

func TestMatchExclusionWinsOverTerms(t *testing.T) {
	a := sampleArticle()
	a.Content = "Pure hype about agents."
	q := newTestParser().Parse("agents -hype")
	if Match(a, q) {
		t.Fatalf("expected exclusion to reject the article")
	}
}

func TestSearchTextJoinsTitleAndContent(t *testing.T) {
	got := SearchText(domain.Article{Title: "Hello", Content: "World"})
	if got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
}
