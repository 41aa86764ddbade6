package syntax

import (
	"testing"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/query"
)

func TestCatalogLoads(t *testing.T) {
	items, err := Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(items) != 16 {
		t.Fatalf("expected 16 items, got %d", len(items))
	}
	if items[0].Syntax != `"AI agents"` || items[0].Pattern != `"` {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestEveryCatalogSyntaxParses(t *testing.T) {
	items, err := Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	parser := query.NewParser(func() time.Time { return time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC) })
	for _, item := range items {
		q := parser.Parse(item.Syntax)
		if q.IsEmpty() {
			t.Fatalf("syntax %q (%s) parsed into an empty query", item.Syntax, item.Title)
		}
		if len(q.Ignored) != 0 {
			t.Fatalf("syntax %q left ignored fragments %v", item.Syntax, q.Ignored)
		}
	}
}

func TestFilter(t *testing.T) {
	items, err := Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	if got := Filter(items, "  "); len(got) != len(items) {
		t.Fatalf("expected blank query to return all items, got %d", len(got))
	}

	got := Filter(items, "RANGE")
	if len(got) != 2 {
		t.Fatalf("expected date and score range items, got %+v", got)
	}

	got = Filter(items, "score:>")
	titles := map[string]bool{}
	for _, item := range got {
		titles[item.Title] = true
	}
	if !titles["Score Greater Than"] || !titles["Score Range"] {
		t.Fatalf("expected score items via pattern match, got %v", titles)
	}

	if got := Filter(items, "x or y"); len(got) != 0 {
		t.Fatalf("expected pattern match to be case-sensitive, got %+v", got)
	}
	got = Filter(items, "x OR y")
	if len(got) != 1 || got[0].Title != "OR Operator" {
		t.Fatalf("expected OR operator item, got %+v", got)
	}
}

func TestParseRejectsIncompleteItems(t *testing.T) {
	if _, err := Parse([]byte("items:\n  - title: Broken\n")); err == nil {
		t.Fatalf("expected error for missing syntax")
	}
	if _, err := Parse([]byte("items: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}
