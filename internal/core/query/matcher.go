package query

import (
	"strings"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

// SearchText is the lower-cased text phrase and term predicates run against.
func SearchText(a domain.Article) string {
	return strings.ToLower(a.Title + " " + a.Content)
}

// Match reports whether a satisfies every predicate present in q. Empty
// predicate families are skipped, so an empty query matches everything.
// a.Category is assumed present when q carries tags.
func Match(a domain.Article, q domain.ParsedQuery) bool {
	text := SearchText(a)

	for _, phrase := range q.Phrases {
		if !strings.Contains(text, phrase) {
			return false
		}
	}
	for _, term := range q.Terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	for _, pair := range q.OrTerms {
		if !strings.Contains(text, pair[0]) && !strings.Contains(text, pair[1]) {
			return false
		}
	}
	for _, term := range q.ExcludeTerms {
		if strings.Contains(text, term) {
			return false
		}
	}

	if !matchTags(strings.ToLower(a.Category), q.Tags, q.TagLogic) {
		return false
	}

	source := strings.ToLower(a.Source)
	if len(q.Sources) > 0 && !containsAny(source, q.Sources) {
		return false
	}
	if containsAny(source, q.ExcludeSources) {
		return false
	}

	if !matchDate(a.PublishedDate(), q.DateFilter, q.DateRange) {
		return false
	}
	return matchScore(a.Score, q.ScoreFilter, q.ScoreRange)
}

func matchTags(category string, tags []string, logic domain.TagLogic) bool {
	if len(tags) == 0 {
		return true
	}
	if logic == domain.TagLogicAnd {
		for _, tag := range tags {
			if !strings.Contains(category, strings.ToLower(tag)) {
				return false
			}
		}
		return true
	}
	return containsAny(category, tags)
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

func matchDate(date string, filter *domain.DateFilter, rng *domain.DateRange) bool {
	if filter != nil {
		switch filter.Operator {
		case ">":
			if date <= filter.Date {
				return false
			}
		case "<":
			if date >= filter.Date {
				return false
			}
		case "=":
			if date != filter.Date {
				return false
			}
		}
	}
	if rng != nil && (date < rng.From || date > rng.To) {
		return false
	}
	return true
}

func matchScore(score float64, filter *domain.ScoreFilter, rng *domain.ScoreRange) bool {
	if filter != nil {
		switch filter.Operator {
		case ">":
			if score <= filter.Value {
				return false
			}
		case "<":
			if score >= filter.Value {
				return false
			}
		}
	}
	if rng != nil && (score < rng.Min || score > rng.Max) {
		return false
	}
	return true
}
