package query

import (
	"sort"
	"strings"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

const (
	phraseTitleWeight   = 20.0
	phraseContentWeight = 10.0
	termTitleWeight     = 10.0
	termContentWeight   = 3.0
	tagFilterBonus      = 5.0
	qualityMultiplier   = 2.0
	recencyMaxBonus     = 5.0
	recencyDecayPerDay  = 0.1
)

// Score computes the additive relevance of a matched article at now.
func Score(a domain.Article, q domain.ParsedQuery, now time.Time) float64 {
	title := strings.ToLower(a.Title)
	content := strings.ToLower(a.Content)
	score := 0.0

	for _, phrase := range q.Phrases {
		score += locationWeight(title, content, phrase, phraseTitleWeight, phraseContentWeight)
	}
	for _, term := range q.Terms {
		score += locationWeight(title, content, term, termTitleWeight, termContentWeight)
	}
	for _, pair := range q.OrTerms {
		for _, term := range pair {
			score += locationWeight(title, content, term, termTitleWeight, termContentWeight)
		}
	}
	if len(q.Tags) > 0 {
		score += tagFilterBonus
	}

	score += a.Score * qualityMultiplier
	score += RecencyBonus(a, now)
	return score
}

func locationWeight(title, content, needle string, inTitle, inContent float64) float64 {
	switch {
	case strings.Contains(title, needle):
		return inTitle
	case strings.Contains(content, needle):
		return inContent
	default:
		return 0
	}
}

// RecencyBonus is max(0, 5 - ageInDays*0.1). Unparseable timestamps earn
// nothing.
func RecencyBonus(a domain.Article, now time.Time) float64 {
	published, ok := a.PublishedAt()
	if !ok {
		return 0
	}
	ageDays := now.Sub(published).Hours() / 24
	bonus := recencyMaxBonus - ageDays*recencyDecayPerDay
	if bonus < 0 {
		return 0
	}
	return bonus
}

// Sort orders results in place. Unknown modes keep corpus order.
func Sort(results []domain.ScoredArticle, mode domain.SortMode) {
	switch mode {
	case domain.SortRelevance:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].SearchScore > results[j].SearchScore
		})
	case domain.SortDate:
		sort.SliceStable(results, func(i, j int) bool {
			ti, okI := results[i].PublishedAt()
			tj, okJ := results[j].PublishedAt()
			if okI != okJ {
				return okI
			}
			return ti.After(tj)
		})
	case domain.SortScore:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
}
