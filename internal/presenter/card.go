package presenter

import (
	"fmt"
	"math"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

const wordsPerMinute = 200

// Card is the display form of one search result.
type Card struct {
	Title       string  `json:"title"`
	URL         string  `json:"url,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Category    string  `json:"category"`
	Source      string  `json:"source"`
	Author      string  `json:"author,omitempty"`
	Published   string  `json:"published"`
	DateDisplay string  `json:"date_display,omitempty"`
	Score       float64 `json:"score"`
	ScoreClass  string  `json:"score_class,omitempty"`
	SearchScore float64 `json:"search_score"`
	ReadTime    string  `json:"read_time"`
	TimeAgo     string  `json:"time_ago,omitempty"`
}

func NewCard(r domain.ScoredArticle, now time.Time) Card {
	return Card{
		Title:       r.Title,
		URL:         r.URL,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Source:      r.Source,
		Author:      r.Author,
		Published:   r.Published,
		DateDisplay: r.DateDisplay,
		Score:       r.Score,
		ScoreClass:  ScoreClass(r.Score),
		SearchScore: math.Round(r.SearchScore*100) / 100,
		ReadTime:    ReadTime(r.WordCount),
		TimeAgo:     TimeAgo(r.Article, now),
	}
}

func NewCards(results []domain.ScoredArticle, now time.Time) []Card {
	out := make([]Card, 0, len(results))
	for _, r := range results {
		out = append(out, NewCard(r, now))
	}
	return out
}

// ReadTime estimates reading time at 200 words per minute, rounding up.
func ReadTime(wordCount int) string {
	if wordCount <= 0 {
		return "1 min"
	}
	minutes := (wordCount + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d min", minutes)
}

// ScoreClass buckets the quality score into the badge style.
func ScoreClass(score float64) string {
	switch {
	case score >= 8:
		return "high"
	case score >= 7:
		return "medium"
	default:
		return ""
	}
}

// TimeAgo renders the article age relative to now. Older than a month
// falls back to the calendar date.
func TimeAgo(a domain.Article, now time.Time) string {
	published, ok := a.PublishedAt()
	if !ok {
		return ""
	}
	age := now.Sub(published)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return plural(int(age.Minutes()), "minute") + " ago"
	case age < 24*time.Hour:
		return plural(int(age.Hours()), "hour") + " ago"
	case age < 30*24*time.Hour:
		return plural(int(age.Hours()/24), "day") + " ago"
	default:
		return published.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
