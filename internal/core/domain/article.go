package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Article is one curated blog entry. Title, Source and Category are
// expected to be present for every record entering a Corpus.
type Article struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Content     string  `json:"content,omitempty"`
	Category    string  `json:"category"`
	Source      string  `json:"source"`
	Author      string  `json:"author,omitempty"`
	Published   string  `json:"published"`
	Score       float64 `json:"score"`
	WordCount   int     `json:"word_count,omitempty"`
	URL         string  `json:"url,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Date        string  `json:"date,omitempty"`
	DateDisplay string  `json:"date_display,omitempty"`
}

// PublishedDate returns the date-only prefix of Published. Dates are
// zero-padded ISO strings, so the prefix compares correctly as a string.
func (a Article) PublishedDate() string {
	if i := strings.IndexAny(a.Published, "T "); i >= 0 {
		return a.Published[:i]
	}
	return a.Published
}

var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// PublishedAt parses Published. Timestamps without a zone are read as UTC.
func (a Article) PublishedAt() (time.Time, bool) {
	raw := strings.TrimSpace(a.Published)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ShardKey addresses one daily data file: the calendar date plus the shard
// index (0 is the unsuffixed file, 1..4 map to the _2.._5 continuations).
type ShardKey struct {
	Date  string `json:"date"`
	Index int    `json:"index"`
}

// Suffix returns the filename suffix for the shard index.
func (k ShardKey) Suffix() string {
	if k.Index <= 0 {
		return ""
	}
	return "_" + strconv.Itoa(k.Index+1)
}

// Filename returns the conventional file name, e.g. 2025-11-27_2.json.
func (k ShardKey) Filename() string {
	return k.Date + k.Suffix() + ".json"
}

// Shard is the decoded payload of one daily data file.
type Shard struct {
	Date        string    `json:"date"`
	DateDisplay string    `json:"date_display"`
	Articles    []Article `json:"articles"`
}

// Corpus is the ordered, read-only collection of articles for one search
// session. Duplicates across shards are kept.
type Corpus struct {
	articles []Article
}

func NewCorpus(articles []Article) *Corpus {
	out := make([]Article, len(articles))
	copy(out, articles)
	return &Corpus{articles: out}
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.articles)
}

// Articles returns the backing slice. Callers must not modify it.
func (c *Corpus) Articles() []Article {
	if c == nil {
		return nil
	}
	return c.articles
}

// Facets lists the distinct categories and sources present in a corpus.
type Facets struct {
	Categories []string `json:"categories"`
	Sources    []string `json:"sources"`
}

func (c *Corpus) Facets() Facets {
	categories := make(map[string]struct{})
	sources := make(map[string]struct{})
	for _, a := range c.Articles() {
		if a.Category != "" {
			categories[a.Category] = struct{}{}
		}
		if a.Source != "" {
			sources[a.Source] = struct{}{}
		}
	}
	return Facets{
		Categories: sortedKeys(categories),
		Sources:    sortedKeys(sources),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadStats summarises one corpus load.
type LoadStats struct {
	Attempted int           `json:"attempted"`
	Shards    int           `json:"shards"`
	Articles  int           `json:"articles"`
	Duration  time.Duration `json:"duration"`
}
