package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

// Rule extracts one syntax family from the query text that earlier rules
// left unconsumed. Apply receives the submatches of one pattern hit and
// reports whether the hit is claimed; claimed spans are cut out of the
// text before the next rule runs.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Apply   func(m []string, q *domain.ParsedQuery, ctx RuleContext) bool
}

// RuleContext carries what a rule may need beyond its own match.
type RuleContext struct {
	Now    time.Time
	Before string
}

// Parser turns raw query strings into ParsedQuery values. The zero value
// is not usable; build one with NewParser.
type Parser struct {
	rules []Rule
	now   func() time.Time
}

// NewParser returns a parser running the default rule order. now is
// consulted once per Parse to resolve relative dates; nil means time.Now.
func NewParser(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{rules: DefaultRules(), now: now}
}

// Rules returns the ordered extraction rules.
func (p *Parser) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Parse decomposes raw into a ParsedQuery. It never fails: fragments it
// cannot interpret are recorded in ParsedQuery.Ignored.
func (p *Parser) Parse(raw string) domain.ParsedQuery {
	trimmed := strings.TrimSpace(raw)
	q := domain.NewParsedQuery(trimmed)
	if trimmed == "" {
		return q
	}

	ctx := RuleContext{Now: p.now().UTC()}
	remaining := raw
	for _, r := range p.rules {
		remaining = ApplyRule(r, remaining, &q, ctx)
	}
	parseFreeText(remaining, &q)
	return q
}

// ApplyRule runs a single rule over text and returns the text with every
// claimed span replaced by a space.
func ApplyRule(r Rule, text string, q *domain.ParsedQuery, ctx RuleContext) string {
	hits := r.Pattern.FindAllStringSubmatchIndex(text, -1)
	if len(hits) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, hit := range hits {
		groups := make([]string, len(hit)/2)
		for i := range groups {
			if hit[2*i] >= 0 {
				groups[i] = text[hit[2*i]:hit[2*i+1]]
			}
		}
		ctx.Before = text[:hit[0]]
		if !r.Apply(groups, q, ctx) {
			continue
		}
		b.WriteString(text[last:hit[0]])
		b.WriteByte(' ')
		last = hit[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// DefaultRules returns the extraction rules in the order they must run.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "phrase", Pattern: phrasePattern, Apply: applyPhrase},
		{Name: "tag", Pattern: tagPattern, Apply: applyTag},
		{Name: "category", Pattern: categoryPattern, Apply: applyCategory},
		{Name: "source", Pattern: sourcePattern, Apply: applySource},
		{Name: "exclude-source", Pattern: excludeSourcePattern, Apply: applyExcludeSource},
		{Name: "date", Pattern: datePattern, Apply: applyDate},
		{Name: "relative-date", Pattern: relativeDatePattern, Apply: applyRelativeDate},
		{Name: "score", Pattern: scorePattern, Apply: applyScore},
	}
}

var (
	phrasePattern        = regexp.MustCompile(`"([^"]+)"`)
	tagPattern           = regexp.MustCompile(`(?i)(?:^|\s)tags?:(\S+)`)
	categoryPattern      = regexp.MustCompile(`(?i)(?:^|\s)category:"([^"]+)"`)
	sourcePattern        = regexp.MustCompile(`(?i)(?:^|\s)sources?:(\S+)`)
	excludeSourcePattern = regexp.MustCompile(`(?i)(?:^|\s)-source:(\S+)`)
	datePattern          = regexp.MustCompile(`(?i)(?:^|\s)date:(\S+)`)
	relativeDatePattern  = regexp.MustCompile(`(?i)(?:^|\s)(this|last):(\S+)`)
	scorePattern         = regexp.MustCompile(`(?i)(?:^|\s)score:(\S+)`)

	lastDaysPattern     = regexp.MustCompile(`(\d+)days?`)
	leadingFloatPattern = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// The quoted value of category:"..." belongs to the category rule.
func applyPhrase(m []string, q *domain.ParsedQuery, ctx RuleContext) bool {
	if strings.HasSuffix(strings.ToLower(ctx.Before), "category:") {
		return false
	}
	q.Phrases = append(q.Phrases, strings.ToLower(m[1]))
	return true
}

func applyTag(m []string, q *domain.ParsedQuery, _ RuleContext) bool {
	value := m[1]
	switch {
	case strings.Contains(value, "+"):
		q.Tags = append(q.Tags, splitList(value, "+")...)
		q.TagLogic = domain.TagLogicAnd
	case strings.Contains(value, ";"):
		q.Tags = append(q.Tags, splitList(value, ";")...)
		q.TagLogic = domain.TagLogicOr
	default:
		q.Tags = append(q.Tags, strings.TrimSpace(value))
	}
	return true
}

func applyCategory(m []string, q *domain.ParsedQuery, _ RuleContext) bool {
	if category := strings.TrimSpace(m[1]); category != "" {
		q.Tags = append(q.Tags, category)
	}
	return true
}

func applySource(m []string, q *domain.ParsedQuery, _ RuleContext) bool {
	q.Sources = append(q.Sources, splitList(m[1], ";")...)
	return true
}

func applyExcludeSource(m []string, q *domain.ParsedQuery, _ RuleContext) bool {
	q.ExcludeSources = append(q.ExcludeSources, strings.TrimSpace(m[1]))
	return true
}

func applyDate(m []string, q *domain.ParsedQuery, _ RuleContext) bool {
	value := m[1]
	switch {
	case strings.Contains(value, ".."):
		parts := strings.Split(value, "..")
		q.DateRange = &domain.DateRange{From: parts[0], To: parts[1]}
	case strings.HasPrefix(value, ">") || strings.HasPrefix(value, "<"):
		q.DateFilter = &domain.DateFilter{Operator: value[:1], Date: value[1:]}
	default:
		q.DateFilter = &domain.DateFilter{Operator: "=", Date: value}
	}
	return true
}

func applyRelativeDate(m []string, q *domain.ParsedQuery, ctx RuleContext) bool {
	filter, ok := ResolveRelativeDate(m[1], m[2], ctx.Now)
	if !ok {
		// An unresolved form still replaces any earlier date filter.
		q.DateFilter = nil
		q.Ignored = append(q.Ignored, strings.TrimSpace(m[0]))
		return true
	}
	q.DateFilter = &filter
	return true
}

// ResolveRelativeDate turns this:week, this:month and last:<N>days into a
// ">" filter on a concrete UTC cutoff date. Timeframe and unit are
// case-sensitive.
func ResolveRelativeDate(timeframe, unit string, now time.Time) (domain.DateFilter, bool) {
	now = now.UTC()

	switch timeframe {
	case "this":
		switch unit {
		case "week":
			start := now.AddDate(0, 0, -int(now.Weekday()))
			return domain.DateFilter{Operator: ">", Date: start.Format(time.DateOnly)}, true
		case "month":
			start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
			return domain.DateFilter{Operator: ">", Date: start.Format(time.DateOnly)}, true
		}
	case "last":
		days := lastDaysPattern.FindStringSubmatch(unit)
		if days == nil {
			break
		}
		n, err := strconv.Atoi(days[1])
		if err != nil {
			break
		}
		return domain.DateFilter{Operator: ">", Date: now.AddDate(0, 0, -n).Format(time.DateOnly)}, true
	}
	return domain.DateFilter{}, false
}

func applyScore(m []string, q *domain.ParsedQuery, _ RuleContext) bool {
	value := m[1]
	fragment := strings.TrimSpace(m[0])

	switch {
	case strings.Contains(value, ".."):
		parts := strings.Split(value, "..")
		lo, okLo := parseNumber(parts[0])
		hi, okHi := parseNumber(parts[1])
		if !okLo || !okHi {
			q.Ignored = append(q.Ignored, fragment)
			return true
		}
		q.ScoreRange = &domain.ScoreRange{Min: lo, Max: hi}
	case strings.HasPrefix(value, ">") || strings.HasPrefix(value, "<"):
		threshold, ok := parseLeadingFloat(value[1:])
		if !ok {
			q.Ignored = append(q.Ignored, fragment)
			return true
		}
		q.ScoreFilter = &domain.ScoreFilter{Operator: value[:1], Value: threshold}
	default:
		q.Ignored = append(q.Ignored, fragment)
	}
	return true
}

// parseFreeText handles whatever the extraction rules left behind.
func parseFreeText(remaining string, q *domain.ParsedQuery) {
	words := strings.Fields(remaining)
	for i := 0; i < len(words); {
		word := words[i]

		if i+2 < len(words) && strings.EqualFold(words[i+1], "OR") {
			q.OrTerms = append(q.OrTerms, [2]string{strings.ToLower(word), strings.ToLower(words[i+2])})
			i += 3
			continue
		}

		if strings.HasPrefix(word, "-") {
			if term := strings.ToLower(word[1:]); term != "" {
				q.ExcludeTerms = append(q.ExcludeTerms, term)
			} else {
				q.Ignored = append(q.Ignored, word)
			}
		} else {
			q.Terms = append(q.Terms, strings.ToLower(word))
		}
		i++
	}
}

func splitList(value, sep string) []string {
	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseNumber accepts a whole numeric string; an empty string is zero.
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseLeadingFloat reads the longest numeric prefix of raw.
func parseLeadingFloat(raw string) (float64, bool) {
	prefix := leadingFloatPattern.FindString(raw)
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(prefix), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
