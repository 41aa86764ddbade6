package domain

type TagLogic string

const (
	TagLogicAnd TagLogic = "AND"
	TagLogicOr  TagLogic = "OR"
)

// DateFilter compares the article's date-only prefix against Date using
// Operator, one of "=", ">" or "<".
type DateFilter struct {
	Operator string `json:"operator"`
	Date     string `json:"date"`
}

// DateRange is an inclusive [From, To] bound on the date-only prefix.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ScoreFilter is a strict ">" or "<" comparison on the quality score.
type ScoreFilter struct {
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
}

// ScoreRange is an inclusive [Min, Max] bound on the quality score.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ParsedQuery is the structured decomposition of one raw query string.
// Free text, phrases and OR pairs are case-folded; tags and sources keep
// their case and are folded at match time.
type ParsedQuery struct {
	Phrases        []string     `json:"phrases"`
	Terms          []string     `json:"terms"`
	ExcludeTerms   []string     `json:"excludeTerms"`
	OrTerms        [][2]string  `json:"orTerms"`
	Tags           []string     `json:"tags"`
	TagLogic       TagLogic     `json:"tagLogic"`
	Sources        []string     `json:"sources"`
	ExcludeSources []string     `json:"excludeSources"`
	DateFilter     *DateFilter  `json:"dateFilter"`
	DateRange      *DateRange   `json:"dateRange"`
	ScoreFilter    *ScoreFilter `json:"scoreFilter"`
	ScoreRange     *ScoreRange  `json:"scoreRange"`
	RawQuery       string       `json:"rawQuery"`

	// Ignored lists fragments that were recognised as filter syntax but
	// carried a value that could not be interpreted.
	Ignored []string `json:"ignored,omitempty"`
}

func NewParsedQuery(raw string) ParsedQuery {
	return ParsedQuery{
		Phrases:        []string{},
		Terms:          []string{},
		ExcludeTerms:   []string{},
		OrTerms:        [][2]string{},
		Tags:           []string{},
		TagLogic:       TagLogicOr,
		Sources:        []string{},
		ExcludeSources: []string{},
		RawQuery:       raw,
	}
}

// IsEmpty reports whether the query carries no constraint at all.
func (q ParsedQuery) IsEmpty() bool {
	return len(q.Phrases) == 0 &&
		len(q.Terms) == 0 &&
		len(q.ExcludeTerms) == 0 &&
		len(q.OrTerms) == 0 &&
		len(q.Tags) == 0 &&
		len(q.Sources) == 0 &&
		len(q.ExcludeSources) == 0 &&
		q.DateFilter == nil &&
		q.DateRange == nil &&
		q.ScoreFilter == nil &&
		q.ScoreRange == nil
}
