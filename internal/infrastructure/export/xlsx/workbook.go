package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

const (
	ResultsSheet = "Results"
	QuerySheet   = "Query"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var resultHeader = []any{"Rank", "Title", "Source", "Category", "Published", "Quality", "Relevance", "URL"}

// Write renders resp as a workbook with a results sheet and a sheet
// describing the interpreted query.
func Write(w io.Writer, resp *domain.SearchResponse) error {
	if resp == nil {
		return domain.WrapError(domain.ErrInvalidInput, "export xlsx", fmt.Errorf("response is nil"))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("rename results sheet: %w", err)
	}
	if err := writeResults(f, resp.Results); err != nil {
		return err
	}
	if _, err := f.NewSheet(QuerySheet); err != nil {
		return fmt.Errorf("create query sheet: %w", err)
	}
	if err := writeQuery(f, resp); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeResults(f *excelize.File, results []domain.ScoredArticle) error {
	if err := f.SetSheetRow(ResultsSheet, "A1", &resultHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(ResultsSheet, "A1", "H1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve cell: %w", err)
		}
		row := []any{
			i + 1,
			r.Title,
			r.Source,
			r.Category,
			r.PublishedDate(),
			r.Score,
			roundTo(r.SearchScore, 2),
			r.URL,
		}
		if err := f.SetSheetRow(ResultsSheet, cell, &row); err != nil {
			return fmt.Errorf("write result row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(ResultsSheet, "B", "B", 60); err != nil {
		return fmt.Errorf("size title column: %w", err)
	}
	return nil
}

func writeQuery(f *excelize.File, resp *domain.SearchResponse) error {
	q := resp.Query
	rows := [][]any{
		{"Query", q.RawQuery},
		{"Sort", string(resp.Sort)},
		{"Matches", resp.Count},
		{"Corpus", resp.CorpusTotal},
		{"State", string(resp.State)},
		{"Seconds", resp.ElapsedSeconds()},
		{"Phrases", strings.Join(q.Phrases, "; ")},
		{"Terms", strings.Join(q.Terms, "; ")},
		{"Excluded", strings.Join(q.ExcludeTerms, "; ")},
		{"Tags", strings.Join(q.Tags, "; ") + tagLogicSuffix(q)},
		{"Sources", strings.Join(q.Sources, "; ")},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("resolve cell: %w", err)
		}
		if err := f.SetSheetRow(QuerySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write query row: %w", err)
		}
	}
	return nil
}

func tagLogicSuffix(q domain.ParsedQuery) string {
	if len(q.Tags) < 2 {
		return ""
	}
	return " (" + string(q.TagLogic) + ")"
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}
