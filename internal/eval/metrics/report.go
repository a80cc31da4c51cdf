package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/crewdocs/docmeta/internal/eval/metadata"
	"github.com/crewdocs/docmeta/internal/export"
)

var resultHeaders = []string{
	"sample_id", "filename", "strategy",
	"expected_title", "title", "title_match", "title_confidence",
	"expected_issued_on", "issued_on", "issued_match", "issued_confidence",
	"expected_expires_on", "expires_on", "expires_match", "expires_confidence",
	"overall_score", "processing_ms", "error",
}

func resultRow(r EvaluationResult) []string {
	row := []string{r.SampleID, r.Filename, r.Strategy}
	for _, f := range metadata.Fields {
		var fc metadata.FieldComparison
		if r.Comparison != nil {
			fc = r.Comparison.Fields[f]
		}
		row = append(row, fc.Expected, fc.Actual, fc.Match, formatFloat(fc.Confidence))
	}
	score := ""
	if r.Comparison != nil {
		score = formatFloat(r.Comparison.OverallScore)
	}
	return append(row, score, strconv.FormatInt(r.ProcessingTime.Milliseconds(), 10), r.Error)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// WriteCSV writes one row per sample.
func (a *AggregateResults) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeaders); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range a.Results {
		if err := cw.Write(resultRow(r)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", r.SampleID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX renders a workbook with a per-field summary sheet and a results sheet.
func (a *AggregateResults) XLSX() ([]byte, error) {
	summary := export.Sheet{
		Name: "Summary",
		Headers: []string{
			"field", "accuracy", "average_score", "correct", "exact", "fuzzy",
			"no_match", "missing", "spurious", "both_empty",
			"confidence_when_correct", "confidence_when_wrong",
		},
		Widths: []float64{14},
	}
	for _, f := range metadata.Fields {
		s, ok := a.Fields[f]
		if !ok {
			continue
		}
		summary.Rows = append(summary.Rows, []any{
			f, s.Accuracy, s.AverageScore, s.Correct, s.ExactMatches, s.FuzzyMatches,
			s.NoMatches, s.MissingFields, s.Spurious, s.BothEmpty,
			s.MeanConfidenceCorrect, s.MeanConfidenceIncorrect,
		})
	}
	summary.Rows = append(summary.Rows, []any{"overall", a.OverallAccuracy})

	details := export.Sheet{
		Name:    "Results",
		Headers: resultHeaders,
		Widths:  []float64{14, 24, 12, 36, 36},
	}
	for _, r := range a.Results {
		row := resultRow(r)
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		details.Rows = append(details.Rows, cells)
	}

	return export.Workbook(summary, details)
}
