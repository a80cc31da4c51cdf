package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/crewdocs/docmeta/internal/eval/metadata"
	"github.com/crewdocs/docmeta/internal/extraction"
)

// EvaluationResult is the outcome for one labeled sample.
type EvaluationResult struct {
	SampleID       string                       `json:"sample_id"`
	Filename       string                       `json:"filename,omitempty"`
	ExpectedTitle  string                       `json:"expected_title"`
	Strategy       string                       `json:"strategy,omitempty"`
	Result         extraction.Result            `json:"result"`
	Comparison     *metadata.MetadataComparison `json:"comparison,omitempty"`
	ProcessingTime time.Duration                `json:"processing_time"`
	Error          string                       `json:"error,omitempty"`
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int `json:"total_records"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	// Field-level statistics keyed by metadata field name
	Fields map[string]*FieldStats `json:"fields"`

	// Overall
	OverallAccuracy float64 `json:"overall_accuracy"`
	MedianScore     float64 `json:"median_score"`
	MinScore        float64 `json:"min_score"`
	MaxScore        float64 `json:"max_score"`

	// Which selection strategy produced the title
	Strategies map[string]int `json:"strategies"`

	// Timing
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	// Detailed results
	Results []EvaluationResult `json:"results"`

	// Metadata
	EvaluationDate time.Time `json:"evaluation_date"`
	DatasetPath    string    `json:"dataset_path"`
	SampleSize     int       `json:"sample_size"`
}

// FieldStats contains accuracy and calibration for one field.
type FieldStats struct {
	Correct       int     `json:"correct"`
	ExactMatches  int     `json:"exact_matches"`
	FuzzyMatches  int     `json:"fuzzy_matches"`
	NoMatches     int     `json:"no_matches"`
	MissingFields int     `json:"missing_fields"`
	Spurious      int     `json:"spurious"`
	BothEmpty     int     `json:"both_empty"`
	AverageScore  float64 `json:"average_score"`
	Accuracy      float64 `json:"accuracy"`

	// Calibration: mean engine confidence split by correctness
	MeanConfidenceCorrect   float64            `json:"mean_confidence_correct"`
	MeanConfidenceIncorrect float64            `json:"mean_confidence_incorrect"`
	Buckets                 []ConfidenceBucket `json:"buckets"`
	Scores                  []float64          `json:"-"`

	confidence map[bool][]float64
}

// ConfidenceBucket counts how often a field was right within a confidence band.
type ConfidenceBucket struct {
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Count    int     `json:"count"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// bucketEdges split confidences into bands; the last band includes 1.0.
var bucketEdges = []float64{0, 0.5, 0.8, 1.0}

func newFieldStats() *FieldStats {
	stats := &FieldStats{
		Scores:     []float64{},
		confidence: map[bool][]float64{},
	}
	for i := 0; i+1 < len(bucketEdges); i++ {
		stats.Buckets = append(stats.Buckets, ConfidenceBucket{Low: bucketEdges[i], High: bucketEdges[i+1]})
	}
	return stats
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, datasetPath string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Fields:         make(map[string]*FieldStats, len(metadata.Fields)),
		Strategies:     map[string]int{},
		Results:        results,
		EvaluationDate: time.Now(),
		DatasetPath:    datasetPath,
		SampleSize:     len(results),
	}
	for _, f := range metadata.Fields {
		agg.Fields[f] = newFieldStats()
	}

	var (
		scores          []float64
		totalDuration   time.Duration
		successDuration time.Duration
	)

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime
		agg.Strategies[strategyName(result.Strategy)]++

		if result.Comparison == nil {
			continue
		}

		for _, f := range metadata.Fields {
			if fc, ok := result.Comparison.Fields[f]; ok {
				aggregateFieldStats(agg.Fields[f], fc)
			}
		}
		scores = append(scores, result.Comparison.OverallScore)
	}

	for _, stats := range agg.Fields {
		finishFieldStats(stats)
	}

	if len(scores) > 0 {
		agg.OverallAccuracy = calculateAverage(scores)
		sort.Float64s(scores)
		mid := len(scores) / 2
		if len(scores)%2 == 0 {
			agg.MedianScore = (scores[mid-1] + scores[mid]) / 2
		} else {
			agg.MedianScore = scores[mid]
		}
		agg.MinScore = scores[0]
		agg.MaxScore = scores[len(scores)-1]
	}
	if agg.SuccessCount > 0 {
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}
	agg.TotalProcessingTime = totalDuration

	return agg
}

func strategyName(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// aggregateFieldStats updates field statistics
func aggregateFieldStats(stats *FieldStats, fc metadata.FieldComparison) {
	stats.Scores = append(stats.Scores, fc.Score)
	if fc.Correct {
		stats.Correct++
	}

	switch fc.Match {
	case metadata.MatchExact:
		stats.ExactMatches++
	case metadata.MatchFuzzyHigh, metadata.MatchFuzzyMedium, metadata.MatchFuzzyLow:
		stats.FuzzyMatches++
	case metadata.MatchNone:
		stats.NoMatches++
	case metadata.MatchMissing:
		stats.MissingFields++
	case metadata.MatchSpurious:
		stats.Spurious++
	case metadata.MatchBothEmpty:
		stats.BothEmpty++
	}

	stats.confidence[fc.Correct] = append(stats.confidence[fc.Correct], fc.Confidence)
	for i := range stats.Buckets {
		b := &stats.Buckets[i]
		last := i == len(stats.Buckets)-1
		if fc.Confidence >= b.Low && (fc.Confidence < b.High || (last && fc.Confidence <= b.High)) {
			b.Count++
			if fc.Correct {
				b.Correct++
			}
			break
		}
	}
}

func finishFieldStats(stats *FieldStats) {
	stats.AverageScore = calculateAverage(stats.Scores)
	if n := len(stats.Scores); n > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(n)
	}
	stats.MeanConfidenceCorrect = calculateAverage(stats.confidence[true])
	stats.MeanConfidenceIncorrect = calculateAverage(stats.confidence[false])
	for i := range stats.Buckets {
		if b := &stats.Buckets[i]; b.Count > 0 {
			b.Accuracy = float64(b.Correct) / float64(b.Count)
		}
	}
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// PrintSummary prints a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary() {
	a.WriteSummary(os.Stdout)
}

// WriteSummary writes the summary PrintSummary prints.
func (a *AggregateResults) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "DOCMETA EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Dataset: %s\n", a.DatasetPath)
	fmt.Fprintf(w, "Sample Size: %d records\n", a.SampleSize)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Records: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "TITLE STRATEGIES")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	names := make([]string, 0, len(a.Strategies))
	for name := range a.Strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %d\n", name, a.Strategies[name])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FIELD-LEVEL ACCURACY")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, f := range metadata.Fields {
		if stats, ok := a.Fields[f]; ok {
			writeFieldStats(w, f, stats)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERALL SCORE")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Overall Accuracy: %.2f%% (%.3f)\n", a.OverallAccuracy*100, a.OverallAccuracy)
	fmt.Fprintf(w, "Median: %.3f  Min: %.3f  Max: %.3f\n", a.MedianScore, a.MinScore, a.MaxScore)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func writeFieldStats(w io.Writer, fieldName string, stats *FieldStats) {
	fmt.Fprintf(w, "\n%s:\n", fieldName)
	fmt.Fprintf(w, "  Accuracy: %.2f%% (%d correct)\n", stats.Accuracy*100, stats.Correct)
	fmt.Fprintf(w, "  Average Score: %.3f\n", stats.AverageScore)
	fmt.Fprintf(w, "  Exact: %d  Fuzzy: %d  No match: %d  Missing: %d  Spurious: %d  Both empty: %d\n",
		stats.ExactMatches, stats.FuzzyMatches, stats.NoMatches, stats.MissingFields, stats.Spurious, stats.BothEmpty)
	fmt.Fprintf(w, "  Mean confidence: %.2f when correct, %.2f when wrong\n",
		stats.MeanConfidenceCorrect, stats.MeanConfidenceIncorrect)
	for _, b := range stats.Buckets {
		if b.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "    confidence %.1f-%.1f: %d/%d correct (%.0f%%)\n", b.Low, b.High, b.Correct, b.Count, b.Accuracy*100)
	}
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}

// LoadFromJSON reads results written by SaveToJSON.
func LoadFromJSON(filepath string) (*AggregateResults, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var agg AggregateResults
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return &agg, nil
}

// SaveDetailedReport saves a detailed report with individual results
func (a *AggregateResults) SaveDetailedReport(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	return a.WriteDetailedReport(file)
}

// WriteDetailedReport writes one block per sample.
func (a *AggregateResults) WriteDetailedReport(w io.Writer) error {
	fmt.Fprintf(w, "DOCMETA EVALUATION DETAILED REPORT\n")
	fmt.Fprintf(w, "Generated: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Dataset: %s\n", a.DatasetPath)
	separator := strings.Repeat("=", 80)
	fmt.Fprintf(w, "%s\n\n", separator)

	dash := strings.Repeat("-", 80)
	for i, result := range a.Results {
		fmt.Fprintf(w, "RECORD %d: %s\n", i+1, result.SampleID)
		fmt.Fprintf(w, "%s\n", dash)
		if result.Filename != "" {
			fmt.Fprintf(w, "Filename: %s\n", result.Filename)
		}
		fmt.Fprintf(w, "Strategy: %s\n", strategyName(result.Strategy))
		fmt.Fprintf(w, "Processing Time: %s\n", result.ProcessingTime)

		if result.Error != "" {
			fmt.Fprintf(w, "ERROR: %s\n", result.Error)
		} else if result.Comparison != nil {
			fmt.Fprintf(w, "\nField Comparisons:\n")
			for _, f := range metadata.Fields {
				fc := result.Comparison.Fields[f]
				fmt.Fprintf(w, "  %-10s %.2f (%s, conf %.2f) - Expected: %s, Actual: %s\n",
					f+":", fc.Score, fc.Match, fc.Confidence, fc.Expected, fc.Actual)
			}
			for _, note := range result.Result.Notes {
				fmt.Fprintf(w, "  Note: %s\n", note)
			}
			fmt.Fprintf(w, "\nOverall Score: %.2f%%\n", result.Comparison.OverallScore*100)
		}

		if _, err := fmt.Fprintf(w, "\n%s\n\n", separator); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}
