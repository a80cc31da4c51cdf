package evalcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crewdocs/docmeta/internal/eval/metrics"
	"github.com/crewdocs/docmeta/internal/eval/results"
)

func executeReport(stdout io.Writer, resultsPath, format, output string) error {
	format = strings.ToLower(format)
	if format == "xlsx" && output == "" {
		return fmt.Errorf("--output is required for xlsx reports")
	}

	w := stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch ext := strings.ToLower(filepath.Ext(resultsPath)); ext {
	case ".yaml", ".yml":
		spec, err := results.LoadYAML(resultsPath)
		if err != nil {
			return err
		}
		return writeYAMLReport(w, spec, format)
	default:
		agg, err := metrics.LoadFromJSON(resultsPath)
		if err != nil {
			return err
		}
		return writeReport(w, agg, format)
	}
}

func writeReport(w io.Writer, agg *metrics.AggregateResults, format string) error {
	switch format {
	case "text":
		agg.WriteSummary(w)
		fmt.Fprintln(w)
		return agg.WriteDetailedReport(w)
	case "json":
		return encodeJSON(w, agg)
	case "csv":
		return agg.WriteCSV(w)
	case "xlsx":
		data, err := agg.XLSX()
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write xlsx: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeYAMLReport(w io.Writer, spec *results.EvalSpec, format string) error {
	switch format {
	case "json":
		return encodeJSON(w, spec)
	case "text":
	default:
		return fmt.Errorf("format %s is not available for YAML results (use text or json)", format)
	}

	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Evaluation %s (%s)\n", spec.Config.Label, spec.Config.Timestamp)
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Dataset:  %s\n", spec.Config.DatasetPath)
	fmt.Fprintf(w, "Samples:  %d\n", spec.Config.SampleSize)
	fmt.Fprintln(w)

	for i, r := range spec.Results {
		fmt.Fprintf(w, "[%d] %s  %.2f%%\n", i+1, r.Identifier, r.OverallScore*100)
		fmt.Fprintf(w, "  Expected: %s\n", truncate(r.ExpectedTitle, 80))
		fmt.Fprintf(w, "  Title:    %s\n", truncate(r.Title, 80))

		fields := make([]string, 0, len(r.FieldScores))
		for field := range r.FieldScores {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(w, "    %s: %.2f%%\n", field, r.FieldScores[field]*100)
		}
	}
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
