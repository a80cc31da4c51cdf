package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/eval/dataset"
	"github.com/crewdocs/docmeta/internal/eval/metadata"
	"github.com/crewdocs/docmeta/internal/eval/metrics"
	"github.com/crewdocs/docmeta/internal/eval/results"
	"github.com/crewdocs/docmeta/internal/extraction"
)

type runOptions struct {
	datasetPath  string
	sampleSize   int
	concurrency  int
	outputJSON   string
	outputReport string
	yamlDir      string
	label        string
}

func executeRun(ctx context.Context, cat *catalog.Catalog, opts runOptions, out io.Writer) (*metrics.AggregateResults, error) {
	ctx = withContext(ctx)
	slog.Info("Starting evaluation run", "dataset", opts.datasetPath, "sample", opts.sampleSize, "concurrency", opts.concurrency)

	loader := dataset.NewLoader(opts.datasetPath)
	var (
		records []dataset.SampleRecord
		err     error
	)
	if opts.sampleSize > 0 {
		records, err = loader.LoadSample(opts.sampleSize)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "records", len(records))

	engine := extraction.New(cat, extraction.WithLogger(slog.Default()))

	concurrency := opts.concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	evals := make([]metrics.EvaluationResult, len(records))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i := range records {
		if ctx.Err() != nil {
			wg.Wait()
			return nil, ctx.Err()
		}
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			slog.Debug("Evaluating sample", "id", records[idx].ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			evals[idx] = evaluateSample(engine, records[idx])
		}(i)
	}
	wg.Wait()

	agg := metrics.AggregateEvaluationResults(evals, opts.datasetPath)

	if opts.outputJSON != "" {
		if err := agg.SaveToJSON(opts.outputJSON); err != nil {
			return nil, err
		}
		slog.Info("Saved JSON results", "path", opts.outputJSON)
	}
	if opts.outputReport != "" {
		if err := agg.SaveDetailedReport(opts.outputReport); err != nil {
			return nil, err
		}
		slog.Info("Saved detailed report", "path", opts.outputReport)
	}
	if opts.yamlDir != "" {
		path, err := results.SaveToYAML(opts.yamlDir, results.EvalConfig{
			Label:       opts.label,
			TextSource:  "dataset",
			DatasetPath: opts.datasetPath,
			SampleSize:  len(records),
		}, evals)
		if err != nil {
			return nil, err
		}
		slog.Info("Saved YAML results", "path", path)
	}

	agg.WriteSummary(out)
	if opts.outputJSON != "" {
		fmt.Fprintf(out, "\nGenerate a report with:\n  docmeta eval report --results %s\n", opts.outputJSON)
	}

	return agg, nil
}

// evaluateSample runs the engine on one sample and scores it.
func evaluateSample(engine *extraction.Engine, rec dataset.SampleRecord) metrics.EvaluationResult {
	result := metrics.EvaluationResult{
		SampleID:      rec.ID,
		Filename:      rec.Filename,
		ExpectedTitle: rec.ExpectedTitle,
	}

	if !rec.HasText() && rec.Filename == "" {
		result.Error = "sample has no text and no filename"
		return result
	}

	start := time.Now()
	exp := engine.Explain(extraction.Input{Text: rec.GetText(), Filename: rec.Filename})
	result.ProcessingTime = time.Since(start)

	if err := extraction.Validate(exp.Result); err != nil {
		result.Error = fmt.Sprintf("invalid result: %v", err)
		return result
	}

	result.Result = exp.Result
	result.Strategy = string(exp.Selection.Strategy)
	result.Comparison = metadata.CompareMetadata(rec, exp.Result)

	return result
}
