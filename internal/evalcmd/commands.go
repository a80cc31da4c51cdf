package evalcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crewdocs/docmeta/internal/catalog"
)

// CatalogSource returns the catalog the engine should use.
type CatalogSource func() (*catalog.Catalog, error)

// NewRunCmd creates the run command
func NewRunCmd(src CatalogSource) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the extraction engine over labeled samples",
		Long: `Run the extraction engine over a labeled dataset and score the results.

Each sample carries the document text and the expected title, issue date and
expiry date. Titles are scored by Levenshtein similarity, dates must match
exactly. The summary reports per-field accuracy and how well the engine's
confidence separates right answers from wrong ones.`,
		Example: `  # Evaluate the first 50 samples
  docmeta eval run --dataset ./samples.jsonl --sample 50

  # Evaluate everything with 8 workers and keep a YAML copy
  docmeta eval run --dataset ./samples.parquet --sample -1 --concurrency 8 --yaml-dir evals`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", opts.datasetPath)
			}
			if opts.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}

			cat, err := src()
			if err != nil {
				return err
			}

			_, err = executeRun(cmd.Context(), cat, opts, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path to a .jsonl or .parquet file of labeled samples (required)")
	cmd.Flags().IntVar(&opts.sampleSize, "sample", 10, "Number of samples to evaluate (-1 for all)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Samples evaluated in parallel")
	cmd.Flags().StringVar(&opts.outputJSON, "output-json", "eval_results.json", "Path to output JSON results file")
	cmd.Flags().StringVar(&opts.outputReport, "output-report", "eval_report.txt", "Path to output detailed report file")
	cmd.Flags().StringVar(&opts.yamlDir, "yaml-dir", "", "Directory for a YAML copy of the run (empty to skip)")
	cmd.Flags().StringVar(&opts.label, "label", "docmeta", "Label used in the YAML file name")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a saved evaluation as text, JSON, CSV or XLSX",
		Long: `Render the results of a previous "eval run".

The input is the JSON file written by --output-json. YAML files written by
--yaml-dir can be rendered as text or JSON.`,
		Example: `  # Print a text report
  docmeta eval report --results eval_results.json

  # Write a spreadsheet
  docmeta eval report --results eval_results.json --format xlsx --output eval.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format, output)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "eval_results.json", "Path to saved results (.json or .yaml)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv, xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout (required for xlsx)")

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd(src CatalogSource) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect dataset samples and what the engine makes of them",
		Long: `Inspect samples from a parquet or jsonl dataset file.

Shows the labels and a preview of the text. With --extract the engine runs on
each sample and the chosen title strategy, dates and notes are printed next to
the expected values.`,
		Example: `  # Inspect first 5 samples interactively
  docmeta eval inspect --dataset ./samples.jsonl --limit 5 --interactive

  # Compare engine output with the labels
  docmeta eval inspect --dataset ./samples.jsonl --extract --text=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if opts.extract {
				cat, err := src()
				if err != nil {
					return err
				}
				opts.catalog = cat
			}
			return executeInspect(ctx, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path to parquet or jsonl dataset file (required)")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Number of samples to inspect (0 for all)")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "Pause after each sample (press Enter to continue)")
	cmd.Flags().BoolVar(&opts.showText, "text", true, "Show the document text")
	cmd.Flags().BoolVar(&opts.extract, "extract", false, "Run the engine and show its result")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// NewConvertCmd creates the convert command
func NewConvertCmd() *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a JSONL dataset to Parquet",
		Example: `  docmeta eval convert --input samples.jsonl --output samples.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeConvert(cmd.OutOrStdout(), input, output)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Source .jsonl file (required)")
	cmd.Flags().StringVar(&output, "output", "", "Destination .parquet file (required)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func withContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
