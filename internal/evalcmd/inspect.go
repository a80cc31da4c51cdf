package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/eval/dataset"
	"github.com/crewdocs/docmeta/internal/extraction"
)

type inspectOptions struct {
	datasetPath string
	limit       int
	interactive bool
	showText    bool
	extract     bool
	catalog     *catalog.Catalog
	stdin       io.Reader
}

const previewChars = 500

func executeInspect(ctx context.Context, out io.Writer, opts inspectOptions) error {
	ctx = withContext(ctx)
	loader := dataset.NewLoader(opts.datasetPath)

	var records []dataset.SampleRecord
	var err error
	if opts.limit > 0 {
		records, err = loader.LoadSample(opts.limit)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	var engine *extraction.Engine
	if opts.extract {
		cat := opts.catalog
		if cat == nil {
			cat = catalog.Default()
		}
		engine = extraction.New(cat)
	}

	stdin := opts.stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	reader := bufio.NewReader(stdin)

	fmt.Fprintf(out, "Loaded %d samples from %s\n", len(records), opts.datasetPath)
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out)

	for i := range records {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInspection interrupted.")
			return nil
		default:
		}

		record := &records[i]
		fmt.Fprintf(out, "SAMPLE %d/%d\n", i+1, len(records))
		fmt.Fprintln(out, strings.Repeat("-", 80))
		fmt.Fprintf(out, "ID:              %s\n", record.ID)
		fmt.Fprintf(out, "Filename:        %s\n", record.Filename)
		fmt.Fprintf(out, "Language:        %s\n", record.Language)
		fmt.Fprintf(out, "Document tag:    %s\n", record.DocumentTag)
		fmt.Fprintf(out, "Expected title:  %s\n", record.ExpectedTitle)
		fmt.Fprintf(out, "Expected issued: %s\n", record.ExpectedIssuedOn)
		fmt.Fprintf(out, "Expected expiry: %s\n", record.ExpectedExpiresOn)
		fmt.Fprintln(out)

		text := record.GetText()
		if opts.showText {
			fmt.Fprintf(out, "Text Length: %d characters, %d words\n", len([]rune(text)), len(strings.Fields(text)))
			fmt.Fprintln(out, strings.Repeat("-", 80))
			fmt.Fprintln(out, truncate(text, previewChars))
			fmt.Fprintln(out, strings.Repeat("-", 80))
		}

		if engine != nil {
			exp := engine.Explain(extraction.Input{Text: text, Filename: record.Filename})
			fmt.Fprintf(out, "Strategy:        %s (score %d)\n", strategyLabel(string(exp.Selection.Strategy)), exp.Selection.Score)
			fmt.Fprintf(out, "Candidate:       %s\n", exp.Selection.Value)
			fmt.Fprintf(out, "Title:           %s (%.2f)\n", exp.Result.Title, exp.Result.Confidence.Title)
			fmt.Fprintf(out, "Issued:          %s (%.2f)\n", exp.Result.IssuedOn, exp.Result.Confidence.IssuedOn)
			fmt.Fprintf(out, "Expires:         %s (%.2f)\n", exp.Result.ExpiresOn, exp.Result.Confidence.ExpiresOn)
			for _, note := range exp.Result.Notes {
				fmt.Fprintf(out, "Note:            %s\n", note)
			}
		}

		fmt.Fprintln(out)

		if opts.interactive {
			fmt.Fprint(out, "Press Enter to continue to next sample (or Ctrl+C to quit)...")

			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			select {
			case <-ctx.Done():
				fmt.Fprintln(out, "\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Fprintln(out)
			}
		}
	}

	return nil
}

func strategyLabel(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
