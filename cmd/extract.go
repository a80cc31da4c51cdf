package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crewdocs/docmeta/internal/extraction"
	"github.com/crewdocs/docmeta/internal/ocr"
	"github.com/crewdocs/docmeta/internal/providers"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		textFile  string
		filename  string
		provider  string
		model     string
		fromStdin bool
		explain   bool
	)

	cmd := &cobra.Command{
		Use:   "extract [FILE...]",
		Short: "Extract title and dates from documents",
		Long: `Extract the canonical title, issue date and expiry date from each document
and print one JSON result per input.

PDFs are read from their text layer, images go to the configured OCR provider,
text files are used as is. --text-file and --stdin skip OCR entirely.`,
		Example: `  # A scanned certificate, OCR with the default provider
  docmeta extract stcw-basic-safety.jpg

  # Text already extracted elsewhere
  pdftotext cert.pdf - | docmeta extract --stdin --filename cert.pdf

  # Show the title strategy and the date candidates as well
  docmeta extract --text-file passport.txt --explain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			engine := extraction.New(cat, extraction.WithLogger(slog.Default()))

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			emit := func(in extraction.Input) error {
				var out any
				if explain {
					out = engine.Explain(in)
				} else {
					out = engine.Extract(in)
				}
				if err := encoder.Encode(out); err != nil {
					return fmt.Errorf("failed to write result: %w", err)
				}
				return nil
			}

			switch {
			case fromStdin:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return emit(extraction.Input{Text: string(data), Filename: filename})
			case textFile != "":
				data, err := os.ReadFile(textFile)
				if err != nil {
					return fmt.Errorf("failed to read text file: %w", err)
				}
				name := filename
				if name == "" {
					name = filepath.Base(textFile)
				}
				return emit(extraction.Input{Text: string(data), Filename: name})
			case len(args) == 0:
				return fmt.Errorf("provide FILE arguments, --text-file or --stdin")
			}

			svc := ocr.NewService(a.config().OCRService(), slog.Default())
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				name := filepath.Base(path)
				text, err := svc.ExtractText(cmd.Context(), providers.Request{
					Filename:    name,
					ContentType: mime.TypeByExtension(filepath.Ext(path)),
					Data:        data,
					Model:       model,
				}, provider)
				if err != nil {
					return err
				}
				if filename != "" && len(args) == 1 {
					name = filename
				}
				if err := emit(extraction.Input{Text: text, Filename: name}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&textFile, "text-file", "", "Read already extracted text from this file")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read already extracted text from stdin")
	cmd.Flags().StringVar(&filename, "filename", "", "Original file name, used as a title hint")
	cmd.Flags().StringVar(&provider, "provider", "", "OCR provider for images (ollama, openai or gemini)")
	cmd.Flags().StringVar(&model, "model", "", "OCR model name (defaults to the provider's default)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Include the intermediate title and date results")
	cmd.MarkFlagsMutuallyExclusive("stdin", "text-file")

	return cmd
}
