package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdocs/docmeta/internal/extraction"
	"github.com/crewdocs/docmeta/internal/handlers"
	"github.com/crewdocs/docmeta/internal/ocr"
	"github.com/crewdocs/docmeta/internal/search"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the extraction HTTP API",
		Long: `Starts the docmeta HTTP API.

Documents posted to /api/extract are turned into text, run through the engine
and kept in memory so a reviewer can confirm or correct the title and dates.
When ELASTICSEARCH_ADDR is set every stored document is also indexed.`,
		Example: `  # Start server on the configured port (default 8888)
  docmeta serve

  # Start server on a custom port
  docmeta serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			if !cmd.Flags().Changed("port") {
				port = cfg.Port
			}

			cat, err := a.catalog()
			if err != nil {
				return err
			}

			opts := handlers.Options{
				Catalog:   cat,
				Engine:    extraction.New(cat, extraction.WithLogger(slog.Default())),
				OCR:       ocr.NewService(cfg.OCRService(), slog.Default()),
				MaxUpload: cfg.MaxUploadBytes(),
			}
			if cfg.Elasticsearch.Addr != "" {
				client, err := search.New(cfg.Elasticsearch.Addr, cfg.Elasticsearch.Index, slog.Default())
				if err != nil {
					return err
				}
				if err := client.Ping(cmd.Context()); err != nil {
					slog.Warn("Elasticsearch unavailable, documents will not be indexed until it is", "addr", cfg.Elasticsearch.Addr, "err", err)
				}
				opts.Indexer = client
			}
			handler := handlers.New(opts)

			addr := ":" + strconv.Itoa(port)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("docmeta API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8888, "Port to listen on (overrides PORT)")

	return cmd
}
