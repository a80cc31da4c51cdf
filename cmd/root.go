package cmd

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/config"
	"github.com/crewdocs/docmeta/internal/logger"
)

// app carries what the root pre-run loads to the subcommands.
type app struct {
	cfgFile string
	manager *config.Manager
}

func (a *app) config() *config.Config {
	return a.manager.Get()
}

// catalog returns the embedded catalog unless CATALOG_PATH names a file.
func (a *app) catalog() (*catalog.Catalog, error) {
	path := a.config().CatalogPath
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Info("Loaded catalog", "path", path, "labels", len(cat.Labels()))
	return cat, nil
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "docmeta",
		Short: "Crew certificate metadata extraction",
		Long: `docmeta reads crew certificates and ID documents and infers their canonical
title, issue date and expiry date.

Text comes from the PDF text layer, a vision OCR model for images, or plain
text. The extraction itself is deterministic and runs offline.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			manager, err := config.NewManager(a.cfgFile)
			if err != nil {
				return err
			}
			a.manager = manager

			cfg := manager.Get()
			slog.SetDefault(logger.New("docmeta", cfg.LogLevel))

			if manager.ConfigFile() != "" {
				manager.OnChange(func(c *config.Config) {
					logger.SetLevel(c.LogLevel)
					slog.Info("Configuration reloaded", "file", manager.ConfigFile(), "log_level", c.LogLevel)
				})
				manager.WatchConfig(func(err error) {
					slog.Error("Configuration reload failed", "err", err)
				})
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default ./docmeta.yaml or $HOME/.docmeta/docmeta.yaml)")

	cmd.AddCommand(newExtractCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newWorkerCmd(a))
	cmd.AddCommand(newCatalogCmd(a))
	cmd.AddCommand(newEvalCmd(a))

	return cmd
}
