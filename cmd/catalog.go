package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crewdocs/docmeta/internal/catalog"
)

func newCatalogCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the canonical title catalog",
		Example: `  docmeta catalog
  docmeta catalog --format yaml > titles.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), cat, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")

	return cmd
}

func printCatalog(w io.Writer, cat *catalog.Catalog, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(cat); err != nil {
			return fmt.Errorf("failed to encode catalog: %w", err)
		}
		return nil
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(cat); err != nil {
			return fmt.Errorf("failed to encode catalog: %w", err)
		}
		return encoder.Close()
	case "text":
		for _, category := range cat.Categories {
			fmt.Fprintf(w, "%s\n", category.Name)
			for _, entry := range category.Titles {
				fmt.Fprintf(w, "  %s\n", entry.Label)
				for _, alias := range entry.Aliases {
					fmt.Fprintf(w, "    = %s\n", alias)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
