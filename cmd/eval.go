package cmd

import (
	"github.com/spf13/cobra"

	"github.com/crewdocs/docmeta/internal/evalcmd"
)

func newEvalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Extraction accuracy evaluation tools",
		Long: `Evaluation tools for measuring how well the engine recovers titles and dates.

Runs the engine over labeled samples (JSONL or Parquet), scores every field,
and renders the results as text, JSON, CSV or XLSX.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd(a.catalog))
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd(a.catalog))
	cmd.AddCommand(evalcmd.NewConvertCmd())

	return cmd
}
