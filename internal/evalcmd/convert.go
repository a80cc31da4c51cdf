package evalcmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/crewdocs/docmeta/internal/eval/dataset"
)

func executeConvert(out io.Writer, input, output string) error {
	if strings.ToLower(filepath.Ext(output)) != ".parquet" {
		return fmt.Errorf("output must be a .parquet file: %s", output)
	}

	records, err := dataset.NewLoader(input).Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if err := dataset.WriteParquet(output, records); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %d samples to %s\n", len(records), output)
	return nil
}
