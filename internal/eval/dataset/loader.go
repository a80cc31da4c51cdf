package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads labeled samples from a JSONL or Parquet file.
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads every record.
func (l *Loader) Load() ([]SampleRecord, error) {
	return l.LoadWithFilter(0, nil)
}

// LoadSample loads at most limit records.
func (l *Loader) LoadSample(limit int) ([]SampleRecord, error) {
	return l.LoadWithFilter(limit, nil)
}

// LoadWithFilter loads records accepted by filterFn, stopping after limit
// of them. A zero limit means no limit; a nil filter accepts everything.
func (l *Loader) LoadWithFilter(limit int, filterFn func(*SampleRecord) bool) ([]SampleRecord, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	var (
		records []SampleRecord
		err     error
	)
	switch ext {
	case ".parquet":
		records, err = l.loadParquet(limit, filterFn)
	case ".jsonl", ".json":
		records, err = l.loadJSONL(limit, filterFn)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = fmt.Sprintf("sample-%d", i+1)
		}
	}
	return records, nil
}

func keep(filterFn func(*SampleRecord) bool, rec *SampleRecord) bool {
	return filterFn == nil || filterFn(rec)
}

// loadJSONL reads one JSON object per line. Blank lines are skipped; a
// malformed line fails the load.
func (l *Loader) loadJSONL(limit int, filterFn func(*SampleRecord) bool) ([]SampleRecord, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []SampleRecord
	scanner := bufio.NewScanner(file)

	// Increase buffer size for large JSON lines
	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var record SampleRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		if keep(filterFn, &record) {
			records = append(records, record)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)

	return records, nil
}

func (l *Loader) loadParquet(limit int, filterFn func(*SampleRecord) bool) ([]SampleRecord, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath, "limit", limit)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[SampleRecord](pf)
	defer reader.Close()

	var records []SampleRecord
	for limit <= 0 || len(records) < limit {
		// Fresh batch each time so kept records do not share slices.
		rows := make([]SampleRecord, 128)
		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			if limit > 0 && len(records) >= limit {
				break
			}
			if keep(filterFn, &rows[i]) {
				records = append(records, rows[i])
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records))

	return records, nil
}

// WriteParquet stores records as a Parquet file, e.g. to convert a JSONL
// dataset once for faster loading.
func WriteParquet(path string, records []SampleRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	if err := parquet.Write(file, records); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}
