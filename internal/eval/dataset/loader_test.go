package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoader(t *testing.T) {
	path := "./test.parquet"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
}

func TestGetText(t *testing.T) {
	tests := []struct {
		name     string
		record   SampleRecord
		expected string
	}{
		{
			name:     "uses whole text when available",
			record:   SampleRecord{Text: "Passport", TextByPage: []string{"ignored"}},
			expected: "Passport",
		},
		{
			name:     "joins pages",
			record:   SampleRecord{TextByPage: []string{"Page 1", "Page 2"}},
			expected: "Page 1\n\nPage 2",
		},
		{
			name:     "limits to first pages",
			record:   SampleRecord{TextByPage: []string{"1", "2", "3", "4", "5", "6", "7"}},
			expected: "1\n\n2\n\n3\n\n4\n\n5",
		},
		{
			name:     "returns empty for no text",
			record:   SampleRecord{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.record.GetText()
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

const testJSONL = `{"id":"a","text":"YACHT MASTER 200 GT","expected_title":"Yacht Master 200 Tons","language":"en"}

{"id":"b","text":"Certificat de Formation","expected_title":"Certificate Of Training","language":"fr"}
{"text_by_page":["Passport","Date of expiry 2030-01-01"],"expected_title":"Passport","expected_expires_on":"2030-01-01","language":"en"}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestLoadJSONL(t *testing.T) {
	records, err := NewLoader(writeFile(t, "samples.jsonl", testJSONL)).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].ExpectedTitle != "Yacht Master 200 Tons" {
		t.Errorf("Expected title 'Yacht Master 200 Tons', got %s", records[0].ExpectedTitle)
	}
	if records[2].ID != "sample-3" {
		t.Errorf("Expected generated ID sample-3, got %s", records[2].ID)
	}
	if records[2].ExpectedExpiresOn != "2030-01-01" {
		t.Errorf("Expected expiry 2030-01-01, got %s", records[2].ExpectedExpiresOn)
	}
}

func TestLoadJSONLSample(t *testing.T) {
	records, err := NewLoader(writeFile(t, "samples.jsonl", testJSONL)).LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
	if records[1].ID != "b" {
		t.Errorf("Expected ID b, got %s", records[1].ID)
	}
}

func TestLoadWithFilter(t *testing.T) {
	loader := NewLoader(writeFile(t, "samples.jsonl", testJSONL))
	records, err := loader.LoadWithFilter(0, func(r *SampleRecord) bool { return r.Language == "fr" })
	if err != nil {
		t.Fatalf("LoadWithFilter failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "b" {
		t.Errorf("Expected only record b, got %+v", records)
	}
}

func TestLoadMalformedJSONL(t *testing.T) {
	_, err := NewLoader(writeFile(t, "bad.jsonl", "{\"id\":\"a\"}\n{broken\n")).Load()
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected a line 2 parse error, got %v", err)
	}
}

func TestParquetRoundTrip(t *testing.T) {
	src, err := NewLoader(writeFile(t, "samples.jsonl", testJSONL)).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "samples.parquet")
	if err := WriteParquet(path, src); err != nil {
		t.Fatalf("WriteParquet failed: %v", err)
	}

	loader := NewLoader(path)
	records, err := loader.Load()
	if err != nil {
		t.Fatalf("Load parquet failed: %v", err)
	}
	if len(records) != len(src) {
		t.Fatalf("Expected %d records, got %d", len(src), len(records))
	}
	for i := range src {
		if records[i].ID != src[i].ID || records[i].ExpectedTitle != src[i].ExpectedTitle {
			t.Errorf("Record %d: expected %+v, got %+v", i, src[i], records[i])
		}
	}
	if got := records[2].GetText(); got != "Passport\n\nDate of expiry 2030-01-01" {
		t.Errorf("Expected paged text to survive, got %q", got)
	}

	sample, err := loader.LoadSample(1)
	if err != nil {
		t.Fatalf("LoadSample parquet failed: %v", err)
	}
	if len(sample) != 1 {
		t.Errorf("Expected 1 record, got %d", len(sample))
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	loader := NewLoader("test.txt")

	if _, err := loader.Load(); err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}
	if _, err := loader.LoadSample(10); err == nil {
		t.Error("Expected error for unsupported format in LoadSample, got nil")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	loader := NewLoader("/nonexistent/path/file.jsonl")

	if _, err := loader.Load(); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}
