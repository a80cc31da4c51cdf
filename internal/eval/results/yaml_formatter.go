package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crewdocs/docmeta/internal/eval/metrics"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Label       string `yaml:"label"`
	TextSource  string `yaml:"textsource"`
	CatalogPath string `yaml:"catalogpath,omitempty"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier       string             `yaml:"identifier"`
	Filename         string             `yaml:"filename,omitempty"`
	ExpectedTitle    string             `yaml:"expectedtitle"`
	Title            string             `yaml:"title"`
	IssuedOn         string             `yaml:"issuedon,omitempty"`
	ExpiresOn        string             `yaml:"expireson,omitempty"`
	Strategy         string             `yaml:"strategy,omitempty"`
	Notes            []string           `yaml:"notes,omitempty"`
	OverallScore     float64            `yaml:"overallscore"`
	LevenshteinTotal int                `yaml:"levenshteintotal"`
	FieldsMatched    int                `yaml:"fieldsmatched"`
	FieldsMissing    int                `yaml:"fieldsmissing"`
	FieldsIncorrect  int                `yaml:"fieldsincorrect"`
	FieldScores      map[string]float64 `yaml:"fieldscores"`
}

// EvalSpec represents the complete evaluation run
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// NewEvalSpec converts evaluation results, skipping failed samples.
func NewEvalSpec(cfg EvalConfig, results []metrics.EvaluationResult) EvalSpec {
	spec := EvalSpec{
		Config:  cfg,
		Results: make([]EvalResult, 0, len(results)),
	}

	for _, r := range results {
		if r.Error != "" {
			continue
		}

		evalResult := EvalResult{
			Identifier:    r.SampleID,
			Filename:      r.Filename,
			ExpectedTitle: r.ExpectedTitle,
			Title:         r.Result.Title,
			IssuedOn:      r.Result.IssuedOn,
			ExpiresOn:     r.Result.ExpiresOn,
			Strategy:      r.Strategy,
			Notes:         r.Result.Notes,
		}

		if r.Comparison != nil {
			evalResult.OverallScore = r.Comparison.OverallScore
			evalResult.LevenshteinTotal = r.Comparison.LevenshteinTotal
			evalResult.FieldsMatched = r.Comparison.FieldsMatched
			evalResult.FieldsMissing = r.Comparison.FieldsMissing
			evalResult.FieldsIncorrect = r.Comparison.FieldsIncorrect

			evalResult.FieldScores = make(map[string]float64, len(r.Comparison.Fields))
			for name, fc := range r.Comparison.Fields {
				evalResult.FieldScores[name] = fc.Score
			}
		}

		spec.Results = append(spec.Results, evalResult)
	}

	return spec
}

// SaveToYAML writes the run to dir/<label>-<timestamp>.yaml and returns the path.
func SaveToYAML(dir string, cfg EvalConfig, results []metrics.EvaluationResult) (string, error) {
	if dir == "" {
		dir = "evals"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	if cfg.Label == "" {
		cfg.Label = "docmeta"
	}

	spec := NewEvalSpec(cfg, results)

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", sanitize(cfg.Label), cfg.Timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, nil
	}
	return absPath, nil
}

// LoadYAML reads a run written by SaveToYAML.
func LoadYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return &spec, nil
}

func sanitize(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, label)
}
