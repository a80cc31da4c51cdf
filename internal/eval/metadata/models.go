package metadata

// Field names used in comparisons and reports.
const (
	FieldTitle     = "title"
	FieldIssuedOn  = "issued_on"
	FieldExpiresOn = "expires_on"
)

// Fields lists the compared fields in report order.
var Fields = []string{FieldTitle, FieldIssuedOn, FieldExpiresOn}

// Match kinds.
const (
	MatchExact       = "exact"
	MatchFuzzyHigh   = "fuzzy_high"
	MatchFuzzyMedium = "fuzzy_medium"
	MatchFuzzyLow    = "fuzzy_low"
	MatchNone        = "no_match"
	MatchMissing     = "missing"
	MatchSpurious    = "spurious" // a value where none was expected
	MatchBothEmpty   = "both_empty"
	MatchNoReference = "no_reference"
)

// MetadataComparison represents field-by-field comparison of metadata
type MetadataComparison struct {
	Fields           map[string]FieldComparison `json:"fields" yaml:"fields"`
	OverallScore     float64                    `json:"overall_score" yaml:"overall_score"`
	FieldsMatched    int                        `json:"fields_matched" yaml:"fields_matched"`
	FieldsMissing    int                        `json:"fields_missing" yaml:"fields_missing"`
	FieldsIncorrect  int                        `json:"fields_incorrect" yaml:"fields_incorrect"`
	LevenshteinTotal int                        `json:"levenshtein_total" yaml:"levenshtein_total"`
}

// FieldComparison represents comparison for a single metadata field
type FieldComparison struct {
	FieldName  string  `json:"field_name" yaml:"field_name"`
	Expected   string  `json:"expected" yaml:"expected"`
	Actual     string  `json:"actual" yaml:"actual"`
	Score      float64 `json:"score" yaml:"score"` // 0.0 to 1.0
	Distance   int     `json:"distance" yaml:"distance"`
	Match      string  `json:"match" yaml:"match"`
	Correct    bool    `json:"correct" yaml:"correct"`
	Confidence float64 `json:"confidence" yaml:"confidence"` // engine confidence for the field
	Notes      string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}
