package metadata

import (
	"testing"

	"github.com/crewdocs/docmeta/internal/eval/dataset"
	"github.com/crewdocs/docmeta/internal/extraction"
)

func TestCompareTitle(t *testing.T) {
	tests := []struct {
		name          string
		expected      string
		actual        string
		expectedMatch string
		correct       bool
	}{
		{"exact", "Yacht Master 200 Tons", "Yacht Master 200 Tons", MatchExact, true},
		{"case and punctuation", "Ship Security Officer (SSO)", "ship security officer sso", MatchExact, true},
		{"accents", "Brevet de Capitaine", "Brevet de Capitaîne", MatchExact, true},
		{"one letter off", "Proficiency in Survival Craft", "Proficiency in Survival Crafts", MatchFuzzyHigh, true},
		{"different", "Passport", "Medical Fitness Certificate", MatchNone, false},
		{"missing", "Passport", "", MatchMissing, false},
		{"no reference", "", "Passport", MatchNoReference, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareTitle(tt.expected, tt.actual)
			if got.Match != tt.expectedMatch {
				t.Errorf("Expected match %s, got %s (score %.2f)", tt.expectedMatch, got.Match, got.Score)
			}
			if got.Correct != tt.correct {
				t.Errorf("Expected correct=%v, got %v", tt.correct, got.Correct)
			}
		})
	}
}

func TestCompareDate(t *testing.T) {
	tests := []struct {
		name          string
		expected      string
		actual        string
		expectedMatch string
		correct       bool
		note          string
	}{
		{"exact", "2023-02-01", "2023-02-01", MatchExact, true, ""},
		{"both empty", "", "", MatchBothEmpty, true, ""},
		{"spurious", "", "2023-02-01", MatchSpurious, false, "Date found where none was expected"},
		{"missing", "2023-02-01", "", MatchMissing, false, "Date missing from extracted metadata"},
		{"swapped", "2023-02-01", "2023-01-02", MatchNone, false, "Day and month swapped"},
		{"wrong", "2023-02-01", "2024-02-01", MatchNone, false, "Wrong date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareDate(FieldIssuedOn, tt.expected, tt.actual)
			if got.Match != tt.expectedMatch {
				t.Errorf("Expected match %s, got %s", tt.expectedMatch, got.Match)
			}
			if got.Correct != tt.correct {
				t.Errorf("Expected correct=%v, got %v", tt.correct, got.Correct)
			}
			if got.Notes != tt.note {
				t.Errorf("Expected note %q, got %q", tt.note, got.Notes)
			}
		})
	}
}

func TestCompareMetadata(t *testing.T) {
	ref := dataset.SampleRecord{
		ExpectedTitle:     "Yacht Master 200 Tons",
		ExpectedIssuedOn:  "2023-02-01",
		ExpectedExpiresOn: "2028-01-31",
	}
	res := extraction.Result{
		Title:      "Yacht Master 200 Tons",
		IssuedOn:   "2023-02-01",
		Confidence: extraction.Confidence{Title: 0.85, IssuedOn: 0.6},
	}

	cmp := CompareMetadata(ref, res)
	if cmp.FieldsMatched != 2 {
		t.Errorf("Expected 2 matched fields, got %d", cmp.FieldsMatched)
	}
	if cmp.FieldsMissing != 1 {
		t.Errorf("Expected 1 missing field, got %d", cmp.FieldsMissing)
	}
	if cmp.Fields[FieldIssuedOn].Confidence != 0.6 {
		t.Errorf("Expected issued confidence 0.6, got %.2f", cmp.Fields[FieldIssuedOn].Confidence)
	}
	if want := 2.0 / 3.0; cmp.OverallScore < want-0.001 || cmp.OverallScore > want+0.001 {
		t.Errorf("Expected overall score %.3f, got %.3f", want, cmp.OverallScore)
	}
}

func TestNormalizeText(t *testing.T) {
	if got := normalizeText("  Lutte   contre l'Incendie!  "); got != "lutte contre lincendie" {
		t.Errorf("Expected 'lutte contre lincendie', got %q", got)
	}
}
