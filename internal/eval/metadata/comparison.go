package metadata

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/crewdocs/docmeta/internal/eval/dataset"
	"github.com/crewdocs/docmeta/internal/extraction"
	"github.com/crewdocs/docmeta/internal/textutil"
)

// titleCorrect is the similarity above which a title counts as correct.
const titleCorrect = 0.9

var levParams = levenshtein.NewParams()

// CompareMetadata scores an extraction result against a labeled sample.
// Titles are compared by Levenshtein similarity, dates must match exactly.
func CompareMetadata(reference dataset.SampleRecord, extracted extraction.Result) *MetadataComparison {
	comparison := &MetadataComparison{
		Fields: make(map[string]FieldComparison, len(Fields)),
	}

	title := compareTitle(reference.ExpectedTitle, extracted.Title)
	title.Confidence = extracted.Confidence.Title
	issued := compareDate(FieldIssuedOn, reference.ExpectedIssuedOn, extracted.IssuedOn)
	issued.Confidence = extracted.Confidence.IssuedOn
	expires := compareDate(FieldExpiresOn, reference.ExpectedExpiresOn, extracted.ExpiresOn)
	expires.Confidence = extracted.Confidence.ExpiresOn

	totalScore := 0.0
	for _, fc := range []FieldComparison{title, issued, expires} {
		comparison.Fields[fc.FieldName] = fc
		totalScore += fc.Score
		comparison.LevenshteinTotal += fc.Distance

		switch {
		case fc.Correct:
			comparison.FieldsMatched++
		case fc.Match == MatchMissing:
			comparison.FieldsMissing++
		default:
			comparison.FieldsIncorrect++
		}
	}
	comparison.OverallScore = totalScore / float64(len(Fields))

	return comparison
}

func compareTitle(expected, actual string) FieldComparison {
	comp := FieldComparison{
		FieldName: FieldTitle,
		Expected:  expected,
		Actual:    actual,
	}

	expNorm := normalizeText(expected)
	actNorm := normalizeText(actual)

	switch {
	case expNorm == "" && actNorm == "":
		comp.Match = MatchBothEmpty
		comp.Score = 0.5
		comp.Notes = "Both fields are empty"
		return comp
	case expNorm == "":
		comp.Match = MatchNoReference
		comp.Distance = textutil.RuneLen(actNorm)
		comp.Notes = "No reference value (ground truth missing)"
		return comp
	case actNorm == "":
		comp.Match = MatchMissing
		comp.Distance = textutil.RuneLen(expNorm)
		comp.Notes = "Field missing from extracted metadata"
		return comp
	}

	comp.Distance = levenshtein.Distance(expNorm, actNorm, levParams)
	if expNorm == actNorm {
		comp.Score = 1.0
		comp.Match = MatchExact
		comp.Correct = true
		return comp
	}

	similarity := levenshtein.Similarity(expNorm, actNorm, levParams)
	comp.Score = similarity
	comp.Correct = similarity > titleCorrect

	switch {
	case similarity > titleCorrect:
		comp.Match = MatchFuzzyHigh
	case similarity > 0.7:
		comp.Match = MatchFuzzyMedium
	case similarity > 0.5:
		comp.Match = MatchFuzzyLow
	default:
		comp.Match = MatchNone
	}
	comp.Notes = fmt.Sprintf("Similarity %.1f%%, Levenshtein: %d", similarity*100, comp.Distance)

	return comp
}

// compareDate requires an exact ISO match. Finding no date where none is
// expected is correct.
func compareDate(field, expected, actual string) FieldComparison {
	comp := FieldComparison{
		FieldName: field,
		Expected:  expected,
		Actual:    actual,
	}
	expected = strings.TrimSpace(expected)
	actual = strings.TrimSpace(actual)

	switch {
	case expected == "" && actual == "":
		comp.Match = MatchBothEmpty
		comp.Score = 1.0
		comp.Correct = true
	case expected == "":
		comp.Match = MatchSpurious
		comp.Notes = "Date found where none was expected"
	case actual == "":
		comp.Match = MatchMissing
		comp.Notes = "Date missing from extracted metadata"
	case expected == actual:
		comp.Match = MatchExact
		comp.Score = 1.0
		comp.Correct = true
	default:
		comp.Match = MatchNone
		comp.Distance = levenshtein.Distance(expected, actual, levParams)
		comp.Notes = dateMismatchNote(expected, actual)
	}
	return comp
}

// dateMismatchNote names the common day/month swap explicitly.
func dateMismatchNote(expected, actual string) string {
	e := strings.Split(expected, "-")
	a := strings.Split(actual, "-")
	if len(e) == 3 && len(a) == 3 && e[0] == a[0] && e[1] == a[2] && e[2] == a[1] {
		return "Day and month swapped"
	}
	return "Wrong date"
}

// normalizeText lowercases, folds accents and drops punctuation.
func normalizeText(text string) string {
	text = textutil.Fold(text)

	var b strings.Builder
	for _, r := range text {
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			b.WriteRune(' ')
		case isWordRune(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isWordRune(r rune) bool {
	return r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || r > 127
}
