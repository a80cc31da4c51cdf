package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u00a0", " ")

// Normalize converts CR and CRLF line endings to LF and non-breaking spaces
// to plain spaces. Nothing else is touched.
func Normalize(text string) string {
	return lineEndings.Replace(text)
}

// CollapseSpaces joins all whitespace runs into single spaces and trims the ends.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PunctuationDensity returns the share of runes in s that are one of . , ; :
func PunctuationDensity(s string) float64 {
	total, punct := 0, 0
	for _, r := range s {
		total++
		switch r {
		case '.', ',', ';', ':':
			punct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(punct) / float64(total)
}

// Fold lower-cases s, strips diacritics and collapses whitespace, for
// accent-insensitive lookups ("Sûreté" and "surete" fold to the same key).
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return CollapseSpaces(strings.ToLower(folded))
}

// RuneLen is the length of s in runes.
func RuneLen(s string) int {
	return len([]rune(s))
}
