package title

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/textutil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	tonnageTokenRe = regexp.MustCompile(`(?i)^\d+(?:gt|grt|t|tons?|tonnes?)$`)
	titlePrefixRe  = regexp.MustCompile(`(?i)^\s*(?:certificate|certificat|diploma|dipl[oô]me|licen[cs]e|attestation)\s*[:\-–]\s*`)
)

// Prettify capitalizes every word of s. Known acronyms and tokens like
// "200GT" are upper-cased instead.
func Prettify(s string, cat *catalog.Catalog) string {
	// cases.Caser keeps state and must not be shared between goroutines.
	caser := cases.Title(language.English)

	words := strings.Fields(s)
	for i, w := range words {
		core := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		switch {
		case core == "":
		case cat.IsAcronym(core), tonnageTokenRe.MatchString(core):
			words[i] = strings.ToUpper(w)
		default:
			words[i] = caser.String(w)
		}
	}
	return strings.Join(words, " ")
}

// cleanCandidate strips a leading "Certificate:" style prefix, collapses
// whitespace and prettifies what is left.
func cleanCandidate(s string, cat *catalog.Catalog) string {
	s = titlePrefixRe.ReplaceAllString(s, "")
	s = textutil.CollapseSpaces(s)
	return Prettify(s, cat)
}
