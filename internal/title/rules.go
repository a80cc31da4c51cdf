package title

import (
	"regexp"
	"unicode"

	"github.com/crewdocs/docmeta/internal/textutil"
)

const (
	maxTitleLen       = 120
	maxPunctuation    = 0.12
	headingMaxLen     = 90
	headingMinLen     = 8
	uppercaseHeading  = 0.55
	scoredLineLimit   = 60
	mostlyNumericMinD = 4
	mostlyNumericMaxL = 5
)

var (
	forbiddenRe = regexp.MustCompile(`(?i)\bexpir|\bvalid\b|\bvalable\b|\bdate\s+of\s+(?:issue|expiry|birth)\b|\bissued?\b|\bd[ée]livr|\bnaissance\b|\bborn\b|\bbirth\b|\bpursuant\b|\bin\s+accordance\b|\bhereby\b|\bregulations?\b|\bconvention\b|\barticles?\s+\d|\bsignature\b|\bsigned\b|\bholder\b|\btitulaire\b|\bconform[ée]ment\b`)

	cocRe      = regexp.MustCompile(`(?i)\bcertificate\s+of\s+competen(?:cy|ce)\b|\bcertificat\s+de\s+(?:comp[ée]tence|capacit[ée])`)
	masterRe   = regexp.MustCompile(`(?i)\bmaster\s+unlimited\b|\bmaster\s+mariner\b|\bcapitaine\s+illimit`)
	ssoRe      = regexp.MustCompile(`(?i)\bship\s+security\s+officer\b|\bsso\b|\bagent\s+de\s+s[uû]ret[ée]\s+du\s+navire\b`)
	tonnageRe  = regexp.MustCompile(`(?i)\b(?:200|500|3000)\b|\b\d{2,4}\s*(?:gt|grt|tons?|tonnes?)\b`)
	certWordRe = regexp.MustCompile(`(?i)\bcertificate\b`)

	strongPatterns = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"yacht master", regexp.MustCompile(`(?i)\byacht\s*master\b|\bmaster\s*\(\s*yachts?\s*\)|\bcapitaine\s+(?:de\s+)?yachts?\b`)},
		{"stcw", regexp.MustCompile(`(?i)\bstcw\b`)},
		{"medical certificate", regexp.MustCompile(`(?i)\beng\s*1\b|\bml\s*5\b|\bseafarer'?s?\s+medical\b|\bcertificat\s+m[ée]dical`)},
		{"survival craft", regexp.MustCompile(`(?i)\bsurvival\s+craft\b|\brescue\s+boats?\b|\bpscrb\b|\b(?:canots?|embarcations?)\s+de\s+sauvetage\b`)},
		{"crowd management", regexp.MustCompile(`(?i)\bcrowd\s+management\b|\bgestion\s+des\s+foules\b`)},
		{"security", regexp.MustCompile(`(?i)\bsecurity\s+awareness\b|\bship\s+security\s+officer\b|\bsso\b|\bdesignated\s+security\b|\bs[uû]ret[ée]\b`)},
		{"imo course code", regexp.MustCompile(`(?i)\b(?:imo|omi)\s*(?:model\s+course\s*)?\d`)},
	}
)

// segment is one candidate piece of a line, with what the rules need to
// know about the whole document.
type segment struct {
	text      string
	runes     int
	docHasCoC bool
}

// scoreRule adds weight to a segment's score when applies reports true.
type scoreRule struct {
	name    string
	weight  int
	applies func(s segment) bool
}

// defaultScoreRules is the scoring table for heading candidates.
// Rules are independent; a segment collects the weight of every rule it matches.
var defaultScoreRules = buildScoreRules()

func buildScoreRules() []scoreRule {
	rules := []scoreRule{
		{"too long", -6, func(s segment) bool { return s.runes > maxTitleLen }},
		{"forbidden wording", -8, func(s segment) bool { return forbiddenRe.MatchString(s.text) }},
		{"mostly numeric", -6, mostlyNumeric},
		{"punctuation heavy", -3, func(s segment) bool { return textutil.PunctuationDensity(s.text) > maxPunctuation }},
		{"competency or master", 15, func(s segment) bool { return cocRe.MatchString(s.text) || masterRe.MatchString(s.text) }},
	}
	for _, p := range strongPatterns {
		rules = append(rules, scoreRule{p.name, 9, func(s segment) bool { return p.re.MatchString(s.text) }})
	}
	rules = append(rules,
		// A CoC heading elsewhere outranks an SSO course line.
		scoreRule{"sso under coc", -4, func(s segment) bool {
			return s.docHasCoC && ssoRe.MatchString(s.text) && !cocRe.MatchString(s.text)
		}},
		scoreRule{"tonnage", 3, func(s segment) bool { return tonnageRe.MatchString(s.text) }},
		scoreRule{"certificate", 1, func(s segment) bool { return certWordRe.MatchString(s.text) }},
		scoreRule{"uppercase heading", 1, func(s segment) bool {
			return s.runes <= headingMaxLen && uppercaseRatio(s.text) > uppercaseHeading
		}},
		scoreRule{"heading length", 1, func(s segment) bool { return s.runes >= headingMinLen && s.runes <= headingMaxLen }},
	)
	return rules
}

func score(s segment, rules []scoreRule) int {
	total := 0
	for _, r := range rules {
		if r.applies(s) {
			total += r.weight
		}
	}
	return total
}

// mostlyNumeric matches dates and reference numbers: at least four digits
// and at most five letters.
func mostlyNumeric(s segment) bool {
	digits, letters := 0, 0
	for _, r := range s.text {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		}
	}
	return digits >= mostlyNumericMinD && letters <= mostlyNumericMaxL
}

func uppercaseRatio(s string) float64 {
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
