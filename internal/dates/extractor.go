// Package dates finds issue and expiry dates in certificate text.
//
// Dates next to an explicit label ("Date of issue", "Valid until",
// "Délivré le", ...) win. When a role has no labelled date, the earliest and
// latest plausible dates in the document fill in. Birth dates are never used.
package dates

import (
	"fmt"
	"regexp"
	"sort"
)

const (
	// LabelConfidence is assigned to a date found right after its label.
	LabelConfidence = 0.95
	// FallbackConfidence is assigned to a date picked by position in the document.
	FallbackConfidence = 0.6

	birthWindow = 40
	labelWindow = 200
)

// Role is the meaning of a date on a certificate.
type Role string

const (
	RoleIssued Role = "Issued"
	RoleExpiry Role = "Expiry"
)

// ExtractedDate is one date with the confidence of how it was found.
// ISO is empty when nothing usable was found.
type ExtractedDate struct {
	ISO        string  `json:"iso,omitempty"`
	Confidence float64 `json:"confidence"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
	Raw        string  `json:"raw,omitempty"`
}

// Found reports whether a date was extracted.
func (d ExtractedDate) Found() bool {
	return d.ISO != ""
}

// Result holds both roles and any warnings for a reviewer.
type Result struct {
	Issued ExtractedDate `json:"issued"`
	Expiry ExtractedDate `json:"expiry"`
	Locale Locale        `json:"-"`
	Notes  []string      `json:"notes,omitempty"`
}

var (
	issuedLabelRe = regexp.MustCompile(`(?i)date\s+of\s+issue|issue\s+date|issued(?:\s+on)?|date\s+de\s+d[ée]livrance|d[ée]livr[ée]e?(?:\s+le)?|fait\s+le|date\s+d'[ée]mission`)
	expiryLabelRe = regexp.MustCompile(`(?i)expiry\s+date|date\s+of\s+expiry|expiration\s+date|expires?(?:\s+on)?|valid\s+(?:until|till|through|to)|valable\s+jusqu'?au|date\s+d'expiration|date\s+de\s+fin\s+de\s+validit[ée]|expire\s+le|fin\s+de\s+validit[ée]`)
	birthRe       = regexp.MustCompile(`(?i)date\s+of\s+birth|\bborn\b|\bbirth|\bd\.?o\.?b\b|date\s+de\s+naissance|\bn[ée]e?\s+le\b|naissance`)
)

// Extract finds the issue and expiry dates in already normalized text.
// It never fails: missing or unreadable dates leave the role empty.
func Extract(text string) Result {
	res := Result{Locale: InferLocale(text)}

	issuedMatches := issuedLabelRe.FindAllStringIndex(text, -1)
	expiryMatches := expiryLabelRe.FindAllStringIndex(text, -1)

	consumed := map[int]bool{}
	var issued, expiry *candidate

	issued = labelled(text, issuedMatches, expiryMatches, res.Locale)
	if issued != nil {
		consumed[issued.at.start] = true
	}
	expiry = labelled(text, expiryMatches, issuedMatches, res.Locale)
	if expiry != nil {
		consumed[expiry.at.start] = true
	}

	if issued == nil || expiry == nil {
		// A labelled date counts toward the two survivors expiry needs,
		// but is never picked a second time.
		survivors := fallbackPool(text, res.Locale)
		var free []candidate
		for _, c := range survivors {
			if !consumed[c.at.start] {
				free = append(free, c)
			}
		}
		if issued == nil && len(free) > 0 {
			issued = &free[0]
			issued.confidence = FallbackConfidence
		}
		if expiry == nil && len(survivors) >= 2 && len(free) > 0 {
			if last := &free[len(free)-1]; last != issued {
				expiry = last
				expiry.confidence = FallbackConfidence
			}
		}
	}

	res.Issued = issued.extracted()
	res.Expiry = expiry.extracted()

	if issued != nil && issued.value.ambiguous {
		res.Notes = append(res.Notes, ambiguityNote(RoleIssued, issued, res.Locale))
	}
	if expiry != nil && expiry.value.ambiguous {
		res.Notes = append(res.Notes, ambiguityNote(RoleExpiry, expiry, res.Locale))
	}

	return res
}

type candidate struct {
	at         found
	value      parsed
	confidence float64
}

func (c *candidate) extracted() ExtractedDate {
	if c == nil {
		return ExtractedDate{}
	}
	return ExtractedDate{
		ISO:        c.value.date.Format(ISOLayout),
		Confidence: c.confidence,
		Ambiguous:  c.value.ambiguous,
		Raw:        c.at.raw,
	}
}

// labelled returns the first readable date that follows one of the labels.
// The scan window is cut at the next label of the other role.
func labelled(text string, labels, others [][]int, hint Locale) *candidate {
	for _, lm := range labels {
		if nearBirth(text, lm[0]) {
			continue
		}

		end := min(lm[1]+labelWindow, len(text))
		for _, om := range others {
			if om[0] >= lm[1] && om[0] < end {
				end = om[0]
			}
		}

		for _, f := range findDates(text[lm[1]:end]) {
			p, ok := f.parse(hint)
			if !ok {
				continue
			}
			f.start += lm[1]
			f.end += lm[1]
			return &candidate{at: f, value: p, confidence: LabelConfidence}
		}
	}
	return nil
}

// fallbackPool returns every readable, non-birth date sorted by calendar
// date. Equal dates keep their order in the text.
func fallbackPool(text string, hint Locale) []candidate {
	var pool []candidate
	for _, f := range findDates(text) {
		if nearBirth(text, f.start) {
			continue
		}
		p, ok := f.parse(hint)
		if !ok {
			continue
		}
		pool = append(pool, candidate{at: f, value: p})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].value.date.Before(pool[j].value.date)
	})
	return pool
}

// nearBirth reports whether birth-date wording appears in the window before pos.
func nearBirth(text string, pos int) bool {
	start := max(pos-birthWindow, 0)
	return birthRe.MatchString(text[start:pos])
}

func ambiguityNote(role Role, c *candidate, hint Locale) string {
	order := "day/month"
	if hint == LocaleMonthFirst {
		order = "month/day"
	}
	return fmt.Sprintf("%s date %q is ambiguous; read as %s (%s order assumed)",
		role, c.at.raw, c.value.date.Format(ISOLayout), order)
}
