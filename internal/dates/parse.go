package dates

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/crewdocs/docmeta/internal/textutil"
)

// ISOLayout is the layout of every date this package emits.
const ISOLayout = "2006-01-02"

// Locale tells the parser how to read an ambiguous numeric date.
type Locale int

const (
	LocaleUnknown Locale = iota
	LocaleDayFirst
	LocaleMonthFirst
)

func (l Locale) String() string {
	switch l {
	case LocaleDayFirst:
		return "day-first"
	case LocaleMonthFirst:
		return "month-first"
	default:
		return "unknown"
	}
}

var monthNumbers = map[string]int{
	"january": 1, "jan": 1, "janvier": 1, "janv": 1,
	"february": 2, "feb": 2, "fevrier": 2, "fevr": 2, "fev": 2,
	"march": 3, "mar": 3, "mars": 3,
	"april": 4, "apr": 4, "avril": 4, "avr": 4,
	"may": 5, "mai": 5,
	"june": 6, "jun": 6, "juin": 6,
	"july": 7, "jul": 7, "juillet": 7, "juil": 7,
	"august": 8, "aug": 8, "aout": 8,
	"september": 9, "sept": 9, "sep": 9, "septembre": 9,
	"october": 10, "oct": 10, "octobre": 10,
	"november": 11, "nov": 11, "novembre": 11,
	"december": 12, "dec": 12, "decembre": 12,
}

// monthAlternation lists month spellings longest first so "mars" wins over "mar".
var monthAlternation = func() string {
	names := []string{"février", "févr", "fév", "août", "décembre", "déc"}
	for name := range monthNumbers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return strings.Join(names, "|")
}()

var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,4})[./-](\d{1,2})[./-](\d{2,4})\b`)
	dayMonthRe    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th|er)?[\s./-]*(` + monthAlternation + `)\.?[\s./,-]*(\d{4}|\d{2})\b`)
	monthDayRe    = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4}|\d{2})\b`)
)

type dateShape int

const (
	shapeNumeric dateShape = iota
	shapeDayMonth
	shapeMonthDay
)

// found is a date-shaped substring and where it sits in the text.
type found struct {
	start, end int
	raw        string
	shape      dateShape
	parts      [3]string
}

// findDates returns every date-shaped substring of text ordered by position.
// Overlapping matches keep the one that starts first (then the longest).
func findDates(text string) []found {
	var all []found
	collect := func(re *regexp.Regexp, shape dateShape) {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			all = append(all, found{
				start: m[0],
				end:   m[1],
				raw:   text[m[0]:m[1]],
				shape: shape,
				parts: [3]string{text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]]},
			})
		}
	}
	collect(numericDateRe, shapeNumeric)
	collect(dayMonthRe, shapeDayMonth)
	collect(monthDayRe, shapeMonthDay)

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end > all[j].end
	})

	out := all[:0]
	lastEnd := -1
	for _, f := range all {
		if f.start < lastEnd {
			continue
		}
		out = append(out, f)
		lastEnd = f.end
	}
	return out
}

// parsed is a calendar date read from a found substring.
type parsed struct {
	date      time.Time
	ambiguous bool
}

// parse turns a found substring into a calendar date. Textual months are
// converted to their two-digit number and read day-first, which is never
// ambiguous. ok is false for impossible dates.
func (f found) parse(hint Locale) (parsed, bool) {
	switch f.shape {
	case shapeDayMonth:
		return parseNumeric(f.parts[0], monthNumber(f.parts[1]), f.parts[2], LocaleDayFirst, true)
	case shapeMonthDay:
		return parseNumeric(f.parts[1], monthNumber(f.parts[0]), f.parts[2], LocaleDayFirst, true)
	default:
		return parseNumeric(f.parts[0], f.parts[1], f.parts[2], hint, false)
	}
}

func monthNumber(name string) string {
	n, ok := monthNumbers[textutil.Fold(strings.TrimSuffix(name, "."))]
	if !ok {
		return ""
	}
	return strconv.Itoa(100 + n)[1:]
}

// parseNumeric reads a b/c/year where the order of a and b is decided by
// the component values first and the locale hint second. A four-digit
// first component is read as year-month-day.
func parseNumeric(a, b, c string, hint Locale, certain bool) (parsed, bool) {
	if len(a) == 4 {
		y, _ := strconv.Atoi(a)
		m, _ := strconv.Atoi(b)
		d, _ := strconv.Atoi(c)
		t, ok := calendarDate(y, m, d)
		return parsed{date: t}, ok
	}

	first, err1 := strconv.Atoi(a)
	second, err2 := strconv.Atoi(b)
	year, err3 := strconv.Atoi(c)
	if err1 != nil || err2 != nil || err3 != nil || len(c) == 3 {
		return parsed{}, false
	}
	if len(c) == 2 {
		year += 2000
	}

	var day, month int
	ambiguous := false
	switch {
	case certain:
		day, month = first, second
	case first > 12:
		day, month = first, second
	case second > 12:
		day, month = second, first
	default:
		ambiguous = first != second
		if hint == LocaleMonthFirst {
			day, month = second, first
		} else {
			day, month = first, second
		}
	}

	t, ok := calendarDate(year, month, day)
	return parsed{date: t, ambiguous: ambiguous}, ok
}

func calendarDate(year, month, day int) (time.Time, bool) {
	if year < 1900 || year > 2199 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// ParseISO reads a YYYY-MM-DD string. It is the inverse of formatting with ISOLayout.
func ParseISO(s string) (time.Time, error) {
	return time.Parse(ISOLayout, s)
}
