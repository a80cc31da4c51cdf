package dates

import "regexp"

var (
	frenchDateVocab  = regexp.MustCompile(`(?i)d[ée]livr|valable|jusqu'?au|naissance|\bfait\s+(?:le|à|a)\s|date\s+d[e']|\ble\s+\d{1,2}\s|validit[ée]|expire\s+le`)
	englishDateVocab = regexp.MustCompile(`(?i)\bissued?\b|\bexpir(?:y|es|ation)\b|\bvalid\b|\buntil\b`)
)

// monthFirstMargin is how many more English date words than French ones a
// document needs before ambiguous numeric dates are read month-first. A
// single "Issued:" label is not enough evidence on its own.
const monthFirstMargin = 2

// InferLocale guesses how ambiguous numeric dates are written from the
// date vocabulary the document uses.
func InferLocale(text string) Locale {
	fr := len(frenchDateVocab.FindAllStringIndex(text, -1))
	en := len(englishDateVocab.FindAllStringIndex(text, -1))
	switch {
	case fr > en:
		return LocaleDayFirst
	case en >= fr+monthFirstMargin:
		return LocaleMonthFirst
	default:
		return LocaleUnknown
	}
}
