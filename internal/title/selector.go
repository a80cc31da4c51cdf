// Package title picks the most likely document title out of certificate
// text and maps it onto the canonical title catalog.
package title

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/textutil"
)

// Strategy names how a title candidate was found.
type Strategy string

const (
	StrategyNone        Strategy = ""
	StrategyCourseCode  Strategy = "course_code"
	StrategyKnownCourse Strategy = "known_course"
	StrategyScored      Strategy = "scored_segment"
	StrategyFilename    Strategy = "filename"
)

// Selection is the winning candidate before canonicalization.
type Selection struct {
	Value    string   `json:"value"`
	Strategy Strategy `json:"strategy,omitempty"`
	Score    int      `json:"score,omitempty"`
}

var (
	// authority token, dotted course number, then the rest of the segment
	courseCodeRe = regexp.MustCompile(`(?m)\b[A-Z]{2,5}\s?\d{1,2}\.\d{1,3}(?:\.\d{1,3})?(?:[^\n|•;.\d][^\n|•;]{0,119}|$)`)

	segmentSplitRe = regexp.MustCompile(`\s*[|•·/]\s*|\s+[-–—]\s+`)
	filenameSepRe  = regexp.MustCompile(`[_\-.+]+`)
)

// Selector finds title candidates. It only reads the catalog and is safe
// for concurrent use.
type Selector struct {
	catalog *catalog.Catalog
	rules   []scoreRule
}

// NewSelector creates a selector backed by cat.
func NewSelector(cat *catalog.Catalog) *Selector {
	return &Selector{catalog: cat, rules: defaultScoreRules}
}

// Select returns the best title candidate for text, falling back to the
// filename. It returns "" only when neither yields anything.
func (s *Selector) Select(text, filename string) string {
	return s.SelectDetailed(text, filename).Value
}

// SelectDetailed is Select plus which strategy won.
func (s *Selector) SelectDetailed(text, filename string) Selection {
	if v := s.cleaned(s.fromCourseCode(text)); v != "" {
		return Selection{Value: v, Strategy: StrategyCourseCode}
	}
	if v := s.cleaned(s.fromKnownCourse(text)); v != "" {
		return Selection{Value: v, Strategy: StrategyKnownCourse}
	}
	if raw, sc := s.fromScoredSegments(text); raw != "" {
		if v := s.cleaned(raw); v != "" {
			return Selection{Value: v, Strategy: StrategyScored, Score: sc}
		}
	}
	if v := s.cleaned(fromFilename(filename)); v != "" {
		return Selection{Value: v, Strategy: StrategyFilename}
	}
	return Selection{}
}

func (s *Selector) cleaned(raw string) string {
	if raw == "" {
		return ""
	}
	return cleanCandidate(raw, s.catalog)
}

// fromCourseCode keeps the longest "OMI 3.19 Ship Security Officer" style
// match that is short enough and does not read like prose.
func (s *Selector) fromCourseCode(text string) string {
	best := ""
	bestLen := 0
	for _, m := range courseCodeRe.FindAllString(text, -1) {
		c := strings.TrimSpace(m)
		n := textutil.RuneLen(c)
		if n > maxTitleLen || textutil.PunctuationDensity(c) > maxPunctuation {
			continue
		}
		if mostlyNumeric(segment{text: c}) {
			continue
		}
		if n > bestLen {
			best, bestLen = c, n
		}
	}
	return best
}

func (s *Selector) fromKnownCourse(text string) string {
	for _, c := range s.catalog.Courses {
		if c.Match(text) {
			return c.Label
		}
	}
	return ""
}

// fromScoredSegments scores every segment of the first lines and returns
// the best one. Nothing is returned unless some segment scores above zero.
func (s *Selector) fromScoredSegments(text string) (string, int) {
	docHasCoC := cocRe.MatchString(text)

	best, bestScore := "", 0
	for _, line := range leadingLines(text, scoredLineLimit) {
		for _, part := range segmentSplitRe.Split(line, -1) {
			part = textutil.CollapseSpaces(part)
			if part == "" {
				continue
			}
			seg := segment{text: part, runes: textutil.RuneLen(part), docHasCoC: docHasCoC}
			if sc := score(seg, s.rules); sc > bestScore {
				best, bestScore = part, sc
			}
		}
	}
	return best, bestScore
}

func leadingLines(text string, limit int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == limit {
			break
		}
	}
	return lines
}

func fromFilename(filename string) string {
	if filename == "" {
		return ""
	}
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return textutil.CollapseSpaces(filenameSepRe.ReplaceAllString(base, " "))
}
