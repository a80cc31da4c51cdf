package title

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/textutil"
)

var (
	tonnageQualifierRe = regexp.MustCompile(`\b(\d{2,4})\s*(?:gt|grt|tons?|tonnes?|tx|tjb|ums)\b`)
	levelQualifierRe   = regexp.MustCompile(`\b(200|500|3000)\b`)
	apostrophes        = strings.NewReplacer("’", "'", "‘", "'")
)

// Canonical is a title after it has been mapped onto the catalog.
type Canonical struct {
	Value    string `json:"value"`
	Changed  bool   `json:"changed"`
	Note     string `json:"note,omitempty"`
	Category string `json:"category,omitempty"`
}

// Canonicalizer maps raw titles onto catalog labels. It only reads the
// catalog and is safe for concurrent use.
type Canonicalizer struct {
	catalog *catalog.Catalog
}

// NewCanonicalizer creates a canonicalizer backed by cat.
func NewCanonicalizer(cat *catalog.Catalog) *Canonicalizer {
	return &Canonicalizer{catalog: cat}
}

// Canonicalize maps raw onto a catalog label when a rule or alias matches,
// or else translates it word for word into English. fullText supplies a
// tonnage when the title itself names none. Unknown titles come back as is.
func (c *Canonicalizer) Canonicalize(raw, fullText string) Canonical {
	if strings.TrimSpace(raw) == "" {
		return Canonical{Value: raw}
	}

	if v, ok := c.fromCatalog(raw, fullText); ok {
		return c.result(raw, v, "")
	}

	translated, ok := c.translate(raw)
	if !ok || translated == "" {
		return c.result(raw, raw, "")
	}

	note := fmt.Sprintf("Title %q was translated to English", raw)
	if v, ok := c.fromCatalog(translated, fullText); ok {
		return c.result(raw, v, note)
	}
	return c.result(raw, Prettify(translated, c.catalog), note)
}

func (c *Canonicalizer) result(raw, value, note string) Canonical {
	out := Canonical{
		Value:   value,
		Changed: !strings.EqualFold(value, raw),
		Note:    note,
	}
	if !out.Changed {
		out.Note = ""
	}
	if m, ok := c.catalog.Lookup(value); ok {
		out.Category = m.Category
	}
	return out
}

// fromCatalog tries the rule table and then a direct label or alias lookup.
func (c *Canonicalizer) fromCatalog(s, fullText string) (string, bool) {
	lower := strings.ToLower(s)
	for _, r := range c.catalog.Rules {
		if !r.Match(lower) {
			continue
		}
		if !r.TonnageSuffix {
			return r.Label, true
		}
		return withTonnage(r.Label, lower, strings.ToLower(fullText)), true
	}
	if m, ok := c.catalog.Lookup(s); ok {
		return m.Entry.Label, true
	}
	return "", false
}

// withTonnage appends "<n> Tons" to a Yacht Master family label. A bare
// level in the title wins over a tonnage with a unit. The document text is
// only consulted for an explicit tonnage when the title has no number.
func withTonnage(label, lowerTitle, lowerText string) string {
	n := qualifier(lowerTitle)
	if n == "" {
		if m := tonnageQualifierRe.FindStringSubmatch(lowerText); m != nil {
			n = m[1]
		}
	}
	if n == "" || strings.Contains(label, n) {
		return label
	}
	return label + " " + n + " Tons"
}

func qualifier(lower string) string {
	if m := levelQualifierRe.FindStringSubmatch(lower); m != nil {
		return m[1]
	}
	if m := tonnageQualifierRe.FindStringSubmatch(lower); m != nil {
		return m[1]
	}
	return ""
}

// translate substitutes known French words one by one. Elided articles
// such as "l'" and "d'" are handled on their own. ok is false when no word
// was replaced.
func (c *Canonicalizer) translate(s string) (string, bool) {
	var out []string
	replaced := false
	add := func(word string) {
		if v, found := c.catalog.Translate(word); found {
			replaced = true
			word = v
		}
		if word != "" {
			out = append(out, word)
		}
	}

	for _, word := range strings.Fields(apostrophes.Replace(s)) {
		if head, tail, cut := strings.Cut(word, "'"); cut && tail != "" {
			if _, found := c.catalog.Translate(head); found {
				add(head)
				add(tail)
				continue
			}
		}
		add(word)
	}
	return textutil.CollapseSpaces(strings.Join(out, " ")), replaced
}
