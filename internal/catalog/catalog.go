package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/crewdocs/docmeta/internal/textutil"
	"gopkg.in/yaml.v3"
)

//go:embed titles.yaml
var embeddedTitles []byte

// Entry is one canonical certificate title and the strings that mean the same thing.
type Entry struct {
	Label   string   `yaml:"label" json:"label"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Category groups entries under a heading such as "Security" or "Medical".
type Category struct {
	Name   string  `yaml:"name" json:"name"`
	Titles []Entry `yaml:"titles" json:"titles"`
}

// Rule maps a phrase pattern onto a canonical label.
type Rule struct {
	Label         string `yaml:"label" json:"label"`
	Pattern       string `yaml:"pattern" json:"pattern"`
	TonnageSuffix bool   `yaml:"tonnage_suffix,omitempty" json:"tonnage_suffix,omitempty"`

	re *regexp.Regexp
}

// Match reports whether the rule pattern occurs in s (case-insensitive).
func (r Rule) Match(s string) bool {
	return r.re != nil && r.re.MatchString(s)
}

// Course is a known course title searched for in whole document text.
type Course struct {
	Label   string `yaml:"label" json:"label"`
	Pattern string `yaml:"pattern" json:"pattern"`

	re *regexp.Regexp
}

// Match reports whether the course pattern occurs in s (case-insensitive).
func (c Course) Match(s string) bool {
	return c.re != nil && c.re.MatchString(s)
}

// Catalog is the controlled vocabulary plus the dictionaries built around it.
// It is read-only once loaded and safe for concurrent use.
type Catalog struct {
	Acronyms     []string          `yaml:"acronyms" json:"acronyms"`
	Categories   []Category        `yaml:"categories" json:"categories"`
	Rules        []Rule            `yaml:"rules" json:"rules"`
	Courses      []Course          `yaml:"courses" json:"courses"`
	Translations map[string]string `yaml:"translations" json:"translations"`

	index        map[string]Match
	acronyms     map[string]bool
	translations map[string]string
}

// Match is the result of a catalog lookup.
type Match struct {
	Entry    Entry
	Category string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedTitles)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a catalog from a YAML file. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) build() error {
	c.index = make(map[string]Match)
	for _, cat := range c.Categories {
		for _, e := range cat.Titles {
			if strings.TrimSpace(e.Label) == "" {
				return fmt.Errorf("category %q has an entry without a label", cat.Name)
			}
			for _, key := range append([]string{e.Label}, e.Aliases...) {
				folded := textutil.Fold(key)
				if prev, ok := c.index[folded]; ok && prev.Entry.Label != e.Label {
					return fmt.Errorf("%q is used by both %q and %q", key, prev.Entry.Label, e.Label)
				}
				c.index[folded] = Match{Entry: e, Category: cat.Name}
			}
		}
	}

	for i := range c.Rules {
		r := &c.Rules[i]
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return fmt.Errorf("rule %q has an invalid pattern: %w", r.Label, err)
		}
		r.re = re
		if _, ok := c.index[textutil.Fold(r.Label)]; !ok {
			return fmt.Errorf("rule label %q is not a catalog title", r.Label)
		}
	}

	for i := range c.Courses {
		course := &c.Courses[i]
		re, err := regexp.Compile("(?i)" + course.Pattern)
		if err != nil {
			return fmt.Errorf("course %q has an invalid pattern: %w", course.Label, err)
		}
		course.re = re
	}

	c.acronyms = make(map[string]bool, len(c.Acronyms))
	for _, a := range c.Acronyms {
		c.acronyms[strings.ToUpper(a)] = true
	}

	c.translations = make(map[string]string, len(c.Translations))
	for k, v := range c.Translations {
		c.translations[textutil.Fold(k)] = v
	}

	return nil
}

// Lookup finds the entry whose label or alias equals s, ignoring case,
// accents and extra whitespace.
func (c *Catalog) Lookup(s string) (Match, bool) {
	m, ok := c.index[textutil.Fold(s)]
	return m, ok
}

// IsAcronym reports whether word should always be written in upper case.
func (c *Catalog) IsAcronym(word string) bool {
	return c.acronyms[strings.ToUpper(word)]
}

// Translate returns the English substitute for a single word.
// The substitute may be empty, meaning the word is dropped.
func (c *Catalog) Translate(word string) (string, bool) {
	v, ok := c.translations[textutil.Fold(word)]
	return v, ok
}

// Labels returns every canonical label in catalog order.
func (c *Catalog) Labels() []string {
	var labels []string
	for _, cat := range c.Categories {
		for _, e := range cat.Titles {
			labels = append(labels, e.Label)
		}
	}
	return labels
}
