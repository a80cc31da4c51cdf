// Package extraction turns certificate text into a title, an issue date
// and an expiry date, each with a confidence score.
package extraction

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/dates"
	"github.com/crewdocs/docmeta/internal/textutil"
	"github.com/crewdocs/docmeta/internal/title"
)

// UntitledDocument is the title used when neither the text nor the
// filename yields anything.
const UntitledDocument = "Untitled document"

const (
	titleConfidenceCanonical = 0.85
	titleConfidenceRaw       = 0.7
	titleConfidenceNone      = 0.3
)

// Input is one document: its extracted text and, optionally, the uploaded filename.
type Input struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
}

// Confidence holds a 0..1 score per field.
type Confidence struct {
	Title     float64 `json:"title"`
	IssuedOn  float64 `json:"issuedOn"`
	ExpiresOn float64 `json:"expiresOn"`
}

// Result is the metadata inferred for one document. Title is never empty.
type Result struct {
	Title         string     `json:"title"`
	OriginalTitle string     `json:"originalTitle,omitempty"`
	IssuedOn      string     `json:"issuedOn,omitempty"`
	ExpiresOn     string     `json:"expiresOn,omitempty"`
	Confidence    Confidence `json:"confidence"`
	Notes         []string   `json:"notes,omitempty"`
}

// Explanation shows the intermediate steps behind a Result.
type Explanation struct {
	Result    Result          `json:"result"`
	Selection title.Selection `json:"selection"`
	Canonical title.Canonical `json:"canonical"`
	Dates     dates.Result    `json:"dates"`
}

// Engine runs the extraction pipeline. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	selector      *title.Selector
	canonicalizer *title.Canonicalizer
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug traces and recovered panics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine over cat. A nil catalog means catalog.Default().
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	e := &Engine{
		selector:      title.NewSelector(cat),
		canonicalizer: title.NewCanonicalizer(cat),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Extract runs the default engine over in.
func Extract(in Input) Result {
	defaultOnce.Do(func() {
		defaultEngine = New(nil, WithLogger(slog.Default()))
	})
	return defaultEngine.Extract(in)
}

// Extract infers the document metadata. It never fails; anything it cannot
// find is left empty with a low confidence.
func (e *Engine) Extract(in Input) Result {
	return e.Explain(in).Result
}

// Explain is Extract plus the intermediate title and date results.
func (e *Engine) Explain(in Input) (out Explanation) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Extraction panicked", "filename", in.Filename, "panic", r)
			out = Explanation{Result: fallbackResult(fmt.Sprint(r))}
		}
	}()

	text := textutil.Normalize(in.Text)

	sel := e.selector.SelectDetailed(text, in.Filename)
	canon := e.canonicalizer.Canonicalize(sel.Value, text)
	found := dates.Extract(text)

	res := Result{
		Title:     firstNonEmpty(canon.Value, sel.Value, UntitledDocument),
		IssuedOn:  found.Issued.ISO,
		ExpiresOn: found.Expiry.ISO,
		Confidence: Confidence{
			Title:     titleConfidence(sel.Value, canon),
			IssuedOn:  found.Issued.Confidence,
			ExpiresOn: found.Expiry.Confidence,
		},
	}
	if canon.Changed {
		res.OriginalTitle = sel.Value
	}
	if canon.Note != "" {
		res.Notes = append(res.Notes, canon.Note)
	}
	res.Notes = append(res.Notes, found.Notes...)

	e.logger.Debug("Extracted document metadata",
		"filename", in.Filename,
		"strategy", sel.Strategy,
		"title", res.Title,
		"issued_on", res.IssuedOn,
		"expires_on", res.ExpiresOn,
		"locale", found.Locale.String(),
	)

	return Explanation{Result: res, Selection: sel, Canonical: canon, Dates: found}
}

func titleConfidence(raw string, canon title.Canonical) float64 {
	switch {
	case canon.Changed:
		return titleConfidenceCanonical
	case raw != "":
		return titleConfidenceRaw
	default:
		return titleConfidenceNone
	}
}

func fallbackResult(reason string) Result {
	return Result{
		Title:      UntitledDocument,
		Confidence: Confidence{Title: titleConfidenceNone},
		Notes:      []string{"Metadata could not be extracted: " + reason},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
