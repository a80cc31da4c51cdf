// Package providers defines the text extraction collaborators that turn an
// uploaded file into the plain text the extraction engine reads.
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// ErrNotConfigured marks a provider that cannot be built, such as one with a
// missing API key. Retrying does not help.
var ErrNotConfigured = errors.New("provider not configured")

// Request is one uploaded file.
type Request struct {
	Filename    string
	ContentType string
	Data        []byte
	Model       string
	Temperature float64
}

// ImageFormat returns the image subtype of the request, e.g. "png" for
// "image/png". It is empty for non-image content.
func (r Request) ImageFormat() string {
	format, ok := strings.CutPrefix(r.ContentType, "image/")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(format, ';'); i >= 0 {
		format = format[:i]
	}
	return strings.TrimSpace(format)
}

// Provider turns a file into plain text.
type Provider interface {
	ExtractText(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Provider.
type Func func(ctx context.Context, req Request) (string, error)

// ExtractText calls f.
func (f Func) ExtractText(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Lazy builds its provider on first use and reuses it for the life of the
// process. A failed build is remembered and returned on every call.
type Lazy struct {
	name  string
	build func() (Provider, error)

	once     sync.Once
	provider Provider
	err      error
}

// NewLazy wraps build so it runs at most once.
func NewLazy(name string, build func() (Provider, error)) *Lazy {
	return &Lazy{name: name, build: build}
}

// Name is the provider name given to NewLazy.
func (l *Lazy) Name() string {
	return l.name
}

// Get returns the provider, building it if needed.
func (l *Lazy) Get() (Provider, error) {
	l.once.Do(func() {
		l.provider, l.err = l.build()
		switch {
		case l.err == nil:
		case errors.Is(l.err, ErrNotConfigured):
			l.err = fmt.Errorf("failed to initialize %s provider: %w", l.name, l.err)
		default:
			l.err = fmt.Errorf("failed to initialize %s provider: %w: %w", l.name, ErrNotConfigured, l.err)
		}
	})
	return l.provider, l.err
}

// ExtractText builds the provider if needed and delegates to it.
func (l *Lazy) ExtractText(ctx context.Context, req Request) (string, error) {
	p, err := l.Get()
	if err != nil {
		return "", err
	}
	return p.ExtractText(ctx, req)
}

// PlainText returns the file content as is. It rejects content that is not UTF-8.
type PlainText struct{}

// ExtractText implements Provider.
func (PlainText) ExtractText(_ context.Context, req Request) (string, error) {
	if !utf8.Valid(req.Data) {
		return "", fmt.Errorf("file %q is not valid UTF-8 text", req.Filename)
	}
	return string(req.Data), nil
}

// OCRPrompt is the instruction sent to vision models.
const OCRPrompt = `You are performing OCR (Optical Character Recognition) on a scanned crew certificate, licence or identity document.

Your task is to extract ALL visible text from the image exactly as it appears, preserving:
- Line breaks and layout order
- Capitalization
- Punctuation, including the separators inside dates (01/02/2023, 03-Aug-2027)
- Accented characters (the document may be in English or French)

INSTRUCTIONS:
1. Read the image carefully from top to bottom
2. Transcribe every piece of visible text, including stamps and small print
3. Preserve the original line breaks
4. Do not add any interpretation, commentary, or explanations
5. Do not reformat or translate dates or titles
6. If text is partially obscured or unclear, transcribe what you can see and use [?] for illegible portions

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The image contains:".`
