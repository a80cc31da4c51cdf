// Package pdftext reads the text layer of PDF certificates with pdfcpu.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/crewdocs/docmeta/internal/providers"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MaxPages caps how many pages are read. Certificates are short; the title
// and dates sit on the first pages.
const MaxPages = 5

// ErrNoText is returned for scanned PDFs without a usable text layer.
var ErrNoText = errors.New("no text layer found in PDF")

// Provider extracts text from PDF files.
type Provider struct{}

// New returns a PDF text provider.
func New() *Provider {
	return &Provider{}
}

// ExtractText implements providers.Provider.
func (p *Provider) ExtractText(ctx context.Context, req providers.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(req.Data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	var pages []string
	for pageNr := 1; pageNr <= min(pdfCtx.PageCount, MaxPages); pageNr++ {
		if text := pageText(pdfCtx, pageNr); text != "" {
			pages = append(pages, text)
		}
	}

	text := strings.Join(pages, "\n")
	if !usable(text) {
		return "", ErrNoText
	}
	return text, nil
}

func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

var (
	pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	moveRe      = regexp.MustCompile(`(-?[\d.]+)\s+(-?[\d.]+)\s+T[dD]$`)
)

// textFromStream walks the content stream operators. Text shown with Tj,
// TJ and ' is collected; a vertical move starts a new line.
func textFromStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			sb.WriteByte('\n')
		default:
			if m := moveRe.FindSubmatch(line); m != nil {
				if dy, err := strconv.ParseFloat(string(m[2]), 64); err == nil && dy != 0 {
					sb.WriteByte('\n')
				} else {
					sb.WriteByte(' ')
				}
			}
		}
	}

	return cleanText(sb.String())
}

// decodePDFString handles the escape sequences of PDF string literals.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			// octal, up to three digits
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// cleanText collapses spaces inside lines and drops blank lines and
// unprintable runes. Line breaks are kept; the title heuristics need them.
func cleanText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			if !unicode.IsPrint(r) {
				return -1
			}
			return r
		}, line)
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// usable reports whether the text layer has enough readable letters to be
// worth extracting from. Scans usually have none.
func usable(text string) bool {
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 8
}
