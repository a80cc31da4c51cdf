package dataset

import "strings"

// maxPages bounds how much of a multi-page scan is fed to the engine.
// Certificate metadata sits on the first pages.
const maxPages = 5

// SampleRecord is one labeled crew document. The expected fields are the
// values a reviewer confirmed for the document.
type SampleRecord struct {
	ID       string `json:"id" parquet:"id"`
	Filename string `json:"filename" parquet:"filename,optional"`

	// Extracted text, either whole or per page
	Text        string   `json:"text" parquet:"text,optional"`
	TextByPage  []string `json:"text_by_page" parquet:"text_by_page,list"`
	Language    string   `json:"language" parquet:"language,optional"` // "en", "fr", ...
	DocumentTag string   `json:"document_tag" parquet:"document_tag,optional"`

	// Ground truth
	ExpectedTitle     string `json:"expected_title" parquet:"expected_title"`
	ExpectedIssuedOn  string `json:"expected_issued_on" parquet:"expected_issued_on,optional"`
	ExpectedExpiresOn string `json:"expected_expires_on" parquet:"expected_expires_on,optional"`
}

// GetText returns the document text. Paged text is joined with blank lines
// and cut to the first pages.
func (r *SampleRecord) GetText() string {
	if r.Text != "" || len(r.TextByPage) == 0 {
		return r.Text
	}

	pages := r.TextByPage
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return strings.Join(pages, "\n\n")
}

// HasText reports whether there is anything to extract from.
func (r *SampleRecord) HasText() bool {
	return strings.TrimSpace(r.GetText()) != ""
}
