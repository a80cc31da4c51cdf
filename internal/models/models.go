package models

import (
	"time"

	"github.com/crewdocs/docmeta/internal/extraction"
)

// DocumentRecord is one processed crew document
type DocumentRecord struct {
	ID        string            `json:"id"`
	Filename  string            `json:"filename,omitempty"`
	Source    string            `json:"source"` // "upload", "text", "kafka"
	Provider  string            `json:"provider,omitempty"`
	Title     string            `json:"title"`
	Category  string            `json:"category,omitempty"`
	IssuedOn  string            `json:"issued_on,omitempty"`
	ExpiresOn string            `json:"expires_on,omitempty"`
	Result    extraction.Result `json:"result"`
	Confirmed bool              `json:"confirmed"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewDocumentRecord builds a record from an extraction result
func NewDocumentRecord(id, filename, source string, res extraction.Result, category string) *DocumentRecord {
	now := time.Now().UTC()
	rec := &DocumentRecord{
		ID:        id,
		Filename:  filename,
		Source:    source,
		Category:  category,
		CreatedAt: now,
	}
	rec.Apply(res, now)
	return rec
}

// Apply replaces the stored result and the fields derived from it
func (d *DocumentRecord) Apply(res extraction.Result, at time.Time) {
	d.Result = res
	d.Title = res.Title
	d.IssuedOn = res.IssuedOn
	d.ExpiresOn = res.ExpiresOn
	d.UpdatedAt = at
}

// ExpiresBefore reports whether the document has an expiry date earlier
// than the given ISO day. Documents without one never expire.
func (d *DocumentRecord) ExpiresBefore(isoDay string) bool {
	return d.ExpiresOn != "" && d.ExpiresOn < isoDay
}
