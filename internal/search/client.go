// Package search indexes extraction results into Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/crewdocs/docmeta/internal/extraction"
)

// Document is the indexed form of one extraction result.
type Document struct {
	ID            string                `json:"id"`
	Filename      string                `json:"filename,omitempty"`
	Title         string                `json:"title"`
	OriginalTitle string                `json:"original_title,omitempty"`
	Category      string                `json:"category,omitempty"`
	IssuedOn      string                `json:"issued_on,omitempty"`
	ExpiresOn     string                `json:"expires_on,omitempty"`
	Confidence    extraction.Confidence `json:"confidence"`
	Notes         []string              `json:"notes,omitempty"`
	IndexedAt     time.Time             `json:"indexed_at"`
}

// NewDocument flattens a result for indexing.
func NewDocument(id, filename, category string, res extraction.Result) Document {
	return Document{
		ID:            id,
		Filename:      filename,
		Title:         res.Title,
		OriginalTitle: res.OriginalTitle,
		Category:      category,
		IssuedOn:      res.IssuedOn,
		ExpiresOn:     res.ExpiresOn,
		Confidence:    res.Confidence,
		Notes:         res.Notes,
		IndexedAt:     time.Now().UTC(),
	}
}

// Client wraps go-elasticsearch for the document index.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// New instantiates the Elasticsearch client.
func New(addr, index string, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{es: es, index: index, log: logger}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// Index writes a document, replacing any earlier version with the same ID.
func (c *Client) Index(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index document failed: %s", strings.TrimSpace(string(body)))
	}

	c.log.Debug("Indexed document", "id", doc.ID, "title", doc.Title)
	return nil
}

// ExpiringBefore returns documents whose expiry date is before isoDay,
// soonest first.
func (c *Client) ExpiringBefore(ctx context.Context, isoDay string, size int) ([]Document, error) {
	if size <= 0 {
		size = 50
	}

	body := map[string]any{
		"size": size,
		"query": map[string]any{
			"range": map[string]any{
				"expires_on": map[string]any{"lt": isoDay},
			},
		},
		"sort": []map[string]any{
			{"expires_on": map[string]any{"order": "asc"}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]Document, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
