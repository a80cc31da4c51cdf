package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crewdocs/docmeta/internal/catalog"
	"github.com/crewdocs/docmeta/internal/extraction"
	"github.com/crewdocs/docmeta/internal/models"
	"github.com/crewdocs/docmeta/internal/providers"
	"github.com/crewdocs/docmeta/internal/search"
	"github.com/crewdocs/docmeta/internal/storage"
)

const defaultMaxUpload = 20 << 20

// TextExtractor turns an uploaded file into text.
type TextExtractor interface {
	ExtractText(ctx context.Context, req providers.Request, provider string) (string, error)
}

// Indexer receives every stored document. Optional.
type Indexer interface {
	Index(ctx context.Context, doc search.Document) error
}

type Handler struct {
	store     *storage.DocumentStore
	engine    *extraction.Engine
	catalog   *catalog.Catalog
	ocr       TextExtractor
	indexer   Indexer
	maxUpload int64
}

// Options configures New. Nil fields get defaults, except OCR: without it
// file uploads are rejected and only JSON text is accepted.
type Options struct {
	Store     *storage.DocumentStore
	Engine    *extraction.Engine
	Catalog   *catalog.Catalog
	OCR       TextExtractor
	Indexer   Indexer
	MaxUpload int64
}

func New(opts Options) *Handler {
	h := &Handler{
		store:     opts.Store,
		engine:    opts.Engine,
		catalog:   opts.Catalog,
		ocr:       opts.OCR,
		indexer:   opts.Indexer,
		maxUpload: opts.MaxUpload,
	}
	if h.store == nil {
		h.store = storage.New()
	}
	if h.catalog == nil {
		h.catalog = catalog.Default()
	}
	if h.engine == nil {
		h.engine = extraction.New(h.catalog, extraction.WithLogger(slog.Default()))
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUpload
	}
	return h
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSON(w, code, errorResponse{Error: message})
}

// Document helpers
func (h *Handler) getDocumentOrError(w http.ResponseWriter, id string) (*models.DocumentRecord, bool) {
	doc, exists := h.store.Get(id)
	if !exists {
		h.writeError(w, "Document not found", http.StatusNotFound)
		return nil, false
	}
	return doc, true
}

// index forwards a stored document to the search index. Failures are logged
// and do not fail the request.
func (h *Handler) index(ctx context.Context, doc *models.DocumentRecord) {
	if h.indexer == nil {
		return
	}
	sd := search.NewDocument(doc.ID, doc.Filename, doc.Category, doc.Result)
	if err := h.indexer.Index(ctx, sd); err != nil {
		slog.Warn("Failed to index document", "id", doc.ID, "err", err)
	}
}
