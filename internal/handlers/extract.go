package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/crewdocs/docmeta/internal/extraction"
	"github.com/crewdocs/docmeta/internal/models"
	"github.com/crewdocs/docmeta/internal/ocr"
	"github.com/crewdocs/docmeta/internal/providers"
)

type extractResponse struct {
	ID       string            `json:"id"`
	Category string            `json:"category,omitempty"`
	Result   extraction.Result `json:"result"`
}

// HandleExtract accepts either JSON {text, filename} or a multipart upload
// in the "file" field, extracts metadata and stores the document.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleTextExtract(w, r)
		return
	}

	h.handleFileExtract(w, r)
}

func (h *Handler) handleTextExtract(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Text     string `json:"text"`
		Filename string `json:"filename"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(request.Text) == "" && strings.TrimSpace(request.Filename) == "" {
		h.writeError(w, "text or filename is required", http.StatusBadRequest)
		return
	}

	h.extractAndStore(w, r, extraction.Input{Text: request.Text, Filename: request.Filename}, "text", "")
}

func (h *Handler) handleFileExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	provider := r.FormValue("provider")
	model := r.FormValue("model")

	fileData, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(fileData)) > h.maxUpload {
		h.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	if h.ocr == nil {
		h.writeError(w, "File uploads are not enabled", http.StatusServiceUnavailable)
		return
	}

	req := providers.Request{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        fileData,
		Model:       model,
	}
	text, err := h.ocr.ExtractText(r.Context(), req, provider)
	if err != nil {
		if errors.Is(err, ocr.ErrUnsupported) {
			h.writeError(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
		h.writeError(w, "Failed to extract text: "+err.Error(), http.StatusBadGateway)
		return
	}

	slog.Info("Extracted text from upload", "filename", header.Filename, "bytes", len(fileData), "chars", len(text))
	h.extractAndStore(w, r, extraction.Input{Text: text, Filename: header.Filename}, "upload", provider)
}

func (h *Handler) extractAndStore(w http.ResponseWriter, r *http.Request, in extraction.Input, source, provider string) {
	ex := h.engine.Explain(in)

	id := uuid.NewString()
	doc := models.NewDocumentRecord(id, in.Filename, source, ex.Result, ex.Canonical.Category)
	doc.Provider = provider
	h.store.Set(id, doc)
	h.index(r.Context(), doc)

	slog.Info("Stored document", "id", id, "title", doc.Title, "strategy", ex.Selection.Strategy)
	h.writeJSON(w, http.StatusCreated, extractResponse{ID: id, Category: doc.Category, Result: ex.Result})
}
