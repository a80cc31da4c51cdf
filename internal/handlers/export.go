package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/crewdocs/docmeta/internal/export"
)

var documentHeaders = []string{
	"ID",
	"Filename",
	"Title",
	"Category",
	"Issued On",
	"Expires On",
	"Title Confidence",
	"Confirmed",
	"Notes",
	"Created At",
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	docs := h.store.List()

	data, err := export.Workbook(export.Sheet{
		Name:    "Documents",
		Headers: documentHeaders,
		Widths:  []float64{38, 28, 40, 30, 12, 12, 10, 10, 60, 22},
		Rows:    documentRows(docs),
	})
	if err != nil {
		h.writeError(w, "Failed to build export: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filename := "crew-documents-" + time.Now().UTC().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// HandleCatalog returns the canonical title catalog.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog)
}
