package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crewdocs/docmeta/internal/dates"
	"github.com/crewdocs/docmeta/internal/extraction"
	"github.com/crewdocs/docmeta/internal/models"
)

// HandleDocuments lists stored documents, oldest first. The optional
// expiring_before=YYYY-MM-DD filter keeps documents expiring before that day.
func (h *Handler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.store.List()

	if before := strings.TrimSpace(r.URL.Query().Get("expiring_before")); before != "" {
		if _, err := dates.ParseISO(before); err != nil {
			h.writeError(w, "expiring_before must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filtered := docs[:0]
		for _, doc := range docs {
			if doc.ExpiresBefore(before) {
				filtered = append(filtered, doc)
			}
		}
		docs = filtered
	}

	h.writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.getDocumentOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

// documentUpdate carries user corrections. Absent fields are kept; an empty
// date clears it.
type documentUpdate struct {
	Title     *string `json:"title"`
	IssuedOn  *string `json:"issuedOn"`
	ExpiresOn *string `json:"expiresOn"`
}

// HandleUpdateDocument stores user-confirmed values. Confirmed fields get
// full confidence.
func (h *Handler) HandleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := h.getDocumentOrError(w, id)
	if !ok {
		return
	}

	var update documentUpdate
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := applyUpdate(doc.Result, update)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := extraction.Validate(res); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc.Apply(res, time.Now().UTC())
	doc.Confirmed = true
	if m, found := h.catalog.Lookup(res.Title); found {
		doc.Category = m.Category
	} else if update.Title != nil {
		doc.Category = ""
	}

	h.store.Set(id, doc)
	h.index(r.Context(), doc)
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(chi.URLParam(r, "id")) {
		h.writeError(w, "Document not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func applyUpdate(res extraction.Result, update documentUpdate) (extraction.Result, error) {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return res, errBadRequest("title cannot be empty")
		}
		if title != res.Title {
			res.OriginalTitle = ""
		}
		res.Title = title
		res.Confidence.Title = 1
	}

	setDate := func(field string, value *string, dst *string, conf *float64) error {
		if value == nil {
			return nil
		}
		v := strings.TrimSpace(*value)
		if v == "" {
			*dst, *conf = "", 0
			return nil
		}
		if _, err := dates.ParseISO(v); err != nil {
			return errBadRequest(field + " must be YYYY-MM-DD")
		}
		*dst, *conf = v, 1
		return nil
	}
	if err := setDate("issuedOn", update.IssuedOn, &res.IssuedOn, &res.Confidence.IssuedOn); err != nil {
		return res, err
	}
	if err := setDate("expiresOn", update.ExpiresOn, &res.ExpiresOn, &res.Confidence.ExpiresOn); err != nil {
		return res, err
	}
	return res, nil
}

type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

// documentRows flattens records for the spreadsheet export.
func documentRows(docs []*models.DocumentRecord) [][]any {
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []any{
			d.ID,
			d.Filename,
			d.Title,
			d.Category,
			d.IssuedOn,
			d.ExpiresOn,
			d.Result.Confidence.Title,
			d.Confirmed,
			strings.Join(d.Result.Notes, "; "),
			d.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}
