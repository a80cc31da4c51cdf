package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes mounts the API on a chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", h.HandleExtract)
		r.Get("/catalog", h.HandleCatalog)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.HandleDocuments)
			r.Get("/export.xlsx", h.HandleExport)
			r.Get("/{id}", h.HandleDocument)
			r.Put("/{id}", h.HandleUpdateDocument)
			r.Delete("/{id}", h.HandleDeleteDocument)
		})
	})

	return r
}
