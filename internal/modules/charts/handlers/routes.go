package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all chart routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Post("/render", h.HandleRender)
		r.Get("/intervals", h.HandleGetIntervals)
		r.Get("/timeseries/{id}/dataset", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			h.HandleGetDataset(w, r, id)
		})
	})
}
