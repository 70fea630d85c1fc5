package activities

import "github.com/go-chi/chi/v5"

// MountRoutes registers the activity endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/activities", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/summary/overview", h.Summary)
		r.Post("/verify", h.Verify)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}
