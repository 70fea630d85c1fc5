package leads

import "github.com/go-chi/chi/v5"

// MountRoutes registers the lead endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/leads", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}
