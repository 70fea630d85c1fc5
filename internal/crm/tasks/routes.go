package tasks

import "github.com/go-chi/chi/v5"

// MountRoutes registers the task endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/today", h.Today)
		r.Get("/upcoming", h.Upcoming)
		r.Get("/reminders/run", h.Reminders)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}
