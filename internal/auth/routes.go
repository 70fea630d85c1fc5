package auth

import "github.com/go-chi/chi/v5"

// MountPublicRoutes registers the unauthenticated auth endpoints.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/register", h.Register)
}

// MountRoutes registers the endpoints that require a resolved identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/auth/me", h.Me)
}
