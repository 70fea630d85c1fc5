package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-crm/meridian/internal/auth"
	"github.com/meridian-crm/meridian/internal/company"
	"github.com/meridian-crm/meridian/internal/crm/activities"
	"github.com/meridian-crm/meridian/internal/crm/leads"
	"github.com/meridian-crm/meridian/internal/crm/orders"
	"github.com/meridian-crm/meridian/internal/crm/quotations"
	"github.com/meridian-crm/meridian/internal/crm/tasks"
	"github.com/meridian-crm/meridian/internal/observability"
	"github.com/meridian-crm/meridian/internal/users"
	"github.com/meridian-crm/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthService       *auth.Service
	AuthHandler       *auth.Handler
	LeadsHandler      *leads.Handler
	ActivitiesHandler *activities.Handler
	TasksHandler      *tasks.Handler
	QuotationsHandler *quotations.Handler
	OrdersHandler     *orders.Handler
	UsersHandler      *users.Handler
	CompanyHandler    *company.Handler
	JobsHandler       *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.AuthHandler.MountPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(params.AuthService))

			params.AuthHandler.MountRoutes(r)
			params.LeadsHandler.MountRoutes(r)
			params.ActivitiesHandler.MountRoutes(r)
			params.TasksHandler.MountRoutes(r)
			params.QuotationsHandler.MountRoutes(r)
			params.OrdersHandler.MountRoutes(r)
			params.UsersHandler.MountRoutes(r)
			params.CompanyHandler.MountRoutes(r)
			if params.JobsHandler != nil {
				r.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
