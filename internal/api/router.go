package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rflorenc/scm-migration-workbench/internal/config"
	"github.com/rflorenc/scm-migration-workbench/internal/migration"
	"github.com/rflorenc/scm-migration-workbench/internal/models"
	"github.com/rflorenc/scm-migration-workbench/internal/platform"
)

// APIFactory builds the destination reader for a tenant.
type APIFactory func(t *models.Tenant) (migration.API, error)

// Server holds shared state for all API handlers.
type Server struct {
	Config      *config.Config
	Tenants     *models.TenantStore
	Jobs        *models.JobStore
	Validations *ValidationStore
	Lock        *migration.WorkflowLock
	NewAPI      APIFactory
}

// NewServer creates a server with empty stores, seeded with the configured tenants.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		Config:      cfg,
		Tenants:     models.NewTenantStore(),
		Jobs:        models.NewJobStore(),
		Validations: NewValidationStore(),
		Lock:        &migration.WorkflowLock{},
		NewAPI:      PlatformAPI,
	}
	for _, t := range cfg.TenantModels() {
		s.Tenants.Create(t)
	}
	return s
}

// PlatformAPI reads from the live management plane.
func PlatformAPI(t *models.Tenant) (migration.API, error) {
	scm, err := platform.NewSCM(platform.NewClient(t))
	if err != nil {
		return nil, err
	}
	return scm, nil
}

// NewRouter builds the chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Tenants
		r.Post("/tenants", s.CreateTenant)
		r.Get("/tenants", s.ListTenants)
		r.Put("/tenants/{id}", s.UpdateTenant)
		r.Delete("/tenants/{id}", s.DeleteTenant)
		r.Post("/tenants/{id}/test", s.TestTenant)

		// Destination browsing
		r.Get("/types", s.ListConfigTypes)
		r.Get("/tenants/{id}/resources/{type}", s.ListResourcesOfType)
		r.Get("/exclusions", s.GetExclusions)

		// Validation (async) and push preparation
		r.Post("/validate", s.ValidateHandler)
		r.Get("/validate/{jobId}", s.GetValidation)
		r.Post("/push/filter", s.PushFilterHandler)
		r.Post("/dependencies/include", s.IncludeDependenciesHandler)

		// Jobs
		r.Get("/jobs", s.ListJobs)
		r.Get("/jobs/{id}", s.GetJob)
		r.Post("/jobs/{id}/cancel", s.CancelJob)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/jobs/{id}/events", s.StreamJobEvents)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
