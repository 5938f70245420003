package rest

import (
	"net/http"

	"gsoc-backend/interfaces/http/rest/handlers"
	"gsoc-backend/interfaces/http/rest/middleware"
	"gsoc-backend/pkg/cache"
	"gsoc-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	catalog    *handlers.CatalogHandler
	trending   *handlers.TrendingHandler
	admin      *handlers.AdminHandler
	pages      *middleware.PageCache
	adminKey   string
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	catalog *handlers.CatalogHandler,
	trending *handlers.TrendingHandler,
	admin *handlers.AdminHandler,
	pages *middleware.PageCache,
	adminKey string,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		catalog:    catalog,
		trending:   trending,
		admin:      admin,
		pages:      pages,
		adminKey:   adminKey,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", middleware.AdminKeyHeader},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	// Public read API, fronted by the page cache
	router.Route("/api", func(r chi.Router) {
		r.Use(rt.pages.Handler)

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", rt.catalog.ListOrganizations)
			r.Get("/{slug}", rt.catalog.GetOrganization)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.catalog.ListProjects)
			r.Get("/{id}", rt.catalog.GetProject)
		})

		r.Route("/years", func(r chi.Router) {
			r.Get("/", rt.catalog.ListYears)
			r.Get("/{year}/stats", rt.catalog.GetYearStats)
		})

		r.Get("/tech-stack", rt.catalog.ListTechStack)
		r.Get("/topics", rt.catalog.ListTopics)

		r.Get("/trending/{entity}/{range}", rt.trending.GetSnapshot)
	})

	// Admin routes: shared-secret auth, never cached
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminKey(rt.adminKey, rt.logger))
		r.Post("/invalidate-cache", rt.admin.InvalidateCache)
	})

	return router
}

// healthCheck responds to health probes. Health state must never be
// served stale.
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", cache.HeaderNoCache)
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
