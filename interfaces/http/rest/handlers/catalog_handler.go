package handlers

import (
	"net/http"
	"strconv"

	"gsoc-backend/application/queries"
	"gsoc-backend/interfaces/http/rest/middleware"
	"gsoc-backend/pkg/cache"
	"gsoc-backend/pkg/clock"
	"gsoc-backend/pkg/common"
	apperrors "gsoc-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the cached catalog reads: organizations, projects,
// years, stats, and the technology/topic aggregations.
type CatalogHandler struct {
	queries *queries.CatalogQueries
	clock   clock.Clock
	logger  *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(q *queries.CatalogQueries, clk clock.Clock, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		queries: q,
		clock:   clk,
		logger:  logger,
	}
}

// ListOrganizations handles GET /organizations?year=YYYY. The year
// defaults to the current program year.
func (h *CatalogHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	orgs, err := h.queries.OrganizationsByYear(r.Context(), year)
	if err != nil {
		h.respondUpstreamError(w, "list organizations", err)
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderForYear(h.clock, year))
	middleware.TagPage(w, cache.TagAll, cache.TagOrganizations, cache.YearTag(year))
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"year":          year,
		"organizations": orgs,
	})
}

// GetOrganization handles GET /organizations/{slug}.
func (h *CatalogHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, "slug is required")
		return
	}

	org, err := h.queries.OrganizationBySlug(r.Context(), slug)
	if err != nil {
		h.respondUpstreamError(w, "get organization", err)
		return
	}
	if org == nil {
		common.RespondError(w, http.StatusNotFound, common.StandardErrorCodes.NotFound, "organization not found")
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderMedium)
	middleware.TagPage(w, cache.TagAll, cache.TagOrganizations, cache.OrganizationTag(slug))
	common.RespondJSON(w, http.StatusOK, org)
}

// ListProjects handles GET /projects?year=YYYY.
func (h *CatalogHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	projects, err := h.queries.ProjectsByYear(r.Context(), year)
	if err != nil {
		h.respondUpstreamError(w, "list projects", err)
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderForYear(h.clock, year))
	middleware.TagPage(w, cache.TagAll, cache.TagProjects, cache.YearTag(year))
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"projects": projects,
	})
}

// GetProject handles GET /projects/{id}.
func (h *CatalogHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, "id is required")
		return
	}

	project, err := h.queries.ProjectByID(r.Context(), id)
	if err != nil {
		h.respondUpstreamError(w, "get project", err)
		return
	}
	if project == nil {
		common.RespondError(w, http.StatusNotFound, common.StandardErrorCodes.NotFound, "project not found")
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderLong)
	middleware.TagPage(w, cache.TagAll, cache.TagProjects, cache.ProjectTag(id))
	common.RespondJSON(w, http.StatusOK, project)
}

// ListYears handles GET /years.
func (h *CatalogHandler) ListYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.queries.Years(r.Context())
	if err != nil {
		h.respondUpstreamError(w, "list years", err)
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderMedium)
	middleware.TagPage(w, cache.TagAll, cache.TagYears, cache.TagMeta)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"years": years})
}

// GetYearStats handles GET /years/{year}/stats.
func (h *CatalogHandler) GetYearStats(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, "year must be an integer")
		return
	}

	stats, err := h.queries.StatsForYear(r.Context(), year)
	if err != nil {
		h.respondUpstreamError(w, "year stats", err)
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderForYear(h.clock, year))
	middleware.TagPage(w, cache.TagAll, cache.TagStats, cache.YearTag(year))
	common.RespondJSON(w, http.StatusOK, stats)
}

// ListTechStack handles GET /tech-stack.
func (h *CatalogHandler) ListTechStack(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queries.TechStack(r.Context())
	if err != nil {
		h.respondUpstreamError(w, "tech stack", err)
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderMedium)
	middleware.TagPage(w, cache.TagAll, cache.TagTechStack)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"tech_stack": entries})
}

// ListTopics handles GET /topics.
func (h *CatalogHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queries.Topics(r.Context())
	if err != nil {
		h.respondUpstreamError(w, "topics", err)
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderMedium)
	middleware.TagPage(w, cache.TagAll, cache.TagTopics)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"topics": entries})
}

// yearParam parses the optional year query parameter, defaulting to the
// current year. Returns false after writing the error response.
func (h *CatalogHandler) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.clock.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, "year must be an integer")
		return 0, false
	}
	return year, true
}

// respondUpstreamError logs the store failure and returns a generic 500.
// Internal detail never reaches the response body.
func (h *CatalogHandler) respondUpstreamError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("catalog read failed", zap.String("op", op), zap.Error(err))
	if appErr, ok := apperrors.AsAppError(err); ok {
		common.RespondError(w, appErr.HTTPStatus, appErr.Code, "internal error")
		return
	}
	common.RespondError(w, http.StatusInternalServerError, common.StandardErrorCodes.InternalError, "internal error")
}
