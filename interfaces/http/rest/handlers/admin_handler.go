package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"gsoc-backend/application/ports"
	"gsoc-backend/pkg/cache"
	"gsoc-backend/pkg/clock"
	"gsoc-backend/pkg/common"
	"gsoc-backend/pkg/utils"

	"go.uber.org/zap"
)

// Year bounds accepted by the invalidation endpoint. GSoC started in 2005.
const (
	minYear = 2005
	maxYear = 2100
)

// AdminHandler serves the administrative cache-invalidation endpoint. Its
// 200 response echoes exactly which tags and paths were purged — that echo
// is the audit trail, there is no persistent invalidation log.
type AdminHandler struct {
	provider cache.Provider
	pages    ports.PageInvalidator
	clock    clock.Clock
	logger   *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(provider cache.Provider, pages ports.PageInvalidator, clk clock.Clock, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		provider: provider,
		pages:    pages,
		clock:    clk,
		logger:   logger,
	}
}

// InvalidateRequest is the discriminated request body.
type InvalidateRequest struct {
	Type string   `json:"type" validate:"required,oneof=all year organization tags path"`
	Year int      `json:"year,omitempty"`
	Slug string   `json:"slug,omitempty"`
	Tags []string `json:"tags,omitempty"`
	Path string   `json:"path,omitempty"`
}

// InvalidateResult echoes what was purged.
type InvalidateResult struct {
	Type             string   `json:"type"`
	InvalidatedTags  []string `json:"invalidated_tags"`
	InvalidatedPaths []string `json:"invalidated_paths"`
	Timestamp        string   `json:"timestamp"`
}

// InvalidateCache handles POST /admin/invalidate-cache. Validation happens
// before any purge, so an invalid request never partially invalidates.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := common.ParseJSONBody(r, &req, 1<<16); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_TYPE", err.Error())
		return
	}

	tags, paths, code, err := h.resolveScope(req)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, code, err.Error())
		return
	}

	for _, tag := range tags {
		purged := h.provider.InvalidateTag(r.Context(), tag)
		pagesDropped := h.pages.InvalidateByTag(tag)
		h.logger.Info("cache tag invalidated",
			zap.String("tag", tag),
			zap.Int("entries", purged),
			zap.Int("pages", pagesDropped),
		)
	}
	if req.Type == "all" {
		// The tag purge above already reached every tagged page; Clear
		// additionally catches pages cached without tags.
		h.pages.Clear()
	}
	for _, path := range paths {
		dropped := h.pages.InvalidateByPath(path)
		h.logger.Info("page path invalidated",
			zap.String("path", path),
			zap.Int("pages", dropped),
		)
	}

	common.RespondJSON(w, http.StatusOK, InvalidateResult{
		Type:             req.Type,
		InvalidatedTags:  tags,
		InvalidatedPaths: paths,
		Timestamp:        h.clock.Now().UTC().Format(time.RFC3339),
	})
}

// resolveScope maps the request to the exact tag and path sets to purge.
// Returns a machine-readable error code on validation failure.
func (h *AdminHandler) resolveScope(req InvalidateRequest) (tags, paths []string, code string, err error) {
	paths = []string{}
	switch req.Type {
	case "all":
		tags = []string{cache.TagAll}

	case "year":
		if req.Year < minYear || req.Year > maxYear {
			return nil, nil, "INVALID_YEAR", fmt.Errorf("year must be between %d and %d", minYear, maxYear)
		}
		// Year stats aggregate across organizations, so the stats and
		// years tags go stale together with the year itself.
		tags = []string{cache.YearTag(req.Year), cache.TagStats, cache.TagYears}
		paths = []string{fmt.Sprintf("/gsoc-%d-organizations", req.Year)}

	case "organization":
		if strings.TrimSpace(req.Slug) == "" {
			return nil, nil, "INVALID_SLUG", fmt.Errorf("slug must be a non-empty string")
		}
		tags = []string{cache.OrganizationTag(req.Slug)}
		paths = []string{"/organization/" + req.Slug}

	case "tags":
		if len(req.Tags) == 0 {
			return nil, nil, "INVALID_TAGS", fmt.Errorf("tags must be a non-empty array")
		}
		for _, tag := range req.Tags {
			if strings.TrimSpace(tag) == "" {
				return nil, nil, "INVALID_TAGS", fmt.Errorf("tags must be non-empty strings")
			}
		}
		tags = req.Tags

	case "path":
		if req.Path == "" || !strings.HasPrefix(req.Path, "/") {
			return nil, nil, "INVALID_PATH", fmt.Errorf("path must start with /")
		}
		tags = []string{}
		paths = []string{req.Path}
	}

	return tags, paths, "", nil
}
