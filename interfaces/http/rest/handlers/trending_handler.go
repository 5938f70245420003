package handlers

import (
	"net/http"

	"gsoc-backend/domain/trending"
	"gsoc-backend/infrastructure/snapshots"
	"gsoc-backend/interfaces/http/rest/middleware"
	"gsoc-backend/pkg/cache"
	"gsoc-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TrendingHandler serves the latest pre-generated trending snapshots.
type TrendingHandler struct {
	store  *snapshots.Store
	logger *zap.Logger
}

// NewTrendingHandler creates a new trending handler.
func NewTrendingHandler(store *snapshots.Store, logger *zap.Logger) *TrendingHandler {
	return &TrendingHandler{store: store, logger: logger}
}

// GetSnapshot handles GET /trending/{entity}/{range}.
func (h *TrendingHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	entity, ok := trending.ParseEntity(chi.URLParam(r, "entity"))
	if !ok {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError,
			"entity must be one of: organizations, projects, tech-stack, topics")
		return
	}
	rng, ok := trending.ParseRange(chi.URLParam(r, "range"))
	if !ok {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError,
			"range must be one of: daily, weekly, monthly, yearly")
		return
	}

	snap, err := h.store.ReadLatest(entity, rng)
	if err != nil {
		h.logger.Error("trending snapshot read failed",
			zap.String("entity", string(entity)),
			zap.String("range", string(rng)),
			zap.Error(err),
		)
		common.RespondError(w, http.StatusInternalServerError, common.StandardErrorCodes.InternalError, "internal error")
		return
	}
	if snap == nil {
		common.RespondError(w, http.StatusNotFound, common.StandardErrorCodes.NotFound,
			"no snapshot generated yet for this entity/range")
		return
	}

	w.Header().Set("Cache-Control", cache.HeaderShort)
	middleware.TagPage(w, cache.TagAll)
	common.RespondJSON(w, http.StatusOK, snap)
}
