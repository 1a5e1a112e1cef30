package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"scribbles/internal/cache"
	"scribbles/internal/httputil"
	"scribbles/internal/model"
	"scribbles/internal/transport/http/middleware"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = cache.ActivityCacheCap
)

// ActivityHandler serves the logged-in user's recent activity.
type ActivityHandler struct {
	activity cache.ActivityCache
	log      *zap.Logger
}

// NewActivityHandler creates the handler. A nil cache (no Redis configured)
// serves an empty timeline.
func NewActivityHandler(activity cache.ActivityCache, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		log:      log.Named("ActivityHandler"),
	}
}

// Mine handles GET /me/activity?limit=20
func (h *ActivityHandler) Mine(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorizedWithCode(w, model.CodeNoSession, "not authenticated")
		return
	}

	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	entries := []model.Activity{}
	if h.activity != nil {
		got, err := h.activity.Recent(r.Context(), username, limit)
		if err != nil {
			h.log.Error("Recent activity failed", zap.String("username", username), zap.Error(err))
			httputil.WriteInternalError(w, "failed to load activity")
			return
		}
		entries = got
	}

	httputil.WriteJSON(w, http.StatusOK, model.ActivityListResponse{Activity: entries})
}
