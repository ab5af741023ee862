package handlers

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/devfolio/devfolio/internal/errors"
	"github.com/devfolio/devfolio/internal/github"
)

// ActivityResponse is the success payload of GET /api/github/activity.
type ActivityResponse struct {
	Username   string            `json:"username"`
	Activities []github.Activity `json:"activities"`
}

// ActivityHandler serves the GitHub activity feed for one configured user.
type ActivityHandler struct {
	Source   github.ActivitySource
	Username string
}

func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := github.DefaultLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > github.MaxLimit {
			respondWithAPIError(w, r, apperrors.NewErrorResponse(apperrors.CodeBadRequest,
				"limit must be an integer between 1 and "+strconv.Itoa(github.MaxLimit),
				map[string]any{"limit": raw}))
			return
		}
		limit = n
	}

	if h.Source == nil || strings.TrimSpace(h.Username) == "" {
		respondWithAPIError(w, r, apperrors.NewErrorResponse(apperrors.CodeServiceUnavailable,
			"GitHub activity is not configured", nil))
		return
	}

	items, err := h.Source.RecentActivity(r.Context(), h.Username, limit)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if items == nil {
		items = []github.Activity{}
	}

	apperrors.RespondWithSuccess(w, r, http.StatusOK, ActivityResponse{
		Username:   h.Username,
		Activities: items,
	})
}
