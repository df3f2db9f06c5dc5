package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/campusconnect/internal/domain/model"
)

// ActivityDependencies accepts gamified activities for async awarding.
type ActivityDependencies interface {
	SubmitActivity(ctx context.Context, a model.Activity) (duplicate bool, err error)
}

// ActivitiesHandler handles activity submissions.
type ActivitiesHandler struct {
	deps ActivityDependencies
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps ActivityDependencies) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps}
}

// activityRequest mirrors the OpenAPI schema for POST /activities.
type activityRequest struct {
	ActivityID string    `json:"activity_id" validate:"required,max=256"`
	UserID     string    `json:"user_id" validate:"required"`
	Kind       string    `json:"kind" validate:"required"`
	OccurredAt time.Time `json:"occurred_at"`
}

// HandlePostActivity handles POST /activities. Accepted activities answer
// 202, repeats 200 and a full queue 429.
func (h *ActivitiesHandler) HandlePostActivity(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_activity"
	var req activityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	duplicate, err := h.deps.SubmitActivity(r.Context(), model.Activity{
		ID:         req.ActivityID,
		UserID:     req.UserID,
		Kind:       model.ActivityKind(req.Kind),
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
