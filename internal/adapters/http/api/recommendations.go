package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/internal/domain/types"
)

// RecommendationDependencies defines the read-only recommendation operations.
type RecommendationDependencies interface {
	RecommendMentors(ctx context.Context, userID string, limit int) ([]types.MentorRecommendation, error)
	RecommendEvents(ctx context.Context, userID string, limit int) ([]types.EventRecommendation, error)
	TrendingEvents(ctx context.Context, limit int) ([]model.Event, error)
	MentorsForSkills(ctx context.Context, skills []string, limit int) ([]types.SkillMentor, error)
}

// RecommendationsHandler serves mentor and event recommendations.
type RecommendationsHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// HandleMentors handles GET /users/{id}/recommendations/mentors?limit=N.
func (h *RecommendationsHandler) HandleMentors(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend_mentors"
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	out, err := h.deps.RecommendMentors(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleEvents handles GET /users/{id}/recommendations/events?limit=N.
func (h *RecommendationsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend_events"
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	out, err := h.deps.RecommendEvents(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleTrending handles GET /events/trending?limit=N.
func (h *RecommendationsHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	const op = "api.trending_events"
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	out, err := h.deps.TrendingEvents(r.Context(), limit)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleMentorsForSkills handles GET /mentors?skills=a,b&limit=N.
func (h *RecommendationsHandler) HandleMentorsForSkills(w http.ResponseWriter, r *http.Request) {
	const op = "api.mentors_for_skills"
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	var skills []string
	for _, raw := range r.URL.Query()["skills"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
	}
	if len(skills) == 0 {
		writeServiceError(w, op, fmt.Errorf("%w: skills is required", ErrBadRequest))
		return
	}
	out, err := h.deps.MentorsForSkills(r.Context(), skills, limit)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
