package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/campusconnect/internal/domain/model"
)

// UserDependencies defines the user profile operations.
type UserDependencies interface {
	GetUser(ctx context.Context, id string) (model.User, error)
	PutUser(ctx context.Context, u model.User) (model.User, error)
}

// UsersHandler handles profile requests.
type UsersHandler struct {
	deps UserDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UserDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

// userRequest is the writable part of a profile. Points and stats are owned
// by the server.
type userRequest struct {
	Email         string              `json:"email" validate:"omitempty,email"`
	Role          model.Role          `json:"role" validate:"omitempty,oneof=student alumni faculty"`
	Profile       model.Profile       `json:"profile"`
	Connections   []string            `json:"connections"`
	CareerGoals   model.Goals         `json:"career_goals"`
	Experience    []model.Experience  `json:"experience"`
	MentorProfile model.MentorProfile `json:"mentor_profile"`
}

// HandleGetUser handles GET /users/{id}.
func (h *UsersHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_user"
	u, err := h.deps.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandlePutUser handles PUT /users/{id}, creating or replacing the profile.
func (h *UsersHandler) HandlePutUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_user"
	var req userRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	u, err := h.deps.PutUser(r.Context(), model.User{
		ID:            chi.URLParam(r, "id"),
		Email:         req.Email,
		Role:          req.Role,
		Profile:       req.Profile,
		Connections:   req.Connections,
		CareerGoals:   req.CareerGoals,
		Experience:    req.Experience,
		MentorProfile: req.MentorProfile,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
