package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	service "github.com/okian/campusconnect/internal/app"
	"github.com/okian/campusconnect/internal/domain/model"
)

// MentorshipDependencies defines the mentorship request operations.
type MentorshipDependencies interface {
	RequestMentorship(ctx context.Context, in service.MentorshipInput) (model.MentorshipRequest, error)
	UpdateMentorship(ctx context.Context, id, actorID string, upd service.MentorshipUpdate) (model.MentorshipRequest, error)
	ListMentorships(ctx context.Context, f docstore.MentorshipFilter) ([]model.MentorshipRequest, error)
}

// MentorshipsHandler handles mentorship requests.
type MentorshipsHandler struct {
	deps MentorshipDependencies
}

// NewMentorshipsHandler creates a new mentorships handler.
func NewMentorshipsHandler(deps MentorshipDependencies) *MentorshipsHandler {
	return &MentorshipsHandler{deps: deps}
}

type mentorshipRequest struct {
	MentorID    string   `json:"mentor_id" validate:"required"`
	MenteeID    string   `json:"mentee_id" validate:"required,nefield=MentorID"`
	Topic       string   `json:"topic" validate:"required,max=200"`
	Description string   `json:"description"`
	Goals       []string `json:"goals"`
}

type mentorshipUpdateRequest struct {
	ActorID   string                 `json:"actor_id" validate:"required"`
	Status    model.MentorshipStatus `json:"status" validate:"required,oneof=pending active completed cancelled"`
	StartDate *time.Time             `json:"start_date"`
	EndDate   *time.Time             `json:"end_date"`
}

// HandleRequest handles POST /mentorships.
func (h *MentorshipsHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	const op = "api.request_mentorship"
	var req mentorshipRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	m, err := h.deps.RequestMentorship(r.Context(), service.MentorshipInput{
		MentorID:    strings.TrimSpace(req.MentorID),
		MenteeID:    strings.TrimSpace(req.MenteeID),
		Topic:       req.Topic,
		Description: req.Description,
		Goals:       req.Goals,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleUpdate handles PUT /mentorships/{id}.
func (h *MentorshipsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_mentorship"
	var req mentorshipUpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	m, err := h.deps.UpdateMentorship(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.ActorID), service.MentorshipUpdate{
		Status:    req.Status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleList handles GET /mentorships?user_id=&role=&status=.
func (h *MentorshipsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_mentorships"
	q := r.URL.Query()
	ms, err := h.deps.ListMentorships(r.Context(), docstore.MentorshipFilter{
		UserID: strings.TrimSpace(q.Get("user_id")),
		Role:   strings.TrimSpace(q.Get("role")),
		Status: model.MentorshipStatus(strings.TrimSpace(q.Get("status"))),
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if ms == nil {
		ms = []model.MentorshipRequest{}
	}
	writeJSON(w, http.StatusOK, ms)
}
