package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/campusconnect/internal/domain/model"
)

// ConnectionDependencies defines the networking operations.
type ConnectionDependencies interface {
	RequestConnection(ctx context.Context, fromID, toID, message string) (model.Connection, error)
	RespondConnection(ctx context.Context, id, actorID string, status model.ConnectionStatus) (model.Connection, error)
	ListConnections(ctx context.Context, userID string) ([]model.User, error)
	PendingConnections(ctx context.Context, userID string) ([]model.Connection, error)
}

// ConnectionsHandler handles connection requests between users.
type ConnectionsHandler struct {
	deps ConnectionDependencies
}

// NewConnectionsHandler creates a new connections handler.
func NewConnectionsHandler(deps ConnectionDependencies) *ConnectionsHandler {
	return &ConnectionsHandler{deps: deps}
}

type connectionRequest struct {
	FromID  string `json:"from_id" validate:"required"`
	ToID    string `json:"to_id" validate:"required,nefield=FromID"`
	Message string `json:"message" validate:"max=500"`
}

type connectionResponse struct {
	ActorID string                 `json:"actor_id" validate:"required"`
	Status  model.ConnectionStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

// HandleRequest handles POST /connections.
func (h *ConnectionsHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	const op = "api.request_connection"
	var req connectionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	c, err := h.deps.RequestConnection(r.Context(), strings.TrimSpace(req.FromID), strings.TrimSpace(req.ToID), req.Message)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleRespond handles PUT /connections/{id}.
func (h *ConnectionsHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	const op = "api.respond_connection"
	var req connectionResponse
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	c, err := h.deps.RespondConnection(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.ActorID), req.Status)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleList handles GET /users/{id}/connections.
func (h *ConnectionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_connections"
	users, err := h.deps.ListConnections(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// HandlePending handles GET /users/{id}/connections/pending.
func (h *ConnectionsHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	const op = "api.pending_connections"
	cs, err := h.deps.PendingConnections(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if cs == nil {
		cs = []model.Connection{}
	}
	writeJSON(w, http.StatusOK, cs)
}
