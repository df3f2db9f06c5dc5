package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	"github.com/okian/campusconnect/internal/domain/model"
)

// EventDependencies defines the event calendar operations.
type EventDependencies interface {
	CreateEvent(ctx context.Context, e model.Event) (model.Event, error)
	GetEvent(ctx context.Context, id string) (model.Event, error)
	ListEvents(ctx context.Context, f docstore.EventFilter) ([]model.Event, error)
	RSVP(ctx context.Context, eventID, userID string) (model.Event, error)
	CheckIn(ctx context.Context, eventID, userID string) (model.Event, error)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	ID          string         `json:"id" validate:"omitempty,max=128"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Category    model.Category `json:"category" validate:"omitempty,oneof=Career Academic Cultural Networking Workshop Other"`
	StartDate   time.Time      `json:"start_date" validate:"required"`
	EndDate     time.Time      `json:"end_date"`
	Location    string         `json:"location"`
	Organizer   string         `json:"organizer"`
	Tags        []string       `json:"tags"`
	Capacity    int            `json:"capacity" validate:"gte=0"`
	Published   *bool          `json:"published"`
}

// attendeeRequest is the body of RSVP and check-in calls.
type attendeeRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// HandleCreateEvent handles POST /events.
func (h *EventsHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_event"
	var req eventRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	e, err := h.deps.CreateEvent(r.Context(), model.Event{
		ID:          strings.TrimSpace(req.ID),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Organizer:   req.Organizer,
		Tags:        req.Tags,
		Capacity:    req.Capacity,
		Published:   req.Published,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// HandleGetEvent handles GET /events/{id}.
func (h *EventsHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_event"
	e, err := h.deps.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleListEvents handles GET /events?category=&from=&to= with RFC3339 bounds.
func (h *EventsHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_events"
	q := r.URL.Query()
	f := docstore.EventFilter{Category: model.Category(strings.TrimSpace(q.Get("category")))}
	for key, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeServiceError(w, op, fmt.Errorf("%w: invalid %s; must be RFC3339", ErrBadRequest, key))
			return
		}
		*dst = t
	}
	events, err := h.deps.ListEvents(r.Context(), f)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleRSVP handles POST /events/{id}/rsvp.
func (h *EventsHandler) HandleRSVP(w http.ResponseWriter, r *http.Request) {
	h.attend(w, r, "api.rsvp", h.deps.RSVP)
}

// HandleCheckIn handles POST /events/{id}/checkin.
func (h *EventsHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.attend(w, r, "api.checkin", h.deps.CheckIn)
}

func (h *EventsHandler) attend(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, eventID, userID string) (model.Event, error),
) {
	var req attendeeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, op, err)
		return
	}
	e, err := fn(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.UserID))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
