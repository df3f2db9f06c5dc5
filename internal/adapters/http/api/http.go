// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	service "github.com/okian/campusconnect/internal/app"
	"github.com/okian/campusconnect/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	UserDependencies
	RecommendationDependencies
	EventDependencies
	MentorshipDependencies
	ConnectionDependencies
	KnowledgeDependencies
	ActivityDependencies
	LeaderboardDependencies
	RankDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	usersHandler           *UsersHandler
	recommendationsHandler *RecommendationsHandler
	eventsHandler          *EventsHandler
	mentorshipsHandler     *MentorshipsHandler
	connectionsHandler     *ConnectionsHandler
	knowledgeHandler       *KnowledgeHandler
	activitiesHandler      *ActivitiesHandler
	leaderboardHandler     *LeaderboardHandler
	rankHandler            *RankHandler
	middleware             *ChiMiddleware
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := options{
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
		middleware:          DefaultChiMiddlewareConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(deps),
		usersHandler:           NewUsersHandler(deps),
		recommendationsHandler: NewRecommendationsHandler(deps),
		eventsHandler:          NewEventsHandler(deps),
		mentorshipsHandler:     NewMentorshipsHandler(deps),
		connectionsHandler:     NewConnectionsHandler(deps),
		knowledgeHandler:       NewKnowledgeHandler(deps),
		activitiesHandler:      NewActivitiesHandler(deps),
		leaderboardHandler:     NewLeaderboardHandler(deps, o.maxLeaderboardLimit),
		rankHandler:            NewRankHandler(deps),
		middleware:             NewChiMiddleware(o.middleware),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.middleware.CORS())
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Group(func(r chi.Router) {
		r.Use(s.middleware.RateLimit())

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.usersHandler.HandleGetUser)
			r.Put("/", s.usersHandler.HandlePutUser)
			r.Get("/recommendations/mentors", s.recommendationsHandler.HandleMentors)
			r.Get("/recommendations/events", s.recommendationsHandler.HandleEvents)
			r.Get("/connections", s.connectionsHandler.HandleList)
			r.Get("/connections/pending", s.connectionsHandler.HandlePending)
		})
		r.Get("/mentors", s.recommendationsHandler.HandleMentorsForSkills)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.eventsHandler.HandleListEvents)
			r.Post("/", s.eventsHandler.HandleCreateEvent)
			r.Get("/trending", s.recommendationsHandler.HandleTrending)
			r.Get("/{id}", s.eventsHandler.HandleGetEvent)
			r.Post("/{id}/rsvp", s.eventsHandler.HandleRSVP)
			r.Post("/{id}/checkin", s.eventsHandler.HandleCheckIn)
		})

		r.Route("/mentorships", func(r chi.Router) {
			r.Get("/", s.mentorshipsHandler.HandleList)
			r.Post("/", s.mentorshipsHandler.HandleRequest)
			r.Put("/{id}", s.mentorshipsHandler.HandleUpdate)
		})

		r.Route("/connections", func(r chi.Router) {
			r.Post("/", s.connectionsHandler.HandleRequest)
			r.Put("/{id}", s.connectionsHandler.HandleRespond)
		})

		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/", s.knowledgeHandler.HandleCreate)
			r.Get("/search", s.knowledgeHandler.HandleSearch)
			r.Get("/trending", s.knowledgeHandler.HandleTrending)
			r.Get("/{id}", s.knowledgeHandler.HandleGet)
			r.Post("/{id}/vote", s.knowledgeHandler.HandleVote)
			r.Post("/{id}/helpful", s.knowledgeHandler.HandleHelpful)
			r.Post("/{id}/verify", s.knowledgeHandler.HandleVerify)
		})

		r.Post("/activities", s.activitiesHandler.HandlePostActivity)
		r.Get("/leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
		r.Get("/rank/{user_id}", s.rankHandler.HandleGetRank)
	})
}

// Handler returns a fresh chi router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service sentinels to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	wrapped := Wrap(op, err)
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", wrapped)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", wrapped)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", wrapped)
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", wrapped)
	case errors.Is(err, service.ErrBackpressure), errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", wrapped)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrapped)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", wrapped)
	}
}

// decodeBody reads a JSON body into dst and runs struct validation.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" failed "+strconv.Quote(fe.Tag()))
	}
	return errors.New(strings.Join(fields, "; "))
}

// queryLimit parses ?limit=. A missing value yields 0, which services treat
// as their default.
func queryLimit(r *http.Request) (int, error) {
	return queryPositive(r, "limit")
}

// queryPositive parses an optional positive integer query parameter.
func queryPositive(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrBadRequest, key)
	}
	return n, nil
}

// queryBool parses an optional boolean query parameter. A missing value is false.
func queryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrBadRequest, key)
	}
	return b, nil
}
