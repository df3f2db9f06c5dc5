package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	"github.com/okian/campusconnect/internal/adapters/http/api"
	service "github.com/okian/campusconnect/internal/app"
	"github.com/okian/campusconnect/internal/domain/knowledge"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/internal/domain/types"
	"github.com/okian/campusconnect/pkg/logger"
)

// fakeService records the calls it receives and answers with canned values.
type fakeService struct {
	users       map[string]model.User
	events      map[string]model.Event
	putUser     model.User
	eventFilter docstore.EventFilter
	created     model.Event
	attendErr   error
	mentorship  service.MentorshipInput
	update      service.MentorshipUpdate
	actorID     string
	updateErr   error
	msFilter    docstore.MentorshipFilter
	submitted   []model.Activity
	duplicate   bool
	submitErr   error
	lastLimit   int
	skills      []string
	leaderboard []types.Entry
	rank        map[string]types.Entry
	internalErr error
	connFrom    string
	connTo      string
	connStatus  model.ConnectionStatus
	connErr     error
	knowledgeIn service.KnowledgeInput
	query       knowledge.Query
	vote        model.Vote
	actionUser  string
	actionErr   error
}

func newFakeService() *fakeService {
	return &fakeService{
		users: map[string]model.User{
			"s1": {ID: "s1", Email: "s1@campus.edu", Role: model.RoleStudent, Profile: model.Profile{Name: "Sam"}},
			"m1": {ID: "m1", Email: "m1@campus.edu", Role: model.RoleAlumni, Profile: model.Profile{Name: "Mia"}},
		},
		events: map[string]model.Event{
			"e1": {ID: "e1", Title: "Career Fair", Category: model.CategoryCareer},
		},
		leaderboard: []types.Entry{{Rank: 1, UserID: "m1", Points: 80}, {Rank: 2, UserID: "s1", Points: 30}},
		rank:        map[string]types.Entry{"s1": {Rank: 2, UserID: "s1", Points: 30}},
	}
}

func (f *fakeService) GetUser(_ context.Context, id string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("%w: user %s", service.ErrNotFound, id)
	}
	return u, nil
}

func (f *fakeService) PutUser(_ context.Context, u model.User) (model.User, error) {
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	f.putUser = u
	return u, nil
}

func (f *fakeService) RecommendMentors(_ context.Context, userID string, limit int) ([]types.MentorRecommendation, error) {
	f.lastLimit = limit
	if _, ok := f.users[userID]; !ok {
		return nil, service.ErrNotFound
	}
	return types.NewMentorRecommendations(nil), nil
}

func (f *fakeService) RecommendEvents(_ context.Context, userID string, limit int) ([]types.EventRecommendation, error) {
	f.lastLimit = limit
	if _, ok := f.users[userID]; !ok {
		return nil, service.ErrNotFound
	}
	return types.NewEventRecommendations(nil), nil
}

func (f *fakeService) TrendingEvents(_ context.Context, limit int) ([]model.Event, error) {
	f.lastLimit = limit
	return []model.Event{f.events["e1"]}, nil
}

func (f *fakeService) MentorsForSkills(_ context.Context, skills []string, limit int) ([]types.SkillMentor, error) {
	f.skills = skills
	f.lastLimit = limit
	return types.NewSkillMentors(nil), nil
}

func (f *fakeService) CreateEvent(_ context.Context, e model.Event) (model.Event, error) {
	if e.ID == "" {
		e.ID = "generated"
	}
	f.created = e
	return e, nil
}

func (f *fakeService) GetEvent(_ context.Context, id string) (model.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return model.Event{}, service.ErrNotFound
	}
	return e, nil
}

func (f *fakeService) ListEvents(_ context.Context, filter docstore.EventFilter) ([]model.Event, error) {
	f.eventFilter = filter
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, service.ErrInvalidInput
	}
	return nil, nil
}

func (f *fakeService) RSVP(_ context.Context, eventID, userID string) (model.Event, error) {
	if f.attendErr != nil {
		return model.Event{}, f.attendErr
	}
	e := f.events[eventID]
	e.Attendees = append(e.Attendees, model.Attendee{UserID: userID})
	return e, nil
}

func (f *fakeService) CheckIn(_ context.Context, eventID, userID string) (model.Event, error) {
	if f.attendErr != nil {
		return model.Event{}, f.attendErr
	}
	e := f.events[eventID]
	e.Attendees = append(e.Attendees, model.Attendee{UserID: userID, Attended: true})
	return e, nil
}

func (f *fakeService) RequestMentorship(_ context.Context, in service.MentorshipInput) (model.MentorshipRequest, error) {
	f.mentorship = in
	return model.MentorshipRequest{ID: "ms-1", MentorID: in.MentorID, MenteeID: in.MenteeID, Topic: in.Topic, Status: model.MentorshipPending}, nil
}

func (f *fakeService) UpdateMentorship(_ context.Context, id, actorID string, upd service.MentorshipUpdate) (model.MentorshipRequest, error) {
	f.actorID = actorID
	f.update = upd
	if f.updateErr != nil {
		return model.MentorshipRequest{}, f.updateErr
	}
	return model.MentorshipRequest{ID: id, Status: upd.Status}, nil
}

func (f *fakeService) ListMentorships(_ context.Context, filter docstore.MentorshipFilter) ([]model.MentorshipRequest, error) {
	f.msFilter = filter
	return nil, nil
}

func (f *fakeService) RequestConnection(_ context.Context, fromID, toID, message string) (model.Connection, error) {
	f.connFrom, f.connTo = fromID, toID
	if f.connErr != nil {
		return model.Connection{}, f.connErr
	}
	return model.Connection{ID: "c-1", From: fromID, To: toID, Message: message, Status: model.ConnectionPending}, nil
}

func (f *fakeService) RespondConnection(_ context.Context, id, actorID string, status model.ConnectionStatus) (model.Connection, error) {
	f.actorID, f.connStatus = actorID, status
	if f.connErr != nil {
		return model.Connection{}, f.connErr
	}
	return model.Connection{ID: id, Status: status}, nil
}

func (f *fakeService) ListConnections(_ context.Context, userID string) ([]model.User, error) {
	if _, ok := f.users[userID]; !ok {
		return nil, service.ErrNotFound
	}
	return []model.User{{ID: "m1", Profile: model.Profile{Name: "Mia"}}}, nil
}

func (f *fakeService) PendingConnections(_ context.Context, _ string) ([]model.Connection, error) {
	return nil, nil
}

func (f *fakeService) CreateKnowledgePost(_ context.Context, in service.KnowledgeInput) (model.KnowledgePost, error) {
	f.knowledgeIn = in
	if f.actionErr != nil {
		return model.KnowledgePost{}, f.actionErr
	}
	return model.KnowledgePost{ID: "k-1", Title: in.Title, AuthorID: in.AuthorID, Category: in.Category}, nil
}

func (f *fakeService) GetKnowledgePost(_ context.Context, id string) (model.KnowledgePost, error) {
	if id != "k-1" {
		return model.KnowledgePost{}, service.ErrNotFound
	}
	return model.KnowledgePost{ID: id, Views: 1}, nil
}

func (f *fakeService) SearchKnowledge(_ context.Context, q knowledge.Query) (knowledge.Result, error) {
	f.query = q
	return knowledge.Result{Page: 1}, nil
}

func (f *fakeService) TrendingKnowledge(_ context.Context, limit int) ([]model.KnowledgePost, error) {
	f.lastLimit = limit
	return nil, nil
}

func (f *fakeService) VoteKnowledgePost(_ context.Context, id, userID string, v model.Vote) (model.KnowledgePost, error) {
	f.actionUser, f.vote = userID, v
	return model.KnowledgePost{ID: id, VoteScore: 1}, nil
}

func (f *fakeService) MarkKnowledgeHelpful(_ context.Context, id, userID string) (model.KnowledgePost, error) {
	f.actionUser = userID
	return model.KnowledgePost{ID: id, HelpfulCount: 1}, nil
}

func (f *fakeService) VerifyKnowledgePost(_ context.Context, id, actorID string) (model.KnowledgePost, error) {
	f.actionUser = actorID
	if f.actionErr != nil {
		return model.KnowledgePost{}, f.actionErr
	}
	return model.KnowledgePost{ID: id, Verified: true, VerifiedBy: actorID}, nil
}

func (f *fakeService) SubmitActivity(_ context.Context, a model.Activity) (bool, error) {
	if f.submitErr != nil {
		return false, f.submitErr
	}
	f.submitted = append(f.submitted, a)
	return f.duplicate, nil
}

func (f *fakeService) Leaderboard(_ context.Context, n int) ([]types.Entry, error) {
	f.lastLimit = n
	if f.internalErr != nil {
		return nil, f.internalErr
	}
	return f.leaderboard, nil
}

func (f *fakeService) Rank(_ context.Context, userID string) (types.Entry, error) {
	e, ok := f.rank[userID]
	if !ok {
		return types.Entry{}, service.ErrNotFound
	}
	return e, nil
}

func (f *fakeService) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "workerCount": 4}
}

func newHandler(deps api.Dependencies, opts ...api.Option) http.Handler {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
	return api.NewServer(deps, opts...).Handler(context.Background())
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a server backed by a fake service", t, func() {
		svc := newFakeService()
		h := newHandler(svc)

		Convey("Then health serves the metrics registry", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats are returned as JSON", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"workerCount":4`)
		})

		Convey("Then unknown paths are 404 and wrong methods 405", func() {
			So(do(h, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodDelete, "/leaderboard", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestUsersHandler(t *testing.T) {
	Convey("Given a server backed by a fake service", t, func() {
		svc := newFakeService()
		h := newHandler(svc)

		Convey("When fetching a known user", func() {
			w := do(h, http.MethodGet, "/users/s1", "")

			Convey("Then the profile is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var u model.User
				So(json.Unmarshal(w.Body.Bytes(), &u), ShouldBeNil)
				So(u.Profile.Name, ShouldEqual, "Sam")
			})
		})

		Convey("When fetching an unknown user", func() {
			w := do(h, http.MethodGet, "/users/nobody", "")

			Convey("Then 404 not_found is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(errorCode(w), ShouldEqual, "not_found")
			})
		})

		Convey("When putting a profile", func() {
			w := do(h, http.MethodPut, "/users/u9", `{"email":"u9@campus.edu","role":"faculty","career_goals":"Researcher","profile":{"name":"Uma","skills":["go"]}}`)

			Convey("Then the id comes from the path and goals accept a single string", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.putUser.ID, ShouldEqual, "u9")
				So(svc.putUser.Role, ShouldEqual, model.RoleFaculty)
				So([]string(svc.putUser.CareerGoals), ShouldResemble, []string{"Researcher"})
			})
		})

		Convey("When the role is unknown", func() {
			w := do(h, http.MethodPut, "/users/u9", `{"role":"dean"}`)

			Convey("Then validation rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "Role")
			})
		})

		Convey("When the client tries to set points", func() {
			w := do(h, http.MethodPut, "/users/u9", `{"gamification":{"points":9999}}`)

			Convey("Then the unknown field is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(h, http.MethodPut, "/users/u9", `not json`)

			Convey("Then 400 bad_request is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})
	})
}

func TestRecommendationsHandler(t *testing.T) {
	Convey("Given a server backed by a fake service", t, func() {
		svc := newFakeService()
		h := newHandler(svc)

		Convey("When asking for mentor recommendations with a limit", func() {
			w := do(h, http.MethodGet, "/users/s1/recommendations/mentors?limit=3", "")

			Convey("Then the limit is passed through and an empty list is []", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
				So(svc.lastLimit, ShouldEqual, 3)
			})
		})

		Convey("When the limit is omitted", func() {
			w := do(h, http.MethodGet, "/users/s1/recommendations/events", "")

			Convey("Then zero asks the service for its default", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.lastLimit, ShouldEqual, 0)
			})
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"abc", "0", "-2"} {
				w := do(h, http.MethodGet, "/users/s1/recommendations/mentors?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the user is unknown", func() {
			w := do(h, http.MethodGet, "/users/ghost/recommendations/mentors", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When listing trending events", func() {
			w := do(h, http.MethodGet, "/events/trending?limit=2", "")

			Convey("Then the route is not shadowed by /events/{id}", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Career Fair")
				So(svc.lastLimit, ShouldEqual, 2)
			})
		})

		Convey("When searching mentors by skill", func() {
			w := do(h, http.MethodGet, "/mentors?skills=go,%20rust,&skills=sql", "")

			Convey("Then skills are split and trimmed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.skills, ShouldResemble, []string{"go", "rust", "sql"})
			})
		})

		Convey("When no skill is given", func() {
			w := do(h, http.MethodGet, "/mentors?skills=,", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestEventsHandler(t *testing.T) {
	Convey("Given a server backed by a fake service", t, func() {
		svc := newFakeService()
		h := newHandler(svc)

		Convey("When creating an event", func() {
			w := do(h, http.MethodPost, "/events", `{"title":"Design Talk","category":"Workshop","start_date":"2025-03-02T18:00:00Z","capacity":40,"tags":["design"],"published":true}`)

			Convey("Then 201 is returned with the stored event", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(svc.created.Title, ShouldEqual, "Design Talk")
				So(svc.created.Capacity, ShouldEqual, 40)
				So(svc.created.StartDate.Equal(time.Date(2025, 3, 2, 18, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(w.Body.String(), ShouldContainSubstring, `"id":"generated"`)
			})
		})

		Convey("When the published flag is omitted or false", func() {
			So(do(h, http.MethodPost, "/events", `{"title":"AI Workshop","start_date":"2025-03-02T18:00:00Z"}`).Code, ShouldEqual, http.StatusCreated)
			omitted := svc.created.Published
			So(do(h, http.MethodPost, "/events", `{"title":"Draft","start_date":"2025-03-02T18:00:00Z","published":false}`).Code, ShouldEqual, http.StatusCreated)

			Convey("Then the service decides the default and explicit values pass through", func() {
				So(omitted, ShouldBeNil)
				So(svc.created.Published, ShouldNotBeNil)
				So(*svc.created.Published, ShouldBeFalse)
			})
		})

		Convey("When the event has no title or a bad category", func() {
			So(do(h, http.MethodPost, "/events", `{"start_date":"2025-03-02T18:00:00Z"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, "/events", `{"title":"x","category":"Party","start_date":"2025-03-02T18:00:00Z"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, "/events", `{"title":"x","capacity":-1,"start_date":"2025-03-02T18:00:00Z"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing events with filters", func() {
			w := do(h, http.MethodGet, "/events?category=Career&from=2025-03-01T00:00:00Z&to=2025-04-01T00:00:00Z", "")

			Convey("Then the filter is parsed and an empty result is []", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
				So(svc.eventFilter.Category, ShouldEqual, model.CategoryCareer)
				So(svc.eventFilter.From.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(svc.eventFilter.To.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When a date bound is malformed", func() {
			So(do(h, http.MethodGet, "/events?from=yesterday", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching a single event", func() {
			So(do(h, http.MethodGet, "/events/e1", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodGet, "/events/nope", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When RSVPing", func() {
			w := do(h, http.MethodPost, "/events/e1/rsvp", `{"user_id":"s1"}`)

			Convey("Then the updated event is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"user_id":"s1"`)
			})
		})

		Convey("When RSVPing without a user", func() {
			So(do(h, http.MethodPost, "/events/e1/rsvp", `{}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the event is full", func() {
			svc.attendErr = service.ErrEventFull
			w := do(h, http.MethodPost, "/events/e1/rsvp", `{"user_id":"s1"}`)

			Convey("Then 409 conflict is returned", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(errorCode(w), ShouldEqual, "conflict")
				So(w.Body.String(), ShouldContainSubstring, "event is full")
			})
		})

		Convey("When checking in", func() {
			w := do(h, http.MethodPost, "/events/e1/checkin", `{"user_id":"s1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"attended":true`)
		})
	})
}

func TestMentorshipsHandler(t *testing.T) {
	Convey("Given a server backed by a fake service", t, func() {
		svc := newFakeService()
		h := newHandler(svc)

		Convey("When requesting mentorship", func() {
			w := do(h, http.MethodPost, "/mentorships", `{"mentor_id":"m1","mentee_id":"s1","topic":"Career advice","goals":["land an internship"]}`)

			Convey("Then 201 is returned and the input is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(svc.mentorship.MentorID, ShouldEqual, "m1")
				So(svc.mentorship.Goals, ShouldResemble, []string{"land an internship"})
				So(w.Body.String(), ShouldContainSubstring, `"status":"pending"`)
			})
		})

		Convey("When the mentee names themself as mentor", func() {
			w := do(h, http.MethodPost, "/mentorships", `{"mentor_id":"s1","mentee_id":"s1","topic":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a mentor accepts", func() {
			w := do(h, http.MethodPut, "/mentorships/ms-1", `{"actor_id":"m1","status":"active"}`)

			Convey("Then the actor and status are forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.actorID, ShouldEqual, "m1")
				So(svc.update.Status, ShouldEqual, model.MentorshipActive)
			})
		})

		Convey("When someone else updates the request", func() {
			svc.updateErr = service.ErrForbidden
			w := do(h, http.MethodPut, "/mentorships/ms-1", `{"actor_id":"s1","status":"active"}`)
			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(errorCode(w), ShouldEqual, "forbidden")
		})

		Convey("When the status is unknown", func() {
			w := do(h, http.MethodPut, "/mentorships/ms-1", `{"actor_id":"m1","status":"paused"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing with filters", func() {
			w := do(h, http.MethodGet, "/mentorships?user_id=m1&role=mentor&status=pending", "")

			Convey("Then the filter is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
				So(svc.msFilter, ShouldResemble, docstore.MentorshipFilter{UserID: "m1", Role: "mentor", Status: model.MentorshipPending})
			})
		})
	})
}

func TestConnectionsHandler(t *testing.T) {
	Convey("Given a server backed by a fake service", t, func() {
		svc := newFakeService()
		h := newHandler(svc)

		Convey("When requesting a connection", func() {
			w := do(h, http.MethodPost, "/connections", `{"from_id":" s1 ","to_id":"m1","message":"Hi"}`)

			Convey("Then 201 is returned with trimmed ids", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(svc.connFrom, ShouldEqual, "s1")
				So(svc.connTo, ShouldEqual, "m1")
				So(w.Body.String(), ShouldContainSubstring, `"status":"pending"`)
			})
		})

		Convey("When the users are the same or the pair already connected", func() {
			So(do(h, http.MethodPost, "/connections", `{"from_id":"s1","to_id":"s1"}`).Code, ShouldEqual, http.StatusBadRequest)

			svc.connErr = service.ErrConnectionExists
			w := do(h, http.MethodPost, "/connections", `{"from_id":"s1","to_id":"m1"}`)
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "conflict")
		})

		Convey("When the recipient answers", func() {
			w := do(h, http.MethodPut, "/connections/c-1", `{"actor_id":"m1","status":"accepted"}`)

			Convey("Then the actor and status are forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.actorID, ShouldEqual, "m1")
				So(svc.connStatus, ShouldEqual, model.ConnectionAccepted)
			})
		})

		Convey("When the answer is not accepted or rejected", func() {
			w := do(h, http.MethodPut, "/connections/c-1", `{"actor_id":"m1","status":"pending"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing connections", func() {
			w := do(h, http.MethodGet, "/users/s1/connections", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"id":"m1"`)

			So(do(h, http.MethodGet, "/users/ghost/connections", "").Code, ShouldEqual, http.StatusNotFound)

			pending := do(h, http.MethodGet, "/users/s1/connections/pending", "")
			So(pending.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(pending.Body.String()), ShouldEqual, "[]")
		})
	})
}

func TestKnowledgeHandler(t *testing.T) {
	Convey("Given a server backed by a fake service", t, func() {
		svc := newFakeService()
		h := newHandler(svc)

		Convey("When an author shares a post", func() {
			w := do(h, http.MethodPost, "/knowledge",
				`{"author_id":"m1","title":"Interview prep","body":"Practice.","category":"interview-tips","tags":["interview"],"evergreen":true}`)

			Convey("Then 201 is returned and the input is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(svc.knowledgeIn.AuthorID, ShouldEqual, "m1")
				So(svc.knowledgeIn.Category, ShouldEqual, model.CategoryInterviewTips)
				So(svc.knowledgeIn.Evergreen, ShouldBeTrue)
			})
		})

		Convey("When required fields are missing or the author is a student", func() {
			So(do(h, http.MethodPost, "/knowledge", `{"author_id":"m1","title":"x"}`).Code, ShouldEqual, http.StatusBadRequest)

			svc.actionErr = service.ErrForbidden
			w := do(h, http.MethodPost, "/knowledge", `{"author_id":"s1","title":"x","body":"y","category":"other"}`)
			So(w.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When searching with filters", func() {
			w := do(h, http.MethodGet, "/knowledge/search?q=go+interview&category=job-search&verified=true&sort_by=recent&page=2&limit=5", "")

			Convey("Then the query is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"posts":[]`)
				So(svc.query, ShouldResemble, knowledge.Query{
					Text:         "go interview",
					Category:     model.CategoryJobSearch,
					VerifiedOnly: true,
					SortBy:       knowledge.SortRecent,
					Page:         2,
					Limit:        5,
				})
			})
		})

		Convey("When search parameters are malformed", func() {
			So(do(h, http.MethodGet, "/knowledge/search?page=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/knowledge/search?verified=maybe", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When reading trending and single posts", func() {
			w := do(h, http.MethodGet, "/knowledge/trending?limit=3", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.lastLimit, ShouldEqual, 3)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")

			So(do(h, http.MethodGet, "/knowledge/k-1", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodGet, "/knowledge/missing", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When voting, marking helpful and verifying", func() {
			So(do(h, http.MethodPost, "/knowledge/k-1/vote", `{"user_id":"s1","vote":"up"}`).Code, ShouldEqual, http.StatusOK)
			So(svc.vote, ShouldEqual, model.VoteUp)
			So(do(h, http.MethodPost, "/knowledge/k-1/vote", `{"user_id":"s1","vote":"sideways"}`).Code, ShouldEqual, http.StatusBadRequest)

			So(do(h, http.MethodPost, "/knowledge/k-1/helpful", `{"user_id":"s1"}`).Code, ShouldEqual, http.StatusOK)
			So(svc.actionUser, ShouldEqual, "s1")

			w := do(h, http.MethodPost, "/knowledge/k-1/verify", `{"user_id":"m1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"verified_by":"m1"`)

			svc.actionErr = service.ErrForbidden
			So(do(h, http.MethodPost, "/knowledge/k-1/verify", `{"user_id":"s1"}`).Code, ShouldEqual, http.StatusForbidden)
		})
	})
}

func TestActivitiesHandler(t *testing.T) {
	Convey("Given a server backed by a fake service", t, func() {
		svc := newFakeService()
		h := newHandler(svc)
		body := `{"activity_id":"a-1","user_id":"s1","kind":"post_created","occurred_at":"2025-03-01T10:00:00Z"}`

		Convey("When a new activity is posted", func() {
			w := do(h, http.MethodPost, "/activities", body)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
				So(svc.submitted, ShouldHaveLength, 1)
				So(svc.submitted[0].Kind, ShouldEqual, model.ActivityPostCreated)
			})
		})

		Convey("When the activity was already seen", func() {
			svc.duplicate = true
			w := do(h, http.MethodPost, "/activities", body)

			Convey("Then 200 duplicate is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When the queue is full", func() {
			svc.submitErr = service.ErrBackpressure
			w := do(h, http.MethodPost, "/activities", body)

			Convey("Then 429 backpressure is returned", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(errorCode(w), ShouldEqual, "backpressure")
			})
		})

		Convey("When required fields are missing", func() {
			w := do(h, http.MethodPost, "/activities", `{"user_id":"s1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(svc.submitted, ShouldBeEmpty)
		})

		Convey("When the service is not started", func() {
			svc.submitErr = service.ErrNotStarted
			So(do(h, http.MethodPost, "/activities", body).Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestLeaderboardAndRank(t *testing.T) {
	Convey("Given a server with a leaderboard limit of 10", t, func() {
		svc := newFakeService()
		h := newHandler(svc, api.WithMaxLeaderboardLimit(10))

		Convey("When reading the leaderboard", func() {
			w := do(h, http.MethodGet, "/leaderboard?limit=5", "")

			Convey("Then entries carry rank, user id and points", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []types.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries, ShouldResemble, svc.leaderboard)
				So(svc.lastLimit, ShouldEqual, 5)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			w := do(h, http.MethodGet, "/leaderboard?limit=11", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "limit_exceeded")
		})

		Convey("When the service fails", func() {
			svc.internalErr = errors.New("disk on fire")
			w := do(h, http.MethodGet, "/leaderboard", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(errorCode(w), ShouldEqual, "internal_error")
		})

		Convey("When reading a rank", func() {
			w := do(h, http.MethodGet, "/rank/s1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"rank":2`)
		})

		Convey("When the user is not ranked", func() {
			So(do(h, http.MethodGet, "/rank/ghost", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestChiMiddleware(t *testing.T) {
	Convey("Given a rate limit of two requests a minute", t, func() {
		svc := newFakeService()
		cfg := api.DefaultChiMiddlewareConfig()
		cfg.RateLimitRequests = 2
		h := newHandler(svc, api.WithMiddlewareConfig(cfg))

		Convey("When a client sends three requests", func() {
			codes := make([]int, 0, 3)
			for range 3 {
				codes = append(codes, do(h, http.MethodGet, "/leaderboard", "").Code)
			}

			Convey("Then the third is limited", func() {
				So(codes, ShouldResemble, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests})
			})
		})

		Convey("When probing health", func() {
			Convey("Then it is never limited", func() {
				for range 5 {
					So(do(h, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
				}
			})
		})
	})

	Convey("Given rate limiting disabled", t, func() {
		cfg := api.DefaultChiMiddlewareConfig()
		cfg.RateLimitRequests = 0
		h := newHandler(newFakeService(), api.WithMiddlewareConfig(cfg))

		Convey("Then many requests pass", func() {
			for range 20 {
				So(do(h, http.MethodGet, "/leaderboard", "").Code, ShouldEqual, http.StatusOK)
			}
		})
	})

	Convey("Given a restricted CORS origin", t, func() {
		cfg := api.DefaultChiMiddlewareConfig()
		cfg.CORSAllowedOrigins = []string{"https://campus.example.edu"}
		h := newHandler(newFakeService(), api.WithMiddlewareConfig(cfg))

		Convey("When the allowed origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
			req.Header.Set("Origin", "https://campus.example.edu")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://campus.example.edu")
		})

		Convey("When another origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
			req.Header.Set("Origin", "https://evil.example.com")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given an op-tagged error", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.test", api.ErrBadRequest, cause)

		Convey("Then both kind and cause match errors.Is", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.test: bad request: boom")
		})

		Convey("Then Wrap keeps nil as nil", func() {
			So(api.Wrap("api.test", nil), ShouldBeNil)
		})
	})
}
