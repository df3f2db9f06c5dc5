package seed

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/campusconnect/internal/adapters/http/api"
	service "github.com/okian/campusconnect/internal/app"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/pkg/logger"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger(t *testing.T) {
	t.Helper()
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		t.Fatalf("init logger: %v", err)
	}
}

func TestGenerate(t *testing.T) {
	quietLogger(t)

	Convey("Given a seeded configuration", t, func() {
		cfg := &Config{Students: 30, Mentors: 10, Events: 8, Activities: 400, Seed: 7}
		campus := Generate(context.Background(), cfg, now)

		Convey("Then the requested amounts are generated", func() {
			So(campus.Users, ShouldHaveLength, 40)
			So(campus.Events, ShouldHaveLength, 8)
			So(campus.Activities, ShouldHaveLength, 400)
		})

		Convey("Then the same seed generates the same campus", func() {
			So(Generate(context.Background(), cfg, now), ShouldResemble, campus)
		})

		Convey("Then another seed generates a different campus", func() {
			other := *cfg
			other.Seed = 8
			So(Generate(context.Background(), &other, now), ShouldNotResemble, campus)
		})

		Convey("Then ids are unique and roles are consistent", func() {
			seen := map[string]bool{}
			for _, u := range campus.Users {
				So(seen[u.ID], ShouldBeFalse)
				seen[u.ID] = true
				So(u.Role.Valid(), ShouldBeTrue)
				if u.Role != model.RoleStudent {
					So(u.Role.CanMentor(), ShouldBeTrue)
					So(u.MentorProfile.ExpertiseAreas, ShouldNotBeEmpty)
				}
			}
		})

		Convey("Then every event starts after now and has a known category", func() {
			for _, e := range campus.Events {
				So(e.StartDate.After(now), ShouldBeTrue)
				So(e.EndDate.After(e.StartDate), ShouldBeTrue)
				So(e.Category.Valid(), ShouldBeTrue)
				So(e.Capacity, ShouldBeGreaterThanOrEqualTo, 0)
			}
		})

		Convey("Then only students RSVP and never twice to one event", func() {
			pairs := map[RSVP]bool{}
			for _, r := range campus.RSVPs {
				So(r.UserID, ShouldStartWith, "student-")
				So(pairs[r], ShouldBeFalse)
				pairs[r] = true
			}
		})

		Convey("Then some activity ids repeat", func() {
			ids := map[string]int{}
			for _, a := range campus.Activities {
				ids[a.ID]++
			}
			So(len(ids), ShouldBeLessThan, len(campus.Activities))
		})
	})
}

func TestExpectedPoints(t *testing.T) {
	Convey("Given accepted RSVPs and activities with a repeat", t, func() {
		rsvps := []RSVP{{EventID: "e1", UserID: "u1"}, {EventID: "e2", UserID: "u1"}}
		activities := []model.Activity{
			{ID: "a1", UserID: "u1", Kind: model.ActivityKnowledgePostCreated},
			{ID: "a1", UserID: "u1", Kind: model.ActivityKnowledgePostCreated},
			{ID: "a2", UserID: "u2", Kind: model.ActivityConnectionAdded},
			{ID: "a3", UserID: "u2", Kind: model.ActivityPostCreated},
		}
		accepted := map[string]bool{"a1": true, "a2": true}

		Convey("Then repeats and rejected activities are not counted", func() {
			So(expectedPoints(rsvps, activities, accepted), ShouldResemble, map[string]int64{
				"u1": 10 + 10 + 50,
				"u2": 5,
			})
		})
	})
}

func TestVerifyLeaderboard(t *testing.T) {
	Convey("Given leaderboard pages", t, func() {
		Convey("When ranks are positional and ties ordered by id", func() {
			So(verifyLeaderboard([]Entry{
				{Rank: 1, UserID: "b", Points: 50},
				{Rank: 2, UserID: "a", Points: 20},
				{Rank: 3, UserID: "c", Points: 20},
			}), ShouldBeNil)
		})

		Convey("When points increase", func() {
			err := verifyLeaderboard([]Entry{{Rank: 1, UserID: "a", Points: 1}, {Rank: 2, UserID: "b", Points: 2}})
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})

		Convey("When a tie is out of id order", func() {
			err := verifyLeaderboard([]Entry{{Rank: 1, UserID: "b", Points: 5}, {Rank: 2, UserID: "a", Points: 5}})
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})

		Convey("When a rank is skipped", func() {
			err := verifyLeaderboard([]Entry{{Rank: 1, UserID: "a", Points: 5}, {Rank: 3, UserID: "b", Points: 4}})
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})

		Convey("When the page is empty", func() {
			So(verifyLeaderboard(nil), ShouldBeNil)
		})
	})
}

func TestForEach(t *testing.T) {
	Convey("Given a worker pool", t, func() {
		var visits [100]int32

		Convey("When visiting every index", func() {
			forEach(context.Background(), 8, len(visits), func(i int) {
				atomic.AddInt32(&visits[i], 1)
			})

			Convey("Then each index is visited exactly once", func() {
				for i := range visits {
					So(atomic.LoadInt32(&visits[i]), ShouldEqual, 1)
				}
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			var calls int32
			forEach(ctx, 4, 1000, func(int) { atomic.AddInt32(&calls, 1) })

			Convey("Then little or no work is done", func() {
				So(atomic.LoadInt32(&calls), ShouldBeLessThan, 1000)
			})
		})
	})
}

func TestRun(t *testing.T) {
	quietLogger(t)

	Convey("Given a running campus service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(4))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mw := api.DefaultChiMiddlewareConfig()
		mw.RateLimitRequests = 0
		srv := httptest.NewServer(api.NewServer(svc, api.WithMiddlewareConfig(mw)).Handler(ctx))
		defer srv.Close()

		cfg := &Config{
			BaseURL:       srv.URL,
			Students:      20,
			Mentors:       8,
			Events:        6,
			Activities:    200,
			TopN:          10,
			Workers:       4,
			Seed:          3,
			Timeout:       5 * time.Second,
			SettleTimeout: 10 * time.Second,
		}

		Convey("When seeding it", func() {
			stats, err := Run(ctx, cfg)

			Convey("Then every step succeeds and verification passes", func() {
				So(err, ShouldBeNil)
				So(stats.UsersCreated, ShouldEqual, 28)
				So(stats.EventsCreated, ShouldEqual, 6)
				So(stats.ActivitiesFailed, ShouldEqual, 0)
				So(stats.ActivitiesAccepted+stats.ActivitiesDuplicate, ShouldEqual, 200)
				So(stats.ActivitiesDuplicate, ShouldBeGreaterThan, 0)
				So(stats.LeaderboardEntries, ShouldEqual, 10)
				So(stats.RanksRetrieved, ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given no service at the URL", t, func() {
		srv := httptest.NewServer(nil)
		url := srv.URL
		srv.Close()

		Convey("Then the health check fails", func() {
			_, err := Run(context.Background(), &Config{BaseURL: url, Timeout: time.Second})
			So(err, ShouldNotBeNil)
		})
	})
}
