package seed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/pkg/logger"
)

// forEach runs fn for indices [0, n) on workers goroutines and stops early
// when ctx is done.
func forEach(ctx context.Context, workers, n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers = max(1, min(workers, n))
	indices := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if ctx.Err() != nil {
					return
				}
				fn(i)
			}
		}()
	}

	go func() {
		defer close(indices)
		for i := range n {
			select {
			case <-ctx.Done():
				return
			case indices <- i:
			}
		}
	}()

	wg.Wait()
}

// userBody is the PUT /users/{id} request shape.
type userBody struct {
	Email         string              `json:"email"`
	Role          model.Role          `json:"role"`
	Profile       model.Profile       `json:"profile"`
	CareerGoals   model.Goals         `json:"career_goals,omitempty"`
	Experience    []model.Experience  `json:"experience,omitempty"`
	MentorProfile model.MentorProfile `json:"mentor_profile"`
}

// eventBody is the POST /events request shape.
type eventBody struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Location    string         `json:"location"`
	Tags        []string       `json:"tags"`
	Capacity    int            `json:"capacity"`
	Published   bool           `json:"published"`
}

// putUsers creates every profile.
func putUsers(ctx context.Context, cfg *Config, client *HTTPClient, users []model.User, stats *Stats) error {
	var created, failed int64
	forEach(ctx, cfg.Workers, len(users), func(i int) {
		u := users[i]
		status, err := client.Send(ctx, http.MethodPut, "/users/"+u.ID, userBody{
			Email:         u.Email,
			Role:          u.Role,
			Profile:       u.Profile,
			CareerGoals:   u.CareerGoals,
			Experience:    u.Experience,
			MentorProfile: u.MentorProfile,
		}, nil)
		if err != nil || status != StatusOK {
			atomic.AddInt64(&failed, 1)
			return
		}
		atomic.AddInt64(&created, 1)
	})
	stats.UsersCreated = int(created)
	if failed > 0 {
		return fmt.Errorf("%d of %d users could not be created", failed, len(users))
	}
	return ctx.Err()
}

// createEvents creates every event.
func createEvents(ctx context.Context, cfg *Config, client *HTTPClient, events []model.Event, stats *Stats) error {
	var created, failed int64
	forEach(ctx, cfg.Workers, len(events), func(i int) {
		e := events[i]
		status, err := client.Send(ctx, http.MethodPost, "/events", eventBody{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Category:    e.Category,
			StartDate:   e.StartDate.Format(time.RFC3339),
			EndDate:     e.EndDate.Format(time.RFC3339),
			Location:    e.Location,
			Tags:        e.Tags,
			Capacity:    e.Capacity,
			Published:   e.IsPublished(),
		}, nil)
		if err != nil || status != StatusCreated {
			atomic.AddInt64(&failed, 1)
			return
		}
		atomic.AddInt64(&created, 1)
	})
	stats.EventsCreated = int(created)
	if failed > 0 {
		return fmt.Errorf("%d of %d events could not be created", failed, len(events))
	}
	return ctx.Err()
}

// submitRSVPs registers students and returns the RSVPs the service accepted.
// Full events answer 409 and are counted as rejected.
func submitRSVPs(ctx context.Context, cfg *Config, client *HTTPClient, rsvps []RSVP, stats *Stats) []RSVP {
	accepted := make([]bool, len(rsvps))
	var rejected int64
	forEach(ctx, cfg.Workers, len(rsvps), func(i int) {
		r := rsvps[i]
		status, err := client.Send(ctx, http.MethodPost, "/events/"+r.EventID+"/rsvp", map[string]string{"user_id": r.UserID}, nil)
		if err == nil && status == StatusOK {
			accepted[i] = true
			return
		}
		atomic.AddInt64(&rejected, 1)
		if cfg.Verbose {
			logger.Get().Debug(ctx, "rsvp rejected",
				logger.String("eventID", r.EventID),
				logger.String("userID", r.UserID),
				logger.Int("status", status),
			)
		}
	})

	out := make([]RSVP, 0, len(rsvps))
	for i, ok := range accepted {
		if ok {
			out = append(out, rsvps[i])
		}
	}
	stats.RSVPsAccepted = len(out)
	stats.RSVPsRejected = int(rejected)
	return out
}

// submitActivities posts activities and records which ids were accepted.
func submitActivities(ctx context.Context, cfg *Config, client *HTTPClient, activities []model.Activity, stats *Stats) map[string]bool {
	var (
		successful int64
		duplicate  int64
		failed     int64
		mu         sync.Mutex
	)
	accepted := make(map[string]bool, len(activities))

	forEach(ctx, cfg.Workers, len(activities), func(i int) {
		a := activities[i]
		var ack AckResponse
		status, err := client.Send(ctx, http.MethodPost, "/activities", activityRequest{
			ActivityID: a.ID,
			UserID:     a.UserID,
			Kind:       string(a.Kind),
			OccurredAt: a.OccurredAt,
		}, &ack)
		switch {
		case err != nil:
			atomic.AddInt64(&failed, 1)
		case status == StatusAccepted:
			atomic.AddInt64(&successful, 1)
			mu.Lock()
			accepted[a.ID] = true
			mu.Unlock()
		case status == StatusOK && ack.Duplicate:
			atomic.AddInt64(&duplicate, 1)
		default:
			atomic.AddInt64(&failed, 1)
		}
	})

	stats.ActivitiesAccepted = int(successful)
	stats.ActivitiesDuplicate = int(duplicate)
	stats.ActivitiesFailed = int(failed)
	logger.Get().Info(ctx, "activity submission completed",
		logger.Int("accepted", stats.ActivitiesAccepted),
		logger.Int("duplicate", stats.ActivitiesDuplicate),
		logger.Int("failed", stats.ActivitiesFailed),
	)
	return accepted
}
