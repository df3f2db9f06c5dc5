package seed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/campusconnect/internal/domain/gamification"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/internal/domain/types"
	"github.com/okian/campusconnect/pkg/logger"
)

// ErrInconsistent reports that the service answered with data that breaks
// an ordering or range guarantee.
var ErrInconsistent = errors.New("inconsistent results")

// expectedPoints totals the default points table over what the service
// accepted. Servers with a custom table will differ.
func expectedPoints(rsvps []RSVP, activities []model.Activity, accepted map[string]bool) map[string]int64 {
	awarder := gamification.NewPointsAwarder()
	totals := make(map[string]int64)
	for _, r := range rsvps {
		totals[r.UserID] += awarder.PointsFor(model.ActivityEventRSVP)
	}
	counted := make(map[string]bool, len(accepted))
	for _, a := range activities {
		if !accepted[a.ID] || counted[a.ID] {
			continue
		}
		counted[a.ID] = true
		totals[a.UserID] += awarder.PointsFor(a.Kind)
	}
	return totals
}

// verifyLeaderboard checks positional ranks and the points-desc, id-asc order.
func verifyLeaderboard(entries []Entry) error {
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: entry %d has rank %d", ErrInconsistent, i, e.Rank)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		if e.Points > prev.Points || (e.Points == prev.Points && e.UserID < prev.UserID) {
			return fmt.Errorf("%w: leaderboard not properly sorted at entry %d", ErrInconsistent, i)
		}
	}
	return nil
}

// verifyRanks fetches the rank of every user expected to hold points and
// compares totals. It returns the number of mismatched totals.
func verifyRanks(ctx context.Context, cfg *Config, client *HTTPClient, expected map[string]int64, top []Entry, stats *Stats) (int, error) {
	ids := make([]string, 0, len(expected))
	for id, pts := range expected {
		if pts > 0 {
			ids = append(ids, id)
		}
	}
	byID := make(map[string]Entry, len(top))
	for _, e := range top {
		byID[e.UserID] = e
	}

	var (
		retrieved  int64
		mismatched int64
		mu         sync.Mutex
		firstErr   error
	)
	forEach(ctx, cfg.Workers, len(ids), func(i int) {
		id := ids[i]
		var e Entry
		status, err := client.Get(ctx, "/rank/"+id, &e)
		if err != nil || status != StatusOK {
			atomic.AddInt64(&mismatched, 1)
			return
		}
		atomic.AddInt64(&retrieved, 1)
		if e.Points != expected[id] {
			atomic.AddInt64(&mismatched, 1)
			if cfg.Verbose {
				logger.Get().Warn(ctx, "points differ from expectation",
					logger.String("userID", id),
					logger.Int64("expected", expected[id]),
					logger.Int64("observed", e.Points),
				)
			}
		}
		if t, ok := byID[id]; ok && t != e {
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: rank of %s is %d but leaderboard says %d", ErrInconsistent, id, e.Rank, t.Rank)
			}
			mu.Unlock()
		}
	})
	stats.RanksRetrieved = int(retrieved)
	return int(mismatched), firstErr
}

// verifyRecommendations reads recommendations for a sample of students and
// checks ranges, ordering and privacy.
func verifyRecommendations(ctx context.Context, client *HTTPClient, users []model.User, now time.Time, stats *Stats) error {
	sample := make([]model.User, 0, RecommendationSample)
	for _, u := range users {
		if u.Role == model.RoleStudent && len(sample) < RecommendationSample {
			sample = append(sample, u)
		}
	}

	for _, u := range sample {
		var mentors []types.MentorRecommendation
		if status, err := client.Get(ctx, "/users/"+u.ID+"/recommendations/mentors", &mentors); err != nil || status != http.StatusOK {
			return fmt.Errorf("mentor recommendations for %s: status %d: %w", u.ID, status, err)
		}
		for i, r := range mentors {
			switch {
			case r.MatchScore < 0 || r.MatchScore > 100:
				return fmt.Errorf("%w: mentor score %d out of range", ErrInconsistent, r.MatchScore)
			case i > 0 && r.MatchScore > mentors[i-1].MatchScore:
				return fmt.Errorf("%w: mentor recommendations for %s not sorted", ErrInconsistent, u.ID)
			case r.Mentor.ID == u.ID || !r.Mentor.Role.CanMentor() || !r.Mentor.MentorProfile.IsAvailable:
				return fmt.Errorf("%w: ineligible mentor %s recommended", ErrInconsistent, r.Mentor.ID)
			case r.Mentor.Email != "":
				return fmt.Errorf("%w: mentor email exposed", ErrInconsistent)
			}
		}

		var events []types.EventRecommendation
		if status, err := client.Get(ctx, "/users/"+u.ID+"/recommendations/events", &events); err != nil || status != http.StatusOK {
			return fmt.Errorf("event recommendations for %s: status %d: %w", u.ID, status, err)
		}
		for i, r := range events {
			switch {
			case r.MatchScore < 0 || r.MatchScore > 100:
				return fmt.Errorf("%w: event score %d out of range", ErrInconsistent, r.MatchScore)
			case i > 0 && r.MatchScore > events[i-1].MatchScore:
				return fmt.Errorf("%w: event recommendations for %s not sorted", ErrInconsistent, u.ID)
			case !r.Event.StartDate.After(now):
				return fmt.Errorf("%w: past event %s recommended", ErrInconsistent, r.Event.ID)
			}
		}
		stats.RecommendationsRead += len(mentors) + len(events)
	}
	return nil
}
