// Package seed populates a running campus service with a synthetic campus
// over HTTP and checks the leaderboard and recommendations it serves back.
package seed

import (
	"time"

	"github.com/okian/campusconnect/internal/domain/model"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Students      int           // Number of students to create
	Mentors       int           // Number of alumni and faculty to create
	Events        int           // Number of events to create
	Activities    int           // Number of activities to submit
	TopN          int           // Number of leaderboard entries to fetch
	Workers       int           // Number of concurrent HTTP workers
	Seed          uint64        // Random seed; equal seeds generate equal campuses
	Timeout       time.Duration // HTTP request timeout
	SettleTimeout time.Duration // How long to wait for async awards
	OutputFile    string        // Where to save the generated campus; empty skips saving
	Verbose       bool          // Enable verbose logging
}

// Defaults applied by Run to zero-valued fields.
const (
	DefaultTopN          = 50
	DefaultTimeout       = 30 * time.Second
	DefaultSettleTimeout = 2 * time.Minute
)

func (c *Config) withDefaults() *Config {
	out := *c
	if out.TopN <= 0 {
		out.TopN = DefaultTopN
	}
	if out.Workers <= 0 {
		out.Workers = 1
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.SettleTimeout <= 0 {
		out.SettleTimeout = DefaultSettleTimeout
	}
	return &out
}

// Campus is everything a run creates.
type Campus struct {
	Users      []model.User     `json:"users"`
	Events     []model.Event    `json:"events"`
	RSVPs      []RSVP           `json:"rsvps"`
	Activities []model.Activity `json:"activities"`
}

// RSVP pairs a user with an event.
type RSVP struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// activityRequest mirrors the POST /activities body.
type activityRequest struct {
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Entry represents a leaderboard entry.
type Entry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
}

// AckResponse represents the response from activity submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	UsersCreated        int
	EventsCreated       int
	RSVPsAccepted       int
	RSVPsRejected       int
	ActivitiesAccepted  int
	ActivitiesDuplicate int
	ActivitiesFailed    int
	RanksRetrieved      int
	LeaderboardEntries  int
	RecommendationsRead int
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}
