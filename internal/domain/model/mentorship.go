package model

import "time"

// MentorshipStatus is the lifecycle state of a mentorship request.
type MentorshipStatus string

// Mentorship lifecycle states.
const (
	MentorshipPending   MentorshipStatus = "pending"
	MentorshipActive    MentorshipStatus = "active"
	MentorshipCompleted MentorshipStatus = "completed"
	MentorshipCancelled MentorshipStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s MentorshipStatus) Valid() bool {
	switch s {
	case MentorshipPending, MentorshipActive, MentorshipCompleted, MentorshipCancelled:
		return true
	}
	return false
}

// MentorshipRequest links a mentee to a mentor.
type MentorshipRequest struct {
	ID          string           `json:"id"`
	MentorID    string           `json:"mentor_id"`
	MenteeID    string           `json:"mentee_id"`
	Topic       string           `json:"topic"`
	Description string           `json:"description,omitempty"`
	Goals       []string         `json:"goals,omitempty"`
	Status      MentorshipStatus `json:"status"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
