// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Role is a campus membership role.
type Role string

// Known roles.
const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleFaculty Role = "faculty"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAlumni, RoleFaculty:
		return true
	}
	return false
}

// CanMentor reports whether users with this role may be recommended as mentors.
func (r Role) CanMentor() bool {
	return r == RoleAlumni || r == RoleFaculty
}

// User is both the subject of a recommendation and a mentor candidate.
type User struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	Role          Role          `json:"role"`
	Profile       Profile       `json:"profile"`
	Connections   []string      `json:"connections,omitempty"`
	CareerGoals   Goals         `json:"career_goals,omitempty"`
	Experience    []Experience  `json:"experience,omitempty"`
	MentorProfile MentorProfile `json:"mentor_profile"`
	Gamification  Gamification  `json:"gamification"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Profile holds the public profile fields.
type Profile struct {
	Name       string   `json:"name"`
	Bio        string   `json:"bio,omitempty"`
	Major      string   `json:"major,omitempty"`
	Department string   `json:"department,omitempty"`
	Company    string   `json:"company,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Interests  []string `json:"interests,omitempty"`
}

// Experience is one entry of a user's work history.
type Experience struct {
	Title     string     `json:"title"`
	Company   string     `json:"company,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Current   bool       `json:"current,omitempty"`
}

// MentorProfile describes a user's mentoring offer.
type MentorProfile struct {
	IsAvailable    bool     `json:"is_available"`
	ExpertiseAreas []string `json:"expertise_areas,omitempty"`
	Achievements   []string `json:"achievements,omitempty"`
	MaxMentees     int      `json:"max_mentees,omitempty"`
}

// Gamification carries points and activity counters.
type Gamification struct {
	Points int64 `json:"points"`
	Stats  Stats `json:"stats"`
}

// Stats are per-user activity counters.
type Stats struct {
	EventsAttended   int `json:"events_attended"`
	ConnectionsAdded int `json:"connections_added"`
	MentorshipHours  int `json:"mentorship_hours"`
	PostsCreated     int `json:"posts_created"`
}

// Goals is a list of career goals. Older records store a single string, so
// decoding accepts either a string or an array of strings.
type Goals []string

// UnmarshalJSON implements json.Unmarshaler.
func (g *Goals) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*g = compact(many)
		return nil
	}
	var one *string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == nil {
		*g = nil
		return nil
	}
	*g = compact([]string{*one})
	return nil
}

// compact drops blank entries while keeping order.
func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
