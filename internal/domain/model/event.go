package model

import "time"

// Category groups events on the calendar.
type Category string

// Known event categories.
const (
	CategoryCareer     Category = "Career"
	CategoryAcademic   Category = "Academic"
	CategoryCultural   Category = "Cultural"
	CategoryNetworking Category = "Networking"
	CategoryWorkshop   Category = "Workshop"
	CategoryOther      Category = "Other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCareer, CategoryAcademic, CategoryCultural, CategoryNetworking, CategoryWorkshop, CategoryOther:
		return true
	}
	return false
}

// Event is a campus event users can RSVP to.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	Location    string     `json:"location,omitempty"`
	Organizer   string     `json:"organizer,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
	Capacity    int        `json:"capacity,omitempty"` // 0 means unlimited
	Published   *bool      `json:"published,omitempty"` // nil means published
	CreatedAt   time.Time  `json:"created_at"`
}

// Attendee is one RSVP on an event.
type Attendee struct {
	UserID   string    `json:"user_id"`
	RSVPDate time.Time `json:"rsvp_date"`
	Attended bool      `json:"attended"`
}

// IsPublished reports whether the event is visible in listings.
func (e *Event) IsPublished() bool {
	return e.Published == nil || *e.Published
}

// HasAttendee reports whether userID already RSVP'd.
func (e *Event) HasAttendee(userID string) bool {
	return e.attendeeIndex(userID) >= 0
}

// IsFull reports whether the event reached its capacity.
func (e *Event) IsFull() bool {
	return e.Capacity > 0 && len(e.Attendees) >= e.Capacity
}

// MarkAttended flags the attendee as present. Returns false if userID has no RSVP
// or was already marked.
func (e *Event) MarkAttended(userID string) bool {
	i := e.attendeeIndex(userID)
	if i < 0 || e.Attendees[i].Attended {
		return false
	}
	e.Attendees[i].Attended = true
	return true
}

func (e *Event) attendeeIndex(userID string) int {
	for i, a := range e.Attendees {
		if a.UserID == userID {
			return i
		}
	}
	return -1
}
