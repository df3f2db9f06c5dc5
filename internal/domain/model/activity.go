package model

import "time"

// ActivityKind names a gamified action.
type ActivityKind string

// Activity kinds the service knows how to award.
const (
	ActivityKnowledgePostCreated  ActivityKind = "knowledge_post_created"
	ActivityKnowledgePostHelpful  ActivityKind = "knowledge_post_helpful"
	ActivityKnowledgePostVerified ActivityKind = "knowledge_post_verified"
	ActivityEventRSVP             ActivityKind = "event_rsvp"
	ActivityEventAttended         ActivityKind = "event_attended"
	ActivityConnectionAdded       ActivityKind = "connection_added"
	ActivityPostCreated           ActivityKind = "post_created"
	ActivityMentorshipSession     ActivityKind = "mentorship_session"
)

// Activity is a points-earning fact flowing through the activity queue.
type Activity struct {
	ID         string       // idempotency key
	UserID     string       // who earns the points
	Kind       ActivityKind // what happened
	OccurredAt time.Time
}
