// Package gamification turns user activities into leaderboard points.
package gamification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/campusconnect/internal/domain/model"
)

// DefaultPoints is awarded for kinds without a configured value.
const DefaultPoints = 1

// ErrInvalidActivity is returned for activities missing a user or kind.
var ErrInvalidActivity = errors.New("invalid activity")

// Option applies a configuration option to the PointsAwarder.
type Option func(*PointsAwarder)

// WithPoints overrides the points of the given kinds. Negative values are ignored.
func WithPoints(points map[string]int64) Option {
	return func(a *PointsAwarder) {
		for kind, p := range points {
			kind = strings.TrimSpace(kind)
			if kind == "" || p < 0 {
				continue
			}
			a.points[model.ActivityKind(kind)] = p
		}
	}
}

// WithDefaultPoints sets the points of unknown kinds.
func WithDefaultPoints(p int64) Option {
	return func(a *PointsAwarder) {
		if p >= 0 {
			a.defaultPoints = p
		}
	}
}

// Award is the outcome of one activity.
type Award struct {
	UserID string
	Kind   model.ActivityKind
	Points int64
}

// Awarder computes points for an activity.
type Awarder interface {
	// Award computes the points for a, honoring ctx for cancellation.
	Award(ctx context.Context, a model.Activity) (Award, error)
}

// PointsAwarder implements Awarder with a static table.
type PointsAwarder struct {
	points        map[model.ActivityKind]int64
	defaultPoints int64
}

// NewPointsAwarder creates an awarder seeded with the built-in table.
func NewPointsAwarder(opts ...Option) *PointsAwarder {
	a := &PointsAwarder{
		points:        DefaultTable(),
		defaultPoints: DefaultPoints,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DefaultTable returns a fresh copy of the built-in points table.
func DefaultTable() map[model.ActivityKind]int64 {
	return map[model.ActivityKind]int64{
		model.ActivityKnowledgePostCreated:  50,
		model.ActivityKnowledgePostHelpful:  5,
		model.ActivityKnowledgePostVerified: 25,
		model.ActivityEventRSVP:             10,
		model.ActivityEventAttended:         20,
		model.ActivityConnectionAdded:       10,
		model.ActivityPostCreated:           5,
		model.ActivityMentorshipSession:     30,
	}
}

// Award looks up the points of a's kind.
func (a *PointsAwarder) Award(ctx context.Context, act model.Activity) (Award, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Award{}, fmt.Errorf("context cancelled: %w", err)
		}
	}
	if act.UserID == "" || act.Kind == "" {
		return Award{}, ErrInvalidActivity
	}
	return Award{UserID: act.UserID, Kind: act.Kind, Points: a.PointsFor(act.Kind)}, nil
}

// PointsFor returns the points of kind, falling back to the default.
func (a *PointsAwarder) PointsFor(kind model.ActivityKind) int64 {
	if p, ok := a.points[kind]; ok {
		return p
	}
	return a.defaultPoints
}
