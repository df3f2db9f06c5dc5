package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

// CreateEvent stores a new event. A missing id is generated, a missing
// category becomes Other, a missing published flag means published and
// attendees always start empty.
func (s *Service) CreateEvent(ctx context.Context, e model.Event) (model.Event, error) {
	if err := s.running(); err != nil {
		return model.Event{}, err
	}
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return model.Event{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if e.StartDate.IsZero() {
		return model.Event{}, fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return model.Event{}, fmt.Errorf("%w: end date precedes start date", ErrInvalidInput)
	}
	if e.Category == "" {
		e.Category = model.CategoryOther
	}
	if !e.Category.Valid() {
		return model.Event{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, e.Category)
	}
	if e.Capacity < 0 {
		return model.Event{}, fmt.Errorf("%w: capacity must not be negative", ErrInvalidInput)
	}
	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.Published == nil {
		published := true
		e.Published = &published
	}
	e.Attendees = nil
	e.CreatedAt = s.now().UTC()

	s.docMu.Lock()
	defer s.docMu.Unlock()

	if _, err := s.store.GetEvent(ctx, e.ID); err == nil {
		return model.Event{}, ErrEventExists
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return model.Event{}, storeErr(err, "event")
	}
	if err := s.store.PutEvent(ctx, e); err != nil {
		return model.Event{}, storeErr(err, "event")
	}
	s.logger.Info(ctx, "event created", logger.String("eventID", e.ID), logger.String("title", e.Title))
	return e, nil
}

// GetEvent loads an event.
func (s *Service) GetEvent(ctx context.Context, id string) (model.Event, error) {
	if err := s.running(); err != nil {
		return model.Event{}, err
	}
	e, err := s.store.GetEvent(ctx, id)
	return e, storeErr(err, "event")
}

// ListEvents returns published events matching f ordered by start date.
func (s *Service) ListEvents(ctx context.Context, f docstore.EventFilter) ([]model.Event, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	if f.Category != "" && !f.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, f.Category)
	}
	f.IncludeUnpublished = false
	events, err := s.store.ListEvents(ctx, f)
	return events, storeErr(err, "events")
}

// RSVP registers userID for the event and awards event_rsvp points.
func (s *Service) RSVP(ctx context.Context, eventID, userID string) (model.Event, error) {
	if err := s.running(); err != nil {
		return model.Event{}, err
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return model.Event{}, storeErr(err, "user")
	}
	now := s.now().UTC()
	e, err := s.store.UpdateEvent(ctx, eventID, func(e *model.Event) error {
		if e.HasAttendee(userID) {
			return ErrAlreadyRegistered
		}
		if e.IsFull() {
			return ErrEventFull
		}
		e.Attendees = append(e.Attendees, model.Attendee{UserID: userID, RSVPDate: now})
		return nil
	})
	if err != nil {
		return model.Event{}, storeErr(err, "event")
	}

	metrics.RecordEventRSVP()
	s.recordActivity(ctx, model.Activity{
		ID:         "rsvp:" + eventID + ":" + userID,
		UserID:     userID,
		Kind:       model.ActivityEventRSVP,
		OccurredAt: now,
	})
	return e, nil
}

// CheckIn marks an RSVP'd user as attended, bumps their attendance counter and
// awards event_attended points.
func (s *Service) CheckIn(ctx context.Context, eventID, userID string) (model.Event, error) {
	if err := s.running(); err != nil {
		return model.Event{}, err
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	e, err := s.store.UpdateEvent(ctx, eventID, func(e *model.Event) error {
		if !e.HasAttendee(userID) {
			return ErrNotRegistered
		}
		if !e.MarkAttended(userID) {
			return ErrAlreadyCheckedIn
		}
		return nil
	})
	if err != nil {
		return model.Event{}, storeErr(err, "event")
	}

	if _, err := s.store.UpdateUser(ctx, userID, func(u *model.User) error {
		u.Gamification.Stats.EventsAttended++
		return nil
	}); err != nil {
		s.logger.Warn(ctx, "attendance counter not updated",
			logger.String("userID", userID),
			logger.Error(err),
		)
	}

	metrics.RecordEventCheckIn()
	s.recordActivity(ctx, model.Activity{
		ID:         "checkin:" + eventID + ":" + userID,
		UserID:     userID,
		Kind:       model.ActivityEventAttended,
		OccurredAt: s.now().UTC(),
	})
	return e, nil
}

// recordActivity submits a side-effect activity. Failures are logged: the
// primary operation already succeeded. Callers hold docMu and have checked
// that the service is running.
func (s *Service) recordActivity(ctx context.Context, a model.Activity) {
	if _, err := s.submit(ctx, a); err != nil {
		s.logger.Warn(ctx, "activity not recorded",
			logger.String("activityID", a.ID),
			logger.String("kind", string(a.Kind)),
			logger.Error(err),
		)
	}
}
