package docstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/okian/campusconnect/internal/domain/model"
)

// EventFilter narrows ListEvents. Zero values do not filter.
type EventFilter struct {
	Category           model.Category
	From               time.Time // start date on or after
	To                 time.Time // start date before
	IncludeUnpublished bool
}

func (f *EventFilter) match(e *model.Event) bool {
	if !f.IncludeUnpublished && !e.IsPublished() {
		return false
	}
	if f.Category != "" && !strings.EqualFold(string(f.Category), string(e.Category)) {
		return false
	}
	if !f.From.IsZero() && e.StartDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.StartDate.Before(f.To) {
		return false
	}
	return true
}

// GetEvent loads an event by id.
func (s *Store) GetEvent(ctx context.Context, id string) (e model.Event, err error) {
	defer func(start time.Time) { observe("get_event", start, err) }(time.Now())
	if id == "" {
		return model.Event{}, ErrInvalidID
	}
	return get[model.Event](ctx, s.db, eventKeyPrefix+id)
}

// PutEvent creates or replaces an event document.
func (s *Store) PutEvent(ctx context.Context, e model.Event) (err error) {
	defer func(start time.Time) { observe("put_event", start, err) }(time.Now())
	if e.ID == "" {
		return ErrInvalidID
	}
	return put(ctx, s.db, eventKeyPrefix+e.ID, e)
}

// UpdateEvent applies fn to the stored event atomically and returns the result.
// An error from fn aborts the update.
func (s *Store) UpdateEvent(ctx context.Context, id string, fn func(*model.Event) error) (e model.Event, err error) {
	defer func(start time.Time) { observe("update_event", start, err) }(time.Now())
	if id == "" {
		return model.Event{}, ErrInvalidID
	}
	return update(ctx, s.db, eventKeyPrefix+id, fn)
}

// ListEvents returns the events matching f ordered by start date, then id.
func (s *Store) ListEvents(ctx context.Context, f EventFilter) (events []model.Event, err error) {
	defer func(start time.Time) { observe("list_events", start, err) }(time.Now())
	events, err = scan(ctx, s.db, eventKeyPrefix, f.match)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(events, func(a, b model.Event) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return events, nil
}
