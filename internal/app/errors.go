package service

import (
	"errors"
	"fmt"
)

// Sentinel error kinds returned by Service. The HTTP layer maps them to status
// codes with errors.Is.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrBackpressure = errors.New("activity queue is full")
)

// Conflict details, each wrapping ErrConflict.
var (
	ErrAlreadyRegistered = fmt.Errorf("%w: already registered for this event", ErrConflict)
	ErrEventFull         = fmt.Errorf("%w: event is full", ErrConflict)
	ErrNotRegistered     = fmt.Errorf("%w: no RSVP for this event", ErrConflict)
	ErrAlreadyCheckedIn  = fmt.Errorf("%w: already checked in", ErrConflict)
	ErrMentorUnavailable = fmt.Errorf("%w: mentor is not accepting mentees", ErrConflict)
	ErrDuplicateRequest  = fmt.Errorf("%w: an open request with this mentor exists", ErrConflict)
	ErrInvalidTransition = fmt.Errorf("%w: status change not allowed", ErrConflict)
	ErrEventExists       = fmt.Errorf("%w: event id already used", ErrConflict)
	ErrConnectionExists  = fmt.Errorf("%w: a connection between these users exists", ErrConflict)
)
