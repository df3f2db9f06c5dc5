package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

// defaultMaxMentees applies to mentors that did not set a limit.
const defaultMaxMentees = 5

// MentorshipInput is what a mentee submits to request mentorship.
type MentorshipInput struct {
	MentorID    string
	MenteeID    string
	Topic       string
	Description string
	Goals       []string
}

// MentorshipUpdate is what a mentor submits to move a request forward.
type MentorshipUpdate struct {
	Status    model.MentorshipStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// allowed lists the status changes a mentor may make.
var allowed = map[model.MentorshipStatus][]model.MentorshipStatus{
	model.MentorshipPending: {model.MentorshipActive, model.MentorshipCancelled},
	model.MentorshipActive:  {model.MentorshipCompleted, model.MentorshipCancelled},
}

// RequestMentorship opens a pending request from a mentee to an available
// mentor with free capacity.
func (s *Service) RequestMentorship(ctx context.Context, in MentorshipInput) (model.MentorshipRequest, error) {
	if err := s.running(); err != nil {
		return model.MentorshipRequest{}, err
	}
	in.Topic = strings.TrimSpace(in.Topic)
	switch {
	case in.MentorID == "" || in.MenteeID == "":
		return model.MentorshipRequest{}, fmt.Errorf("%w: mentor and mentee are required", ErrInvalidInput)
	case in.MentorID == in.MenteeID:
		return model.MentorshipRequest{}, fmt.Errorf("%w: cannot mentor yourself", ErrInvalidInput)
	case in.Topic == "":
		return model.MentorshipRequest{}, fmt.Errorf("%w: topic must not be empty", ErrInvalidInput)
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	if _, err := s.store.GetUser(ctx, in.MenteeID); err != nil {
		return model.MentorshipRequest{}, storeErr(err, "mentee")
	}
	mentor, err := s.store.GetUser(ctx, in.MentorID)
	if err != nil {
		return model.MentorshipRequest{}, storeErr(err, "mentor")
	}
	if !mentor.Role.CanMentor() || !mentor.MentorProfile.IsAvailable {
		return model.MentorshipRequest{}, ErrMentorUnavailable
	}

	existing, err := s.store.ListMentorships(ctx, docstore.MentorshipFilter{UserID: in.MentorID, Role: docstore.RoleMentor})
	if err != nil {
		return model.MentorshipRequest{}, storeErr(err, "mentorships")
	}
	for i := range existing {
		open := existing[i].Status == model.MentorshipPending || existing[i].Status == model.MentorshipActive
		if open && existing[i].MenteeID == in.MenteeID {
			return model.MentorshipRequest{}, ErrDuplicateRequest
		}
	}
	if atCapacity(&mentor, existing) {
		return model.MentorshipRequest{}, ErrMentorUnavailable
	}

	now := s.now().UTC()
	m := model.MentorshipRequest{
		ID:          s.newID(),
		MentorID:    in.MentorID,
		MenteeID:    in.MenteeID,
		Topic:       in.Topic,
		Description: strings.TrimSpace(in.Description),
		Goals:       in.Goals,
		Status:      model.MentorshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutMentorship(ctx, m); err != nil {
		return model.MentorshipRequest{}, storeErr(err, "mentorship")
	}

	metrics.RecordMentorshipRequest(string(m.Status))
	s.logger.Info(ctx, "mentorship requested",
		logger.String("mentorshipID", m.ID),
		logger.String("mentorID", m.MentorID),
		logger.String("menteeID", m.MenteeID),
	)
	return m, nil
}

// UpdateMentorship changes the status of a request. Only its mentor may do so.
// Activating stamps a start date and completing stamps an end date when none
// are given; completion awards the mentor a mentorship session.
func (s *Service) UpdateMentorship(ctx context.Context, id, actorID string, upd MentorshipUpdate) (model.MentorshipRequest, error) {
	if err := s.running(); err != nil {
		return model.MentorshipRequest{}, err
	}
	if !upd.Status.Valid() {
		return model.MentorshipRequest{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, upd.Status)
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	m, err := s.store.GetMentorship(ctx, id)
	if err != nil {
		return model.MentorshipRequest{}, storeErr(err, "mentorship")
	}
	if actorID == "" || actorID != m.MentorID {
		return model.MentorshipRequest{}, fmt.Errorf("%w: only the mentor can update this request", ErrForbidden)
	}
	if !transitionAllowed(m.Status, upd.Status) {
		return model.MentorshipRequest{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, m.Status, upd.Status)
	}

	if upd.Status == model.MentorshipActive {
		if err := s.checkCapacity(ctx, m.MentorID); err != nil {
			return model.MentorshipRequest{}, err
		}
	}

	now := s.now().UTC()
	if upd.StartDate != nil {
		m.StartDate = upd.StartDate
	}
	if upd.EndDate != nil {
		m.EndDate = upd.EndDate
	}
	if upd.Status == model.MentorshipActive && m.StartDate == nil {
		m.StartDate = &now
	}
	if upd.Status == model.MentorshipCompleted && m.EndDate == nil {
		m.EndDate = &now
	}
	if m.StartDate != nil && m.EndDate != nil && m.EndDate.Before(*m.StartDate) {
		return model.MentorshipRequest{}, fmt.Errorf("%w: end date precedes start date", ErrInvalidInput)
	}
	m.Status = upd.Status
	m.UpdatedAt = now

	if err := s.store.PutMentorship(ctx, m); err != nil {
		return model.MentorshipRequest{}, storeErr(err, "mentorship")
	}
	metrics.RecordMentorshipRequest(string(m.Status))

	if m.Status == model.MentorshipCompleted {
		s.recordActivity(ctx, model.Activity{
			ID:         "mentorship:" + m.ID,
			UserID:     m.MentorID,
			Kind:       model.ActivityMentorshipSession,
			OccurredAt: now,
		})
	}
	return m, nil
}

// checkCapacity refuses another active mentee once the mentor reached their
// limit. Callers hold docMu.
func (s *Service) checkCapacity(ctx context.Context, mentorID string) error {
	mentor, err := s.store.GetUser(ctx, mentorID)
	if err != nil {
		return storeErr(err, "mentor")
	}
	existing, err := s.store.ListMentorships(ctx, docstore.MentorshipFilter{
		UserID: mentorID,
		Role:   docstore.RoleMentor,
		Status: model.MentorshipActive,
	})
	if err != nil {
		return storeErr(err, "mentorships")
	}
	if atCapacity(&mentor, existing) {
		return ErrMentorUnavailable
	}
	return nil
}

// atCapacity reports whether the active requests in existing fill the
// mentor's limit.
func atCapacity(mentor *model.User, existing []model.MentorshipRequest) bool {
	limit := mentor.MentorProfile.MaxMentees
	if limit <= 0 {
		limit = defaultMaxMentees
	}
	active := 0
	for i := range existing {
		if existing[i].Status == model.MentorshipActive {
			active++
		}
	}
	return active >= limit
}

func transitionAllowed(from, to model.MentorshipStatus) bool {
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ListMentorships returns requests matching f, newest first.
func (s *Service) ListMentorships(ctx context.Context, f docstore.MentorshipFilter) ([]model.MentorshipRequest, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	if f.Role != "" && f.Role != docstore.RoleMentor && f.Role != docstore.RoleMentee {
		return nil, fmt.Errorf("%w: role must be mentor or mentee", ErrInvalidInput)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	ms, err := s.store.ListMentorships(ctx, f)
	return ms, storeErr(err, "mentorships")
}
