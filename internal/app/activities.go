package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	activityqueue "github.com/okian/campusconnect/internal/adapters/mq/queue"
	"github.com/okian/campusconnect/internal/adapters/repository"
	"github.com/okian/campusconnect/internal/domain/gamification"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/internal/domain/types"
	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

// SubmitActivity queues an activity for asynchronous awarding. It reports
// duplicate=true when the activity id was already accepted. On backpressure
// the id is forgotten so the caller can retry.
func (s *Service) SubmitActivity(ctx context.Context, a model.Activity) (duplicate bool, err error) {
	if err := s.running(); err != nil {
		return false, err
	}
	return s.submit(ctx, a)
}

func (s *Service) submit(ctx context.Context, a model.Activity) (bool, error) { //nolint:gocritic // hugeParam: queued by value
	a.ID = strings.TrimSpace(a.ID)
	a.UserID = strings.TrimSpace(a.UserID)
	if a.ID == "" || a.UserID == "" || a.Kind == "" {
		return false, fmt.Errorf("%w: activity id, user id and kind are required", ErrInvalidInput)
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = s.now().UTC()
	}

	if s.deduper.SeenAndRecord(ctx, a.ID) {
		metrics.RecordActivityDuplicate()
		s.logger.Debug(ctx, "duplicate activity detected, skipping",
			logger.String("activityID", a.ID),
			logger.String("userID", a.UserID),
		)
		return true, nil
	}

	if err := s.queue.Enqueue(ctx, a); err != nil {
		s.deduper.Unrecord(ctx, a.ID)
		if errors.Is(err, activityqueue.ErrFull) || errors.Is(err, activityqueue.ErrClosed) {
			return false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return false, fmt.Errorf("enqueue activity: %w", err)
	}
	return false, nil
}

// Leaderboard returns the top n users by points.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]types.Entry, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	entries, err := s.leaderboard.TopN(ctx, clampLimit(n, defaultLeaderboardLimit, s.maxLeaderboardLimit))
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{Rank: e.Rank, UserID: e.UserID, Points: e.Points}
	}
	return out, nil
}

// Rank returns the leaderboard position of userID.
func (s *Service) Rank(ctx context.Context, userID string) (types.Entry, error) {
	if err := s.running(); err != nil {
		return types.Entry{}, err
	}
	e, err := s.leaderboard.Rank(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return types.Entry{}, fmt.Errorf("%w: user %s has no points", ErrNotFound, userID)
	case errors.Is(err, repository.ErrInvalidUser):
		return types.Entry{}, fmt.Errorf("%w: user id must not be empty", ErrInvalidInput)
	case err != nil:
		return types.Entry{}, fmt.Errorf("rank: %w", err)
	}
	return types.Entry{Rank: e.Rank, UserID: e.UserID, Points: e.Points}, nil
}

// RecordAward copies the leaderboard total onto the user document and bumps
// the counter matching the activity kind. Users without a profile are only
// ranked.
func (s *Service) RecordAward(ctx context.Context, award gamification.Award, total int64) error {
	s.docMu.Lock()
	defer s.docMu.Unlock()

	_, err := s.store.UpdateUser(ctx, award.UserID, func(u *model.User) error {
		// workers may finish out of order; totals only grow
		if total > u.Gamification.Points {
			u.Gamification.Points = total
		}
		switch award.Kind {
		case model.ActivityPostCreated, model.ActivityKnowledgePostCreated:
			u.Gamification.Stats.PostsCreated++
		case model.ActivityConnectionAdded:
			u.Gamification.Stats.ConnectionsAdded++
		case model.ActivityMentorshipSession:
			u.Gamification.Stats.MentorshipHours++
		}
		return nil
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}
