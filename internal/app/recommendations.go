package service

import (
	"context"
	"strings"
	"time"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	"github.com/okian/campusconnect/internal/domain/matching"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/internal/domain/types"
	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

// RecommendMentors ranks available mentors for a user.
func (s *Service) RecommendMentors(ctx context.Context, userID string, limit int) ([]types.MentorRecommendation, error) {
	start := time.Now()
	if err := s.running(); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	pool, err := s.store.ListMentors(ctx)
	if err != nil {
		return nil, storeErr(err, "mentors")
	}

	matches := s.engine.RecommendMentors(user, pool, clampLimit(limit, s.defaultLimit, s.maxLimit))
	s.observeRecommendation(ctx, "mentors", userID, len(pool), len(matches), start)
	return types.NewMentorRecommendations(matches), nil
}

// RecommendEvents ranks upcoming published events for a user.
func (s *Service) RecommendEvents(ctx context.Context, userID string, limit int) ([]types.EventRecommendation, error) {
	start := time.Now()
	if err := s.running(); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	pool, err := s.upcomingEvents(ctx)
	if err != nil {
		return nil, err
	}

	matches := s.engine.RecommendEvents(user, pool, clampLimit(limit, s.defaultLimit, s.maxLimit))
	s.observeRecommendation(ctx, "events", userID, len(pool), len(matches), start)
	return types.NewEventRecommendations(matches), nil
}

// TrendingEvents returns upcoming events ordered by turnout.
func (s *Service) TrendingEvents(ctx context.Context, limit int) ([]model.Event, error) {
	start := time.Now()
	if err := s.running(); err != nil {
		return nil, err
	}
	pool, err := s.upcomingEvents(ctx)
	if err != nil {
		return nil, err
	}

	events := s.engine.TrendingEvents(pool, clampLimit(limit, matching.DefaultTrendingLimit, s.maxLimit))
	s.observeRecommendation(ctx, "trending", "", len(pool), len(events), start)
	return events, nil
}

// MentorsForSkills finds available mentors covering any of skills.
func (s *Service) MentorsForSkills(ctx context.Context, skills []string, limit int) ([]types.SkillMentor, error) {
	start := time.Now()
	if err := s.running(); err != nil {
		return nil, err
	}
	wanted := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			wanted = append(wanted, sk)
		}
	}
	pool, err := s.store.ListMentors(ctx)
	if err != nil {
		return nil, storeErr(err, "mentors")
	}

	matches := s.engine.MentorsForSkills(wanted, pool, clampLimit(limit, matching.DefaultSkillsLimit, s.maxLimit))
	s.observeRecommendation(ctx, "skills", "", len(pool), len(matches), start)
	return types.NewSkillMentors(matches), nil
}

// upcomingEvents reads published events starting after now. The engine
// re-checks the start date against the same clock.
func (s *Service) upcomingEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.ListEvents(ctx, docstore.EventFilter{From: s.now()})
	if err != nil {
		return nil, storeErr(err, "events")
	}
	return events, nil
}

func (s *Service) observeRecommendation(ctx context.Context, kind, userID string, candidates, results int, start time.Time) {
	latency := time.Since(start)
	metrics.RecordRecommendation(kind, candidates, float64(latency.Microseconds())/1000)
	s.logger.Debug(ctx, "recommendations served",
		logger.String("kind", kind),
		logger.String("userID", userID),
		logger.Int("candidates", candidates),
		logger.Int("results", results),
		logger.Duration("took", latency),
	)
}
