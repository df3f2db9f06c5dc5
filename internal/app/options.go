package service

import (
	"time"

	"github.com/okian/campusconnect/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the badger directory. Empty keeps documents in memory.
func WithDataDir(dir string) Option {
	return func(s *Service) { s.dataDir = dir }
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the activity queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the activity id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) { s.dedupeSize = size }
}

// WithRecommendationLimits sets the default and maximum recommendation limit.
func WithRecommendationLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultLimit = def
		}
		if max >= s.defaultLimit {
			s.maxLimit = max
		}
	}
}

// WithMaxLeaderboardLimit caps leaderboard reads.
func WithMaxLeaderboardLimit(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxLeaderboardLimit = max
		}
	}
}

// WithPoints overrides the points table and the default for unknown kinds.
func WithPoints(points map[string]int64, defaultPoints int64) Option {
	return func(s *Service) {
		s.points = points
		if defaultPoints >= 0 {
			s.defaultPoints = defaultPoints
		}
	}
}

// WithClock sets the time source used for timestamps and "upcoming" checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets how new event and mentorship ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
