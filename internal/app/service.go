// Package service wires the document store, matching engine and activity
// pipeline into the operations the HTTP API consumes.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/campusconnect/internal/adapters/docstore"
	activityqueue "github.com/okian/campusconnect/internal/adapters/mq/queue"
	workerpool "github.com/okian/campusconnect/internal/adapters/mq/worker"
	"github.com/okian/campusconnect/internal/adapters/repository"
	"github.com/okian/campusconnect/internal/domain/dedupe"
	"github.com/okian/campusconnect/internal/domain/gamification"
	"github.com/okian/campusconnect/internal/domain/matching"
	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

// Default configuration.
const (
	defaultQueueSize            = 10_000
	defaultDedupeSize           = 100_000
	defaultRecommendationLimit  = matching.DefaultLimit
	defaultMaxRecommendations   = 50
	defaultLeaderboardLimit     = 10
	defaultMaxLeaderboardLimit  = 100
	defaultShutdownDrainTimeout = 10 * time.Second
)

// Service implements the API dependencies for the campus platform.
type Service struct {
	mu sync.RWMutex
	// docMu serializes read-modify-write sequences on documents so capacity
	// checks and counters are not lost between concurrent requests.
	docMu sync.Mutex

	// Core components
	store       *docstore.Store
	engine      *matching.Engine
	leaderboard repository.Store
	deduper     dedupe.Deduper
	queue       activityqueue.Queue
	awarder     *gamification.PointsAwarder
	workerPool  *workerpool.Pool
	cancel      context.CancelFunc

	// Configuration
	dataDir             string
	workerCount         int
	queueSize           int
	dedupeSize          int
	defaultLimit        int
	maxLimit            int
	maxLeaderboardLimit int
	points              map[string]int64
	defaultPoints       int64
	now                 func() time.Time
	newID               func() string

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           defaultQueueSize,
		dedupeSize:          defaultDedupeSize,
		defaultLimit:        defaultRecommendationLimit,
		maxLimit:            defaultMaxRecommendations,
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
		defaultPoints:       gamification.DefaultPoints,
		now:                 time.Now,
		newID:               uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the document store, preloads the leaderboard from stored
// points and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting campus service...", logger.String("dataDir", s.dataDir))

	store, err := docstore.Open(s.dataDir, docstore.WithLogger(s.logger.Named("badger")))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	totals, err := s.loadPoints(ctx, store)
	if err != nil {
		_ = store.Close()
		return err
	}

	s.store = store
	s.engine = matching.NewEngine(matching.WithClock(s.now))
	s.leaderboard = repository.NewTreapStore(repository.WithInitialPoints(totals))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = activityqueue.NewInMemoryQueue(activityqueue.WithCapacity(s.queueSize))
	s.awarder = gamification.NewPointsAwarder(
		gamification.WithPoints(s.points),
		gamification.WithDefaultPoints(s.defaultPoints),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.awarder, s.leaderboard,
		workerpool.WithRecorder(s),
	)
	s.workerPool.Start(runCtx)

	s.started = true
	s.startedAt = s.now()
	metrics.UpdateQueueCapacity(s.queueSize)
	metrics.UpdateLeaderboardUsers(s.leaderboard.Count(ctx))
	s.logger.Info(ctx, "campus service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("rankedUsers", len(totals)),
	)
	return nil
}

func (s *Service) loadPoints(ctx context.Context, store *docstore.Store) (map[string]int64, error) {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load user points: %w", err)
	}
	totals := make(map[string]int64, len(users))
	for i := range users {
		if users[i].Gamification.Points > 0 {
			totals[users[i].ID] = users[i].Gamification.Points
		}
	}
	return totals, nil
}

// Stop drains the activity queue, stops the workers and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping campus service...")

	drainCtx, cancel := context.WithTimeout(ctx, defaultShutdownDrainTimeout)
	defer cancel()
	if err := s.workerPool.Shutdown(drainCtx); err != nil {
		s.logger.Warn(ctx, "activity queue not fully drained", logger.Error(err))
	}
	s.cancel()

	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "error closing document store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "campus service stopped")
}

// running returns the live components or ErrNotStarted.
func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len()
		rankedUsers := s.leaderboard.Count(ctx)

		stats["queueLength"] = queueLen
		stats["rankedUsers"] = rankedUsers
		stats["dedupeEntries"] = s.deduper.Size()
		stats["activitiesProcessed"] = s.workerPool.Processed()
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateLeaderboardUsers(rankedUsers)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}

	return stats
}

// clampLimit applies the default for non-positive limits and caps at max.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return limit
}

// storeErr maps document store errors onto service sentinels.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, docstore.ErrInvalidID):
		return fmt.Errorf("%w: %s id must not be empty", ErrInvalidInput, what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
