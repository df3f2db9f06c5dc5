// Package worker drains the activity queue, awards points and updates the
// leaderboard.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/campusconnect/internal/domain/gamification"
	"github.com/okian/campusconnect/internal/domain/model"
	"github.com/okian/campusconnect/pkg/logger"
	"github.com/okian/campusconnect/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Activity is what workers read off the queue.
type Activity = model.Activity

// Awarder turns an activity into points.
type Awarder interface {
	Award(ctx context.Context, a model.Activity) (gamification.Award, error)
}

// Ledger accumulates points per user.
type Ledger interface {
	AddPoints(ctx context.Context, userID string, delta int64) (int64, error)
}

// Recorder persists an award after the ledger accepted it. total is the
// user's new leaderboard total.
type Recorder interface {
	RecordAward(ctx context.Context, award gamification.Award, total int64) error
}

// Queue defines how workers receive activities.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Activity
}

// Worker processes activities until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the loop to return.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	awarder  Awarder
	ledger   Ledger
	recorder Recorder
	name     string

	processed *atomic.Int64

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, awarder Awarder, ledger Ledger, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		awarder:   awarder,
		ledger:    ledger,
		name:      "worker",
		processed: &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	activities := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case a, ok := <-activities:
			if !ok {
				return
			}
			if err := w.process(ctx, a); err != nil {
				w.logger.Error(ctx, "error processing activity", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker. It is safe to call more than once.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many activities this worker credited.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

// process awards a single activity.
func (w *InMemoryWorker) process(ctx context.Context, a Activity) error { //nolint:gocritic // hugeParam: value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	awardStart := time.Now()
	award, err := w.awarder.Award(ctx, a)
	metrics.RecordAwardLatency(float64(time.Since(awardStart).Milliseconds()))
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "award_error")
		w.logger.Error(ctx, "award failed for activity",
			logger.String("activityID", a.ID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to award activity %s: %w", a.ID, err)
	}

	total, err := w.ledger.AddPoints(ctx, award.UserID, award.Points)
	if err != nil {
		metrics.RecordLeaderboardError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "leaderboard_error")
		w.logger.Error(ctx, "leaderboard update failed for activity",
			logger.String("activityID", a.ID),
			logger.Error(err),
		)
		return fmt.Errorf("leaderboard update failed: %w", err)
	}
	metrics.RecordLeaderboardUpdate()
	metrics.RecordPointsAwarded(award.Points)
	metrics.RecordActivityProcessed(string(award.Kind))
	w.processed.Add(1)

	if w.recorder != nil {
		if err := w.recorder.RecordAward(ctx, award, total); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "record_error")
			w.logger.Warn(ctx, "persisting award failed",
				logger.String("activityID", a.ID),
				logger.String("userID", award.UserID),
				logger.Error(err),
			)
			return fmt.Errorf("record award: %w", err)
		}
	}

	w.logger.Debug(ctx, "activity awarded",
		logger.String("activityID", a.ID),
		logger.String("userID", award.UserID),
		logger.Int64("points", award.Points),
		logger.Int64("total", total),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a worker pool. Options apply to every worker; names are
// assigned per index.
func NewPool(workerCount int, queue Queue, awarder Awarder, ledger Ledger, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(queue, awarder, ledger, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the number of activities credited by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop stops all workers immediately without draining the queue.
func (p *Pool) Stop(ctx context.Context) {
	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
}

// Shutdown closes the queue and lets workers drain what is buffered. Workers
// still running when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
		}
		if timedOut {
			break
		}
	}
	if timedOut {
		for _, w := range p.workers {
			w.stopOnce.Do(func() { close(w.shutdown) })
		}
		return fmt.Errorf("worker pool drain: %w", shutdownCtx.Err())
	}
	return nil
}
