package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// OrderExpirer exposes the subset of order functionality required by the sweeper.
type OrderExpirer interface {
	StaleCandidates(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
	ExpireStale(ctx context.Context, orderID int64, cutoff time.Time) (bool, error)
}

type expireJob struct {
	orderID int64
	cutoff  time.Time
}

// PendingSweeper cancels unpaid online orders that stayed PENDING past their TTL.
type PendingSweeper struct {
	orders    OrderExpirer
	ttl       time.Duration
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger
	now       func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPendingSweeper constructs the sweeper worker pool.
func NewPendingSweeper(orders OrderExpirer, ttl, interval time.Duration, batchSize, workers int, logger *slog.Logger) *PendingSweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PendingSweeper{
		orders:    orders,
		ttl:       ttl,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

// Start launches background sweeping. The sweeper outlives ctx until Stop is called.
func (s *PendingSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	jobs := make(chan expireJob, s.batchSize)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx, jobs)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx, jobs)
}

// Stop waits for all workers to finish.
func (s *PendingSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *PendingSweeper) dispatch(ctx context.Context, jobs chan<- expireJob) {
	defer s.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndDispatch(ctx, jobs)
		}
	}
}

func (s *PendingSweeper) fetchAndDispatch(ctx context.Context, jobs chan<- expireJob) {
	cutoff := s.now().Add(-s.ttl)
	ids, err := s.orders.StaleCandidates(ctx, cutoff, s.batchSize)
	if err != nil {
		s.logger.Error("fetch stale orders failed", slog.String("error", err.Error()))
		return
	}
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return
		case jobs <- expireJob{orderID: id, cutoff: cutoff}:
		}
	}
}

func (s *PendingSweeper) worker(ctx context.Context, jobs <-chan expireJob) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			s.expire(ctx, job)
		}
	}
}

func (s *PendingSweeper) expire(ctx context.Context, job expireJob) {
	expired, err := s.orders.ExpireStale(ctx, job.orderID, job.cutoff)
	if err != nil {
		s.logger.Error("expire stale order failed", slog.Int64("order_id", job.orderID), slog.String("error", err.Error()))
		return
	}
	if expired {
		s.logger.Info("stale order cancelled", slog.Int64("order_id", job.orderID))
	}
}
