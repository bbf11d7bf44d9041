package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	testhelpers "github.com/polkiloo/gopherfood/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewPendingSweeperDefaults(t *testing.T) {
	sweeper := NewPendingSweeper(&testhelpers.SweeperStub{}, time.Minute, time.Second, 0, 0, discardLogger())
	if sweeper.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", sweeper.batchSize)
	}
	if sweeper.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", sweeper.workers)
	}
}

func TestPendingSweeperExpiresStaleOrders(t *testing.T) {
	stub := &testhelpers.SweeperStub{Batches: [][]int64{{1, 2, 3}}}
	sweeper := NewPendingSweeper(stub, 30*time.Minute, 5*time.Millisecond, 2, 2, discardLogger())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return fixed }

	sweeper.Start(context.Background())

	deadline := time.After(time.Second)
	for len(stub.ExpiredIDs()) < 2 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for stale orders to expire")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sweeper.Stop()

	expired := stub.ExpiredIDs()
	if len(expired) != 2 {
		t.Fatalf("expected batch to be capped at 2 orders, got %v", expired)
	}
	stub.Lock()
	cutoff := stub.Cutoffs[0]
	stub.Unlock()
	if !cutoff.Equal(fixed.Add(-30 * time.Minute)) {
		t.Fatalf("expected cutoff ttl before now, got %v", cutoff)
	}
}

func TestPendingSweeperSurvivesStartContextCancel(t *testing.T) {
	stub := &testhelpers.SweeperStub{Batches: [][]int64{nil, {9}}}
	sweeper := NewPendingSweeper(stub, time.Minute, 5*time.Millisecond, 1, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	cancel()

	deadline := time.After(time.Second)
	for len(stub.ExpiredIDs()) == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper stopped with its start context")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sweeper.Stop()
}

func TestPendingSweeperKeepsGoingAfterFailures(t *testing.T) {
	var attempts int32
	stub := &testhelpers.SweeperStub{
		Batches: [][]int64{{1}, {2}},
		ExpireFn: func(ctx context.Context, id int64, cutoff time.Time) (bool, error) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				return false, errors.New("deadlock detected")
			}
			return true, nil
		},
	}
	sweeper := NewPendingSweeper(stub, time.Minute, 5*time.Millisecond, 1, 1, discardLogger())
	sweeper.Start(context.Background())

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&attempts) < 2 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for retry after failure")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sweeper.Stop()
}

func TestPendingSweeperStopIsIdempotent(t *testing.T) {
	sweeper := NewPendingSweeper(&testhelpers.SweeperStub{}, time.Minute, time.Hour, 1, 1, discardLogger())
	sweeper.Stop()
	sweeper.Start(context.Background())
	sweeper.Stop()
	sweeper.Stop()
}
