package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStringSetNoDuplicates(t *testing.T) {
	s := NewStringSet()

	if !s.Add("BUKIT MERAH") {
		t.Error("first Add should return true")
	}
	if s.Add("BUKIT MERAH") {
		t.Error("second Add of the same value should return false")
	}
	if !s.Contains("BUKIT MERAH") || s.Contains("QUEENSTOWN") {
		t.Error("Contains disagrees with Add")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestStringSetConcurrency(t *testing.T) {
	s := NewStringSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(context.Background(), func(context.Context) {
			if s.Add("same") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolInterval(t *testing.T) {
	interval := 50 * time.Millisecond
	pool := NewWorkerPool(3, interval)

	var (
		mu     sync.Mutex
		starts []time.Time
	)
	for i := 0; i < 3; i++ {
		pool.Submit(context.Background(), func(context.Context) {
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()
		})
	}
	pool.Wait()

	if len(starts) != 3 {
		t.Fatalf("jobs run: got %d, want 3", len(starts))
	}
	first, last := starts[0], starts[0]
	for _, s := range starts {
		if s.Before(first) {
			first = s
		}
		if s.After(last) {
			last = s
		}
	}
	// three starts need at least two full intervals between first and last
	if gap := last.Sub(first); gap < 2*interval-5*time.Millisecond {
		t.Errorf("jobs started %v apart, want at least %v", gap, 2*interval)
	}
}

func TestWorkerPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWorkerPool(1, time.Hour)
	var sawErr atomic.Bool
	for i := 0; i < 2; i++ {
		pool.Submit(ctx, func(ctx context.Context) {
			if ctx.Err() != nil {
				sawErr.Store(true)
			}
		})
	}
	pool.Wait()

	if !sawErr.Load() {
		t.Error("jobs should see the cancelled context")
	}
}
