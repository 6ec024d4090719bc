package utils

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// WorkerPool runs jobs on at most maxWorkers goroutines and spaces job starts
// at least interval apart.
type WorkerPool struct {
	semaphore chan struct{}
	limiter   *rate.Limiter
	wg        sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool. An interval of zero disables spacing.
func NewWorkerPool(maxWorkers int, interval time.Duration) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &WorkerPool{
		semaphore: make(chan struct{}, maxWorkers),
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Submit blocks until a worker is free, then runs job in the background. If
// ctx ends while the job waits for its start slot, the job runs with the
// cancelled ctx so it can report the error itself.
func (wp *WorkerPool) Submit(ctx context.Context, job func(ctx context.Context)) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		_ = wp.limiter.Wait(ctx)
		job(ctx)
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// StringSet is a set of strings safe for concurrent use.
type StringSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add returns true if s was newly added, false if already present.
func (set *StringSet) Add(s string) bool {
	set.mu.Lock()
	defer set.mu.Unlock()

	if _, exists := set.seen[s]; exists {
		return false
	}
	set.seen[s] = struct{}{}
	return true
}

func (set *StringSet) Contains(s string) bool {
	set.mu.RLock()
	defer set.mu.RUnlock()
	_, exists := set.seen[s]
	return exists
}

func (set *StringSet) Size() int {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.seen)
}
