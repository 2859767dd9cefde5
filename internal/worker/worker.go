// Package worker runs CPU-bound jobs on a bounded pool and detached
// side effects whose failures are only logged.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Pool bounds how many CPU-bound jobs run at once. Callers block in Do
// until a slot frees up and their job finishes.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool with size slots. A non-positive size uses GOMAXPROCS.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Do runs fn on its own goroutine once a slot is available and waits for
// it. A panic in fn is returned as an error.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("worker panic: %v", r)
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The job keeps its slot until it returns.
		return ctx.Err()
	}
}

// Tasks runs fire-and-forget side effects. Each task gets a context that
// is not cancelled with the caller's, and its error is logged, never
// returned.
type Tasks struct {
	wg  sync.WaitGroup
	log zerolog.Logger
}

// NewTasks creates a task group that logs failures to log.
func NewTasks(log zerolog.Logger) *Tasks {
	return &Tasks{log: log.With().Str("component", "tasks").Logger()}
}

// Go starts fn in the background. name identifies the task in logs.
func (t *Tasks) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				t.log.Error().Str("task", name).Interface("panic", r).Msg("background task panicked")
			}
		}()
		if err := fn(detached); err != nil {
			t.log.Warn().Err(err).Str("task", name).Msg("background task failed")
		}
	}()
}

// Wait blocks until every started task has returned.
func (t *Tasks) Wait() {
	t.wg.Wait()
}
