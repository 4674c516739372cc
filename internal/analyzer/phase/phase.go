// Package phase runs one batch of independent tasks on a bounded worker pool
// and blocks the caller until every task has finished. The pool belongs to
// the caller for the duration of Run; tasks never tear it down.
package phase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
)

// Task is one unit of work. A returned error (or a panic) is logged and
// counted; it never aborts the phase.
type Task func(ctx context.Context) error

// Result summarises a finished phase.
type Result struct {
	Submitted int64
	Completed int64
	Failed    int64
	Skipped   int64
	Duration  time.Duration
}

type Scheduler struct {
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewScheduler(workers int, m *metrics.Metrics) *Scheduler {
	if workers <= 0 {
		workers = 1
	}
	if m == nil {
		m = metrics.New()
	}
	return &Scheduler{
		workers: workers,
		metrics: m,
		logger:  slog.Default().With("component", "phase"),
	}
}

// Workers returns the pool size.
func (s *Scheduler) Workers() int {
	return s.workers
}

// Run submits tasks to a pool of s.workers goroutines and waits for all of
// them. Once ctx is cancelled, tasks that have not started are skipped and
// Run returns ErrInterrupted after the running ones drain.
func (s *Scheduler) Run(ctx context.Context, name string, tasks []Task) (Result, error) {
	start := time.Now()
	var completed, failed, skipped atomic.Int64
	inFlight := s.metrics.TasksInFlight.WithLabelValues(name)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			defer completed.Add(1)
			if ctx.Err() != nil {
				skipped.Add(1)
				return nil
			}
			inFlight.Inc()
			defer inFlight.Dec()
			if err := runTask(ctx, task); err != nil {
				failed.Add(1)
				// Returned errors are reported by the task itself; a panic
				// has no other witness.
				var p *panicError
				if errors.As(err, &p) {
					s.logger.Error("task panicked", "phase", name, "task", i, "panic", p.value)
				} else {
					s.logger.Debug("task failed", "phase", name, "task", i, "error", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Submitted: int64(len(tasks)),
		Completed: completed.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
		Duration:  time.Since(start),
	}
	s.metrics.PhaseDuration.WithLabelValues(name).Observe(res.Duration.Seconds())

	if err := ctx.Err(); err != nil {
		return res, apperrors.Newf(apperrors.ErrInterrupted, "%s phase: %v (%d tasks skipped)", name, err, res.Skipped)
	}
	s.logger.Debug("phase complete",
		"phase", name,
		"tasks", res.Submitted,
		"failed", res.Failed,
		"workers", s.workers,
		"duration", res.Duration,
	)
	return res, nil
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.value)
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return task(ctx)
}
