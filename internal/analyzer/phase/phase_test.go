package phase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
)

func TestRunWaitsForAllTasks(t *testing.T) {
	t.Parallel()

	const n = 50
	slots := make([]int, n)
	tasks := make([]Task, n)
	for i := range tasks {
		i := i
		tasks[i] = func(context.Context) error {
			time.Sleep(time.Millisecond)
			slots[i] = i + 1
			return nil
		}
	}

	res, err := NewScheduler(4, nil).Run(context.Background(), "map", tasks)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Completed != n || res.Submitted != n {
		t.Errorf("Result = %+v, want %d completed", res, n)
	}
	for i, v := range slots {
		if v != i+1 {
			t.Errorf("slot %d = %d after barrier, want %d", i, v, i+1)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		tasks   int
	}{
		{"single worker", 1, 10},
		{"three workers", 3, 30},
		{"more workers than tasks", 16, 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var current, peak atomic.Int64
			tasks := make([]Task, tt.tasks)
			for i := range tasks {
				tasks[i] = func(context.Context) error {
					c := current.Add(1)
					for {
						p := peak.Load()
						if c <= p || peak.CompareAndSwap(p, c) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					current.Add(-1)
					return nil
				}
			}

			if _, err := NewScheduler(tt.workers, nil).Run(context.Background(), "map", tasks); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if p := peak.Load(); p > int64(tt.workers) {
				t.Errorf("peak concurrency = %d, want <= %d", p, tt.workers)
			}
		})
	}
}

func TestRunAbsorbsFailures(t *testing.T) {
	t.Parallel()

	var ran atomic.Int64
	tasks := []Task{
		func(context.Context) error { ran.Add(1); return errors.New("read failed") },
		func(context.Context) error { ran.Add(1); panic("boom") },
		func(context.Context) error { ran.Add(1); return nil },
	}

	res, err := NewScheduler(2, nil).Run(context.Background(), "map", tasks)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if res.Failed != 2 {
		t.Errorf("Failed = %d, want 2", res.Failed)
	}
	if res.Completed != 3 || ran.Load() != 3 {
		t.Errorf("Completed = %d, ran = %d, want 3", res.Completed, ran.Load())
	}
}

func TestRunLeavesFailureReportingToTask(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewScheduler(1, nil)
	s.logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	failing := []Task{func(context.Context) error { return errors.New("read failed") }}
	res, err := s.Run(context.Background(), "map", failing)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
	if buf.Len() != 0 {
		t.Errorf("scheduler logged a returned task error above debug:\n%s", buf.String())
	}

	panicking := []Task{func(context.Context) error { panic("boom") }}
	if _, err := s.Run(context.Background(), "map", panicking); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("task panicked")) {
		t.Errorf("expected the panic to be logged, got %q", buf.String())
	}
}

func TestRunInterrupted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int64
	tasks := make([]Task, 5)
	for i := range tasks {
		tasks[i] = func(context.Context) error { ran.Add(1); return nil }
	}

	res, err := NewScheduler(2, nil).Run(ctx, "reduce", tasks)
	if !errors.Is(err, apperrors.ErrInterrupted) {
		t.Fatalf("Run() error = %v, want ErrInterrupted", err)
	}
	if ran.Load() != 0 || res.Skipped != 5 {
		t.Errorf("ran = %d, skipped = %d, want 0 and 5", ran.Load(), res.Skipped)
	}
}

func TestRunEmptyPhase(t *testing.T) {
	t.Parallel()

	res, err := NewScheduler(3, nil).Run(context.Background(), "map", nil)
	if err != nil || res.Submitted != 0 {
		t.Fatalf("Run(nil) = %+v, %v", res, err)
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	tasks := []Task{func(context.Context) error { return nil }}
	if _, err := NewScheduler(1, m).Run(context.Background(), "map", tasks); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := testutil.CollectAndCount(m.PhaseDuration); got != 1 {
		t.Errorf("phase duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.TasksInFlight.WithLabelValues("map")); got != 0 {
		t.Errorf("tasks in flight after barrier = %v, want 0", got)
	}
}
