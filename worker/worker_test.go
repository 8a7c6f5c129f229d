package worker_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xraph/jobqueue"
	"github.com/xraph/jobqueue/id"
	"github.com/xraph/jobqueue/job"
	"github.com/xraph/jobqueue/worker"
)

func newJob(jobType string, maxRetries int) *job.Job {
	return &job.Job{
		ID:         id.NewJobID(),
		Type:       jobType,
		State:      job.StateRunning,
		MaxRetries: maxRetries,
		CreatedAt:  time.Now().UTC(),
	}
}

// runOnce acquires a slot for j and processes it, returning the outcome
// and the worker's running count observed inside report.
func runOnce(t *testing.T, w *worker.Worker, j *job.Job) (worker.Outcome, int) {
	t.Helper()
	if !w.TryAcquire(j) {
		t.Fatal("TryAcquire failed")
	}
	type reported struct {
		out     worker.Outcome
		running int
	}
	ch := make(chan reported, 1)
	w.Process(context.Background(), j, func(o worker.Outcome) {
		ch <- reported{o, w.Running()}
	})
	select {
	case r := <-ch:
		return r.out, r.running
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outcome")
	}
	return worker.Outcome{}, 0
}

func TestConfig_Normalize(t *testing.T) {
	w := worker.New("w", func(context.Context, *job.Job) (any, error) { return nil, nil },
		worker.Config{Concurrency: 0, RateLimit: 5})
	cfg := w.Config()
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.RateBurst != 1 {
		t.Errorf("RateBurst = %d, want 1", cfg.RateBurst)
	}
	if w.Name() != "w" {
		t.Errorf("Name() = %q", w.Name())
	}
	if w.ID().Prefix() != id.PrefixWorker {
		t.Errorf("ID prefix = %q", w.ID().Prefix())
	}
}

func TestWorker_Accepts(t *testing.T) {
	noop := func(context.Context, *job.Job) (any, error) { return nil, nil }

	all := worker.New("any", noop, worker.Config{})
	if !all.Accepts("audit") || !all.Accepts("") {
		t.Error("worker without JobTypes should accept every type")
	}

	only := worker.New("only", noop, worker.Config{JobTypes: []string{"audit"}})
	if !only.Accepts("audit") {
		t.Error("expected audit accepted")
	}
	if only.Accepts("optimize") {
		t.Error("expected optimize rejected")
	}
	if only.TryAcquire(newJob("optimize", 0)) {
		t.Error("TryAcquire should reject unaccepted type")
	}
}

func TestWorker_TryAcquireCapacity(t *testing.T) {
	w := worker.New("w", func(context.Context, *job.Job) (any, error) { return nil, nil },
		worker.Config{Concurrency: 2})

	a, b, c := newJob("t", 0), newJob("t", 0), newJob("t", 0)
	if !w.TryAcquire(a) || !w.TryAcquire(b) {
		t.Fatal("expected two slots")
	}
	if w.TryAcquire(c) {
		t.Fatal("third acquire should fail at capacity")
	}
	if w.Running() != 2 || len(w.RunningIDs()) != 2 {
		t.Fatalf("Running() = %d", w.Running())
	}

	w.Release(a.ID)
	if !w.TryAcquire(c) {
		t.Fatal("acquire should succeed after release")
	}
}

func TestWorker_RateLimit(t *testing.T) {
	w := worker.New("w", func(context.Context, *job.Job) (any, error) { return nil, nil },
		worker.Config{Concurrency: 10, RateLimit: 0.001, RateBurst: 1})

	first := newJob("t", 0)
	if !w.TryAcquire(first) {
		t.Fatal("first acquire should use the burst token")
	}
	w.Claim(first.ID)
	if w.TryAcquire(newJob("t", 0)) {
		t.Fatal("second acquire should be rate limited")
	}
}

func TestWorker_ReleaseKeepsRateToken(t *testing.T) {
	w := worker.New("w", func(context.Context, *job.Job) (any, error) { return nil, nil },
		worker.Config{Concurrency: 10, RateLimit: 0.001, RateBurst: 1})

	abandoned := newJob("t", 0)
	if !w.TryAcquire(abandoned) {
		t.Fatal("first acquire should see the burst token")
	}
	w.Release(abandoned.ID)

	next := newJob("t", 0)
	if !w.TryAcquire(next) {
		t.Fatal("a released slot should not have spent the token")
	}
	w.Claim(next.ID)
	w.Claim(next.ID)
	w.Release(next.ID)
	if w.TryAcquire(newJob("t", 0)) {
		t.Fatal("a claimed token should stay spent")
	}
}

func TestWorker_ProcessSpendsRateToken(t *testing.T) {
	w := worker.New("w", func(context.Context, *job.Job) (any, error) { return nil, nil },
		worker.Config{Concurrency: 10, RateLimit: 0.001, RateBurst: 1})

	runOnce(t, w, newJob("t", 0))
	if w.TryAcquire(newJob("t", 0)) {
		t.Fatal("processing should have spent the token")
	}
}

func TestWorker_ProcessSuccess(t *testing.T) {
	w := worker.New("w", func(_ context.Context, j *job.Job) (any, error) {
		return "done:" + j.Type, nil
	}, worker.Config{})

	out, running := runOnce(t, w, newJob("audit", 3))
	if out.Kind != worker.KindCompleted {
		t.Fatalf("Kind = %v, want completed", out.Kind)
	}
	if out.Result != "done:audit" {
		t.Errorf("Result = %v", out.Result)
	}
	if out.Worker != "w" {
		t.Errorf("Worker = %q", out.Worker)
	}
	if running != 0 {
		t.Errorf("slot not released before report: running = %d", running)
	}
}

func TestWorker_ProcessFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name       string
		retryCount int
		maxRetries int
		want       worker.Kind
	}{
		{"retries left", 0, 3, worker.KindRetry},
		{"last retry", 2, 3, worker.KindRetry},
		{"exhausted", 3, 3, worker.KindFailed},
		{"no retries", 0, 0, worker.KindFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := worker.New("w", func(context.Context, *job.Job) (any, error) {
				return nil, boom
			}, worker.Config{RetryDelay: 50 * time.Millisecond})

			j := newJob("t", tt.maxRetries)
			j.RetryCount = tt.retryCount

			before := time.Now().UTC()
			out, running := runOnce(t, w, j)
			if out.Kind != tt.want {
				t.Fatalf("Kind = %v, want %v", out.Kind, tt.want)
			}
			if !errors.Is(out.Err, boom) {
				t.Errorf("Err = %v, want boom", out.Err)
			}
			if tt.want == worker.KindRetry && out.RetryAt.Before(before.Add(50*time.Millisecond)) {
				t.Errorf("RetryAt %v earlier than retry delay", out.RetryAt)
			}
			if running != 0 {
				t.Errorf("running = %d after report", running)
			}
		})
	}
}

func TestWorker_Timeout(t *testing.T) {
	w := worker.New("w", func(ctx context.Context, _ *job.Job) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, worker.Config{Timeout: 20 * time.Millisecond})

	out, _ := runOnce(t, w, newJob("t", 0))
	if out.Kind != worker.KindFailed {
		t.Fatalf("Kind = %v, want failed", out.Kind)
	}
	if !errors.Is(out.Err, jobqueue.ErrJobTimeout) || out.Err.Error() != "Job timeout" {
		t.Fatalf("Err = %v, want Job timeout", out.Err)
	}
}

func TestWorker_TimeoutIgnoredContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	w := worker.New("w", func(context.Context, *job.Job) (any, error) {
		<-release
		return "late", nil
	}, worker.Config{Timeout: 20 * time.Millisecond})

	out, running := runOnce(t, w, newJob("t", 1))
	if out.Kind != worker.KindRetry {
		t.Fatalf("Kind = %v, want retry", out.Kind)
	}
	if out.Err.Error() != "Job timeout" {
		t.Fatalf("Err = %v", out.Err)
	}
	if running != 0 {
		t.Fatalf("running = %d after timeout", running)
	}
}

func TestWorker_Panic(t *testing.T) {
	w := worker.New("w", func(context.Context, *job.Job) (any, error) {
		panic("kaboom")
	}, worker.Config{})

	out, running := runOnce(t, w, newJob("audit", 0))
	if out.Kind != worker.KindFailed {
		t.Fatalf("Kind = %v, want failed", out.Kind)
	}
	if !strings.Contains(out.Err.Error(), "kaboom") {
		t.Errorf("Err = %v", out.Err)
	}
	if running != 0 {
		t.Errorf("running = %d", running)
	}
}

func TestWorker_CancelRunning(t *testing.T) {
	started := make(chan struct{})
	causes := make(chan error, 1)

	w := worker.New("w", func(ctx context.Context, _ *job.Job) (any, error) {
		close(started)
		<-ctx.Done()
		causes <- context.Cause(ctx)
		return nil, ctx.Err()
	}, worker.Config{})

	j := newJob("t", 3)
	if !w.TryAcquire(j) {
		t.Fatal("TryAcquire failed")
	}
	outs := make(chan worker.Outcome, 1)
	go w.Process(context.Background(), j, func(o worker.Outcome) { outs <- o })

	<-started
	if !w.Cancel(j.ID) {
		t.Fatal("Cancel returned false for a running job")
	}

	select {
	case out := <-outs:
		if out.Kind != worker.KindCancelled {
			t.Fatalf("Kind = %v, want cancelled", out.Kind)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outcome")
	}
	if cause := <-causes; !errors.Is(cause, jobqueue.ErrJobCancelled) {
		t.Fatalf("processor saw cause %v", cause)
	}
	if w.Cancel(j.ID) {
		t.Fatal("Cancel after release should return false")
	}
}

func TestWorker_CancelBeforeProcess(t *testing.T) {
	w := worker.New("w", func(ctx context.Context, _ *job.Job) (any, error) {
		return nil, ctx.Err()
	}, worker.Config{})

	j := newJob("t", 3)
	if !w.TryAcquire(j) {
		t.Fatal("TryAcquire failed")
	}
	if !w.Cancel(j.ID) {
		t.Fatal("Cancel returned false")
	}

	var out worker.Outcome
	w.Process(context.Background(), j, func(o worker.Outcome) { out = o })
	if out.Kind != worker.KindCancelled {
		t.Fatalf("Kind = %v, want cancelled", out.Kind)
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[worker.Kind]string{
		worker.KindCompleted: "completed",
		worker.KindRetry:     "retry",
		worker.KindFailed:    "failed",
		worker.KindCancelled: "cancelled",
		worker.Kind(99):      "unknown",
	} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}
}
