package worker_test

import (
	"context"
	"slices"
	"testing"

	"github.com/xraph/jobqueue/job"
	"github.com/xraph/jobqueue/worker"
)

func noop(context.Context, *job.Job) (any, error) { return nil, nil }

func TestRegistry_Order(t *testing.T) {
	r := worker.NewRegistry()
	r.Register(worker.New("a", noop, worker.Config{}))
	r.Register(worker.New("b", noop, worker.Config{}))
	r.Register(worker.New("c", noop, worker.Config{}))

	if got := r.Names(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Names() = %v", got)
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d", r.Len())
	}
}

func TestRegistry_ReplaceKeepsPosition(t *testing.T) {
	r := worker.NewRegistry()
	first := worker.New("a", noop, worker.Config{})
	r.Register(first)
	r.Register(worker.New("b", noop, worker.Config{}))

	second := worker.New("a", noop, worker.Config{Concurrency: 4})
	if prev := r.Register(second); prev != first {
		t.Fatal("Register should return the replaced worker")
	}

	if got := r.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("Names() = %v", got)
	}
	got, ok := r.Get("a")
	if !ok || got != second {
		t.Fatal("Get should return the latest registration")
	}
	if got.Config().Concurrency != 4 {
		t.Fatalf("Concurrency = %d", got.Config().Concurrency)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := worker.NewRegistry()
	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected no worker")
	}
}

func TestRegistry_AcquireFirstFit(t *testing.T) {
	r := worker.NewRegistry()
	r.Register(worker.New("audit-only", noop, worker.Config{JobTypes: []string{"audit"}}))
	r.Register(worker.New("general", noop, worker.Config{Concurrency: 1}))

	w, ok := r.Acquire(newJob("audit", 0))
	if !ok || w.Name() != "audit-only" {
		t.Fatalf("audit job went to %v", w)
	}

	w, ok = r.Acquire(newJob("optimize", 0))
	if !ok || w.Name() != "general" {
		t.Fatalf("optimize job went to %v", w)
	}

	if _, ok := r.Acquire(newJob("optimize", 0)); ok {
		t.Fatal("expected no capacity left for optimize")
	}
}
