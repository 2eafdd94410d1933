package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestAddJob(t *testing.T) {
	var runs atomic.Int32

	sched := New(nil)
	err := sched.AddJob("prune", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if sched.JobCount() != 1 {
		t.Errorf("JobCount = %d", sched.JobCount())
	}

	// Start cron and wait for it to fire
	sched.cron.Start()
	time.Sleep(1500 * time.Millisecond)
	sched.cron.Stop()

	if runs.Load() == 0 {
		t.Error("expected at least one run")
	}
}

func TestAddJob_ReplacesSameName(t *testing.T) {
	sched := New(nil)
	noop := func(context.Context) error { return nil }
	if err := sched.AddJob("prune", "@every 5m", noop); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if err := sched.AddJob("prune", "@every 1h", noop); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if sched.JobCount() != 1 {
		t.Errorf("JobCount = %d", sched.JobCount())
	}
	if len(sched.cron.Entries()) != 1 {
		t.Errorf("cron entries = %d", len(sched.cron.Entries()))
	}
}

func TestRemoveJob(t *testing.T) {
	sched := New(nil)
	sched.AddJob("prune", "@every 5m", func(context.Context) error { return nil })
	sched.RemoveJob("prune")
	if sched.JobCount() != 0 {
		t.Errorf("JobCount = %d", sched.JobCount())
	}
	if _, ok := sched.Next("prune"); ok {
		t.Error("expected removed job to have no next run")
	}
}

func TestInvalidSchedule(t *testing.T) {
	sched := New(nil)
	err := sched.AddJob("prune", "invalid-cron", func(context.Context) error { return nil })
	if err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestStart_PassesContextAndStops(t *testing.T) {
	sched := New(nil)
	type key struct{}
	got := make(chan any, 4)
	sched.AddJob("probe", "@every 1s", func(ctx context.Context) error {
		got <- ctx.Value(key{})
		return errors.New("logged, not fatal")
	})

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "daemon"))
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	select {
	case v := <-got:
		if v != "daemon" {
			t.Errorf("job context value = %v", v)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
