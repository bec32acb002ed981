package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitForStatus(t *testing.T, tracker *Tracker, id string, want Status) Job {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			job, _ := tracker.Get(id)
			t.Fatalf("job never reached %s, last status %s", want, job.Status)
			return Job{}
		default:
			job, err := tracker.Get(id)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if job.Status == want {
				return job
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestSubmit_ReturnsImmediately(t *testing.T) {
	tracker := NewTracker(context.Background(), 0)
	defer tracker.Close()

	release := make(chan struct{})
	id := tracker.Submit(func(ctx context.Context) (any, error) {
		<-release
		return "done", nil
	})

	job, err := tracker.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.Status != StatusPending && job.Status != StatusProcessing {
		t.Errorf("status right after submit = %s, want pending or processing", job.Status)
	}
	close(release)

	job = waitForStatus(t, tracker, id, StatusCompleted)
	if job.Result != "done" {
		t.Errorf("Result = %v, want %q", job.Result, "done")
	}
	if job.Error != "" {
		t.Errorf("Error = %q, want empty on success", job.Error)
	}
}

func TestSubmit_Failure(t *testing.T) {
	tracker := NewTracker(context.Background(), 0)
	defer tracker.Close()

	id := tracker.Submit(func(ctx context.Context) (any, error) {
		return nil, errors.New("all providers exhausted")
	})

	job := waitForStatus(t, tracker, id, StatusFailed)
	if job.Error != "all providers exhausted" {
		t.Errorf("Error = %q", job.Error)
	}
	if job.Result != nil {
		t.Errorf("Result = %v, want nil on failure", job.Result)
	}
}

func TestGet_Unknown(t *testing.T) {
	tracker := NewTracker(context.Background(), 0)
	defer tracker.Close()

	if _, err := tracker.Get("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClose_CancelsInFlightWork(t *testing.T) {
	tracker := NewTracker(context.Background(), 0)

	started := make(chan struct{})
	id := tracker.Submit(func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started
	tracker.Close()

	job, err := tracker.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.Status != StatusFailed {
		t.Errorf("status after Close() = %s, want failed", job.Status)
	}
}

func TestRetention_SweepsFinishedJobs(t *testing.T) {
	tracker := NewTracker(context.Background(), 20*time.Millisecond)
	defer tracker.Close()

	id := tracker.Submit(func(ctx context.Context) (any, error) {
		return "done", nil
	})
	waitForStatus(t, tracker, id, StatusCompleted)

	deadline := time.After(2 * time.Second)
	for {
		if _, err := tracker.Get(id); errors.Is(err, ErrNotFound) {
			return
		}
		select {
		case <-deadline:
			t.Fatal("finished job was never swept")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestRetention_NegativeDisablesSweep(t *testing.T) {
	tracker := NewTracker(context.Background(), -1)
	defer tracker.Close()

	id := tracker.Submit(func(ctx context.Context) (any, error) {
		return "done", nil
	})
	waitForStatus(t, tracker, id, StatusCompleted)

	time.Sleep(50 * time.Millisecond)
	if _, err := tracker.Get(id); err != nil {
		t.Fatalf("Get() after disabled sweep: %v", err)
	}
}

func TestConcurrentSubmits(t *testing.T) {
	tracker := NewTracker(context.Background(), 0)
	defer tracker.Close()

	ids := make([]string, 20)
	for i := range ids {
		i := i
		ids[i] = tracker.Submit(func(ctx context.Context) (any, error) {
			return i, nil
		})
	}

	seen := map[string]bool{}
	for i, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate job id %s", id)
		}
		seen[id] = true
		job := waitForStatus(t, tracker, id, StatusCompleted)
		if job.Result != i {
			t.Errorf("job %d result = %v", i, job.Result)
		}
	}
}
