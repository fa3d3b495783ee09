package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAddJobRejectsBadCron(t *testing.T) {
	ts := NewTaskScheduler(context.Background())
	if _, err := ts.AddJob("bad", "every day", 0, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for invalid cron")
	}
	if len(ts.GetJobs()) != 0 {
		t.Error("invalid job must not be registered")
	}
}

func TestAddJobComputesNextRun(t *testing.T) {
	ts := NewTaskScheduler(context.Background())
	job, err := ts.AddJob("auth_keepalive", "@every 30m", 0, func(context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != JobStatusScheduled {
		t.Errorf("Status = %s, want scheduled", job.Status)
	}
	if !job.NextRun.After(time.Now()) {
		t.Errorf("NextRun = %v, want in the future", job.NextRun)
	}
}

func TestRunJobRecordsOutcome(t *testing.T) {
	ts := NewTaskScheduler(context.Background())
	fail := true
	job, err := ts.AddJob("flaky", "0 * * * *", time.Second, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("job timeout should set a deadline")
		}
		if fail {
			return errors.New("login page did not load")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := ts.RunJob(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != JobStatusFailed || got.FailCount != 1 || got.LastError == "" {
		t.Errorf("after failure: %+v", got)
	}

	fail = false
	got, _ = ts.RunJob(job.ID)
	if got.Status != JobStatusCompleted || got.RunCount != 2 || got.LastError != "" {
		t.Errorf("after success: %+v", got)
	}
}

func TestRemoveJob(t *testing.T) {
	ts := NewTaskScheduler(context.Background())
	job, _ := ts.AddJob("x", "@hourly", 0, func(context.Context) error { return nil })

	if err := ts.RemoveJob(job.ID); err != nil {
		t.Fatal(err)
	}
	if err := ts.RemoveJob(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
	if _, err := ts.RunJob(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}
