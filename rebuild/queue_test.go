package rebuild

import (
	"context"
	"errors"
	"testing"
	"time"
)

type triggerFunc func(ctx context.Context) error

func (f triggerFunc) Trigger(ctx context.Context) error { return f(ctx) }

func statusesByReason(t *testing.T, l *JobLog) map[string]Status {
	t.Helper()
	jobs, err := l.Recent(context.Background(), 50)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	out := make(map[string]Status, len(jobs))
	for _, j := range jobs {
		out[j.Reason] = j.Status
	}
	return out
}

func TestQueueRecordsOutcomes(t *testing.T) {
	l := setupJobLog(t)
	q := NewQueue(triggerFunc(func(context.Context) error {
		return nil
	}), WithJobLog(l))
	q.Enqueue("create two-sum")
	q.Close()

	if got := statusesByReason(t, l)["create two-sum"]; got != StatusSucceeded {
		t.Errorf("status = %q, want succeeded", got)
	}
}

func TestQueueRecordsFailure(t *testing.T) {
	l := setupJobLog(t)
	q := NewQueue(triggerFunc(func(context.Context) error {
		return errors.New("webhook down")
	}), WithJobLog(l))
	q.Enqueue("update two-sum")
	q.Close()

	jobs, _ := l.Recent(context.Background(), 1)
	if len(jobs) != 1 || jobs[0].Status != StatusFailed || jobs[0].Error != "webhook down" {
		t.Errorf("jobs = %+v", jobs)
	}
}

func TestQueueEnqueueDoesNotBlockWhenFull(t *testing.T) {
	l := setupJobLog(t)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	q := NewQueue(triggerFunc(func(context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	}), WithJobLog(l), WithBuffer(1))

	q.Enqueue("first")
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not start")
	}

	done := make(chan struct{})
	go func() {
		q.Enqueue("second")
		q.Enqueue("third")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(release)
	q.Close()

	got := statusesByReason(t, l)
	want := map[string]Status{"first": StatusSucceeded, "second": StatusSucceeded, "third": StatusSkipped}
	for reason, status := range want {
		if got[reason] != status {
			t.Errorf("%s: status = %q, want %q", reason, got[reason], status)
		}
	}
}

func TestQueueEnqueueDoesNotWaitForJobLog(t *testing.T) {
	l := setupJobLog(t)
	l.db.SetMaxOpenConns(1)
	conn, err := l.db.Conn(context.Background())
	if err != nil {
		t.Fatalf("Conn failed: %v", err)
	}

	q := NewQueue(triggerFunc(func(context.Context) error { return nil }), WithJobLog(l))
	done := make(chan struct{})
	go func() {
		q.Enqueue("create two-sum")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue waited on the job log")
	}

	conn.Close()
	q.Close()
	if got := statusesByReason(t, l)["create two-sum"]; got != StatusSucceeded {
		t.Errorf("status = %q, want succeeded", got)
	}
}

func TestQueueEnqueueAfterClose(t *testing.T) {
	q := NewQueue(triggerFunc(func(context.Context) error { return nil }))
	q.Close()
	q.Enqueue("late")
	q.Close()
}

func TestDisabledRecordsSkipped(t *testing.T) {
	l := setupJobLog(t)
	Disabled{Log: l}.Enqueue("create a")
	Disabled{}.Enqueue("no log")

	if got := statusesByReason(t, l)["create a"]; got != StatusSkipped {
		t.Errorf("status = %q, want skipped", got)
	}
}
