package rebuild

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupJobLog(t *testing.T) *JobLog {
	t.Helper()
	l, err := OpenJobLog(filepath.Join(t.TempDir(), "data", "rebuild.db"))
	if err != nil {
		t.Fatalf("OpenJobLog failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestJobLogRecordFinishRecent(t *testing.T) {
	l := setupJobLog(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	l.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := l.Record(ctx, "create a", StatusQueued)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !first.FinishedAt.IsZero() {
		t.Error("queued job should not have a finish time")
	}
	if _, err := l.Record(ctx, "delete b", StatusSkipped); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := l.Finish(ctx, first.ID, StatusFailed, "boom"); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	jobs, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("Recent() returned %d jobs, want 2", len(jobs))
	}
	if jobs[0].Reason != "delete b" || jobs[0].Status != StatusSkipped {
		t.Errorf("jobs[0] = %+v, want newest first", jobs[0])
	}
	if jobs[1].ID != first.ID || jobs[1].Status != StatusFailed || jobs[1].Error != "boom" {
		t.Errorf("jobs[1] = %+v", jobs[1])
	}
	if jobs[1].FinishedAt.IsZero() {
		t.Error("finished job should carry a finish time")
	}

	limited, err := l.Recent(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("Recent(1) = %d jobs, %v", len(limited), err)
	}
}
