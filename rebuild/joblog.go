package rebuild

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status is the state of a rebuild job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Job is one recorded rebuild request.
type Job struct {
	ID         string
	Reason     string
	Status     Status
	Error      string
	CreatedAt  time.Time
	FinishedAt time.Time
}

// JobLog records rebuild jobs in SQLite.
type JobLog struct {
	db  *sql.DB
	now func() time.Time
}

// OpenJobLog opens (or creates) the database at path and ensures the
// schema exists.
func OpenJobLog(path string) (*JobLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the dashboard read while the worker writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	l := &JobLog{db: db, now: time.Now}
	if err := l.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database.
func (l *JobLog) Close() error {
	return l.db.Close()
}

func (l *JobLog) ensureSchema() error {
	_, err := l.db.Exec(`
CREATE TABLE IF NOT EXISTS rebuild_jobs (
    id TEXT PRIMARY KEY,
    reason TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    finished_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS rebuild_jobs_created ON rebuild_jobs (created_at);
`)
	return err
}

// Record inserts a new job.
func (l *JobLog) Record(ctx context.Context, reason string, status Status) (Job, error) {
	job := Job{
		ID:        uuid.NewString(),
		Reason:    reason,
		Status:    status,
		CreatedAt: l.now().UTC(),
	}
	finished := ""
	if status != StatusQueued {
		job.FinishedAt = job.CreatedAt
		finished = formatTime(job.FinishedAt)
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO rebuild_jobs (id, reason, status, error, created_at, finished_at) VALUES (?, ?, ?, '', ?, ?)`,
		job.ID, job.Reason, string(job.Status), formatTime(job.CreatedAt), finished)
	if err != nil {
		return Job{}, fmt.Errorf("record rebuild job: %w", err)
	}
	return job, nil
}

// Finish sets the final status of a job.
func (l *JobLog) Finish(ctx context.Context, id string, status Status, errMsg string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE rebuild_jobs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), errMsg, formatTime(l.now().UTC()), id)
	if err != nil {
		return fmt.Errorf("finish rebuild job: %w", err)
	}
	return nil
}

// Recent returns up to n jobs, newest first.
func (l *JobLog) Recent(ctx context.Context, n int) ([]Job, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, reason, status, error, created_at, finished_at FROM rebuild_jobs ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var status, created, finished string
		if err := rows.Scan(&j.ID, &j.Reason, &status, &j.Error, &created, &finished); err != nil {
			return nil, err
		}
		j.Status = Status(status)
		j.CreatedAt = parseTime(created)
		j.FinishedAt = parseTime(finished)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// timeLayout has fixed width so stored values sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
