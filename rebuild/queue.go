package rebuild

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/solnotes/logging"
)

// Queue runs rebuilds on a single background worker. Enqueue never blocks.
type Queue struct {
	trigger Trigger
	log     *JobLog
	logger  logging.Logger
	timeout time.Duration

	mu      sync.Mutex
	closed  bool
	jobs    chan queued
	done    chan struct{}
	dropped sync.WaitGroup
}

type queued struct {
	id     string
	reason string
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithJobLog records every job in l.
func WithJobLog(l *JobLog) QueueOption {
	return func(q *Queue) { q.log = l }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) QueueOption {
	return func(q *Queue) { q.logger = logging.OrNoOp(l) }
}

// WithBuffer sets the queue capacity.
func WithBuffer(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.jobs = make(chan queued, n)
		}
	}
}

// WithTimeout bounds each trigger call.
func WithTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewQueue creates a queue and starts its worker. Call Close to stop it.
func NewQueue(trigger Trigger, opts ...QueueOption) *Queue {
	q := &Queue{
		trigger: trigger,
		logger:  logging.NoOp(),
		timeout: 30 * time.Second,
		jobs:    make(chan queued, 16),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.run()
	return q
}

// Enqueue schedules a rebuild. Job log writes happen off the caller's
// goroutine. When the queue is full or closed the request is dropped and
// logged.
func (q *Queue) Enqueue(reason string) {
	job := queued{reason: reason}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("rebuild dropped", "reason", reason, "why", "queue closed")
		return
	}
	select {
	case q.jobs <- job:
		q.logger.Debug("rebuild queued", "reason", reason)
	default:
		q.logger.Warn("rebuild dropped", "reason", reason, "why", "queue full")
		q.dropped.Add(1)
		go func() {
			defer q.dropped.Done()
			q.finish(q.record(job), StatusSkipped, "queue full")
		}()
	}
}

func (q *Queue) record(job queued) queued {
	if q.log == nil {
		return job
	}
	rec, err := q.log.Record(context.Background(), job.reason, StatusQueued)
	if err != nil {
		q.logger.Error("record rebuild job", "error", err)
		return job
	}
	job.id = rec.ID
	return job
}

// Close stops accepting jobs and waits for queued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	<-q.done
	q.dropped.Wait()
}

func (q *Queue) run() {
	defer close(q.done)
	for job := range q.jobs {
		job = q.record(job)
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := q.trigger.Trigger(ctx)
		cancel()
		if err != nil {
			q.logger.Error("rebuild failed", "reason", job.reason, "error", err)
			q.finish(job, StatusFailed, err.Error())
			continue
		}
		q.logger.Info("rebuild triggered", "reason", job.reason)
		q.finish(job, StatusSucceeded, "")
	}
}

func (q *Queue) finish(job queued, status Status, msg string) {
	if q.log == nil || job.id == "" {
		return
	}
	if err := q.log.Finish(context.Background(), job.id, status, msg); err != nil {
		q.logger.Error("finish rebuild job", "error", err)
	}
}

// Disabled stands in for a Queue outside production. Requests are only
// recorded as skipped.
type Disabled struct {
	Log    *JobLog
	Logger logging.Logger
}

// Enqueue records the request as skipped.
func (d Disabled) Enqueue(reason string) {
	logging.OrNoOp(d.Logger).Debug("rebuild skipped outside production", "reason", reason)
	if d.Log == nil {
		return
	}
	if _, err := d.Log.Record(context.Background(), reason, StatusSkipped); err != nil {
		logging.OrNoOp(d.Logger).Error("record rebuild job", "error", err)
	}
}
