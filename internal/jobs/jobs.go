// Package jobs tracks asynchronous analysis jobs. Audio analysis can
// take tens of seconds across fallback chains, so the HTTP layer
// accepts work, returns a job id immediately, and lets clients poll.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/metrics"
)

// Status is a job lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrNotFound is returned for unknown job ids.
var ErrNotFound = errors.New("job not found")

// Job is a point-in-time snapshot of one tracked job.
type Job struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Work is the unit a job executes. The returned value becomes the
// job's result on success; the error message becomes the job's error
// on failure.
type Work func(ctx context.Context) (any, error)

// Tracker runs jobs in the background and serves status snapshots.
// Completed jobs are retained for retention and then swept, so a
// slow-polling client still sees its result.
type Tracker struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	retention time.Duration
	log       zerolog.Logger
}

// DefaultRetention is how long finished jobs stay queryable.
const DefaultRetention = 30 * time.Minute

// NewTracker creates a tracker. Jobs run under a context derived from
// ctx; canceling it cancels in-flight work. A retention of zero uses
// DefaultRetention; a negative retention disables sweeping entirely,
// leaving expiry to external housekeeping.
func NewTracker(ctx context.Context, retention time.Duration) *Tracker {
	if retention == 0 {
		retention = DefaultRetention
	}
	jctx, cancel := context.WithCancel(ctx)
	t := &Tracker{
		jobs:      make(map[string]*Job),
		ctx:       jctx,
		cancel:    cancel,
		retention: retention,
		log:       logging.WithComponent("jobs"),
	}
	if retention > 0 {
		t.wg.Add(1)
		go t.sweep()
	}
	return t
}

// Submit registers work and returns its job id without waiting for the
// work to start.
func (t *Tracker) Submit(work Work) string {
	id := uuid.NewString()
	now := time.Now().UTC()

	t.mu.Lock()
	t.jobs[id] = &Job{ID: id, Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	t.mu.Unlock()

	metrics.Default.JobsSubmitted.Inc()
	t.log.Debug().Str("job_id", id).Msg("job submitted")

	t.wg.Add(1)
	go t.run(id, work)
	return id
}

// Get returns a snapshot of the job with the given id.
func (t *Tracker) Get(id string) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *job, nil
}

// Close cancels in-flight jobs and waits for them to settle.
func (t *Tracker) Close() {
	t.cancel()
	t.wg.Wait()
}

func (t *Tracker) run(id string, work Work) {
	defer t.wg.Done()

	t.transition(id, func(j *Job) { j.Status = StatusProcessing })

	result, err := work(t.ctx)
	if err != nil {
		metrics.Default.JobsFailed.Inc()
		t.log.Warn().Str("job_id", id).Err(err).Msg("job failed")
		t.transition(id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
		})
		return
	}

	metrics.Default.JobsCompleted.Inc()
	t.log.Debug().Str("job_id", id).Msg("job completed")
	t.transition(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Result = result
	})
}

func (t *Tracker) transition(id string, mutate func(*Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[id]; ok {
		mutate(job)
		job.UpdatedAt = time.Now().UTC()
	}
}

// sweep drops finished jobs older than the retention window.
func (t *Tracker) sweep() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.retention / 2)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-t.retention)
			t.mu.Lock()
			for id, job := range t.jobs {
				done := job.Status == StatusCompleted || job.Status == StatusFailed
				if done && job.UpdatedAt.Before(cutoff) {
					delete(t.jobs, id)
				}
			}
			t.mu.Unlock()
		}
	}
}
