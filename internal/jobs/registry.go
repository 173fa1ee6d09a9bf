package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"audio-digest/internal/domain"
)

// ErrNotFound is returned when a job id is unknown.
var ErrNotFound = errors.New("job not found")

// ErrQueueFull is returned when the submission queue has no capacity.
var ErrQueueFull = errors.New("job queue is full")

// ErrJobTerminal is returned when updating or cancelling a job that has
// already completed or failed.
var ErrJobTerminal = errors.New("job already finished")

// CancelMessage is recorded on jobs terminated by their owner.
const CancelMessage = "cancelled by owner"

// Registry owns all job records and the FIFO queue feeding the worker.
// It is the only shared mutable state in the pipeline; every mutation
// goes through its methods.
type Registry struct {
	mu    sync.RWMutex
	jobs  map[string]*domain.Job
	queue chan string
}

// NewRegistry creates a registry with a bounded FIFO queue.
func NewRegistry(queueSize int) *Registry {
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Registry{
		jobs:  make(map[string]*domain.Job),
		queue: make(chan string, queueSize),
	}
}

// Create records a new queued job and enqueues it for the worker.
func (r *Registry) Create(ownerID string, source domain.SourceKind, ref string, opts domain.ProcessingOptions) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	job := &domain.Job{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Source:    source,
		SourceRef: ref,
		Options:   opts,
		Status:    domain.JobStatusQueued,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	select {
	case r.queue <- job.ID:
	default:
		return domain.Job{}, ErrQueueFull
	}

	r.jobs[job.ID] = job
	return *job, nil
}

// Get returns a snapshot of a job.
func (r *Registry) Get(id string) (domain.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, false
	}
	return *job, true
}

// GetOwned returns a job only when it belongs to the given owner.
func (r *Registry) GetOwned(id, ownerID string) (domain.Job, bool) {
	job, ok := r.Get(id)
	if !ok || job.OwnerID != ownerID {
		return domain.Job{}, false
	}
	return job, true
}

// Dequeue exposes the FIFO queue to the single pipeline worker. Entries
// are job ids; the worker must re-read the record and skip jobs that are
// no longer queued (a cancelled job stays in the channel but is marked
// failed).
func (r *Registry) Dequeue() <-chan string {
	return r.queue
}

// MarkProcessing transitions a queued job to processing. It reports
// false when the job is not in queued state anymore, which the worker
// treats as "skip this entry".
func (r *Registry) MarkProcessing(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status != domain.JobStatusQueued {
		return false
	}

	job.Status = domain.JobStatusProcessing
	job.Progress = 0
	job.UpdatedAt = time.Now()
	return true
}

// SetProgress advances a processing job's progress. Progress never
// decreases and is never written after a terminal status.
func (r *Registry) SetProgress(id string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return ErrJobTerminal
	}

	if progress > 100 {
		progress = 100
	}
	if progress > job.Progress {
		job.Progress = progress
		job.UpdatedAt = time.Now()
	}
	return nil
}

// MarkCompleted moves a job to its successful terminal state.
func (r *Registry) MarkCompleted(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return ErrJobTerminal
	}

	now := time.Now()
	job.Status = domain.JobStatusCompleted
	job.Progress = 100
	job.Error = ""
	job.UpdatedAt = now
	job.CompletedAt = now
	return nil
}

// MarkFailed moves a job to its failed terminal state with a
// human-readable message.
func (r *Registry) MarkFailed(id, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return ErrJobTerminal
	}

	now := time.Now()
	job.Status = domain.JobStatusFailed
	job.Error = message
	job.UpdatedAt = now
	job.CompletedAt = now
	return nil
}

// Cancel terminates a job on behalf of its owner. Queued jobs are marked
// failed and skipped when the worker reaches their queue entry. A
// processing job is marked failed immediately, but the stage currently
// running is not interrupted; the worker notices the terminal status at
// the next stage boundary and discards any result. Finished jobs cannot
// be cancelled.
func (r *Registry) Cancel(id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.OwnerID != ownerID {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return ErrJobTerminal
	}

	now := time.Now()
	job.Status = domain.JobStatusFailed
	job.Error = CancelMessage
	job.UpdatedAt = now
	job.CompletedAt = now
	return nil
}
