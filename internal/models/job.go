package models

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job statuses.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

// Event kinds streamed to job watchers.
const (
	EventProgress = "progress"
	EventDetail   = "detail"
)

// Event is a single progress update or free-text detail line.
type Event struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Percent int    `json:"percent,omitempty"`
}

// JobStatus is the serialisable state of a job.
type JobStatus struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"` // "validation"
	TenantID   string     `json:"tenant_id"`
	Status     string     `json:"status"`
	Percent    int        `json:"percent"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Job represents an async operation (validation runs).
type Job struct {
	JobStatus
	events []Event
	cancel func()
	mu     sync.Mutex
}

// AppendLog adds a free-text detail line to the job output.
func (j *Job) AppendLog(line string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, Event{Kind: EventDetail, Message: line})
}

// SetProgress records a progress update. Percent never goes backwards.
func (j *Job) SetProgress(message string, percent int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if percent < j.Percent {
		percent = j.Percent
	}
	if percent > 100 {
		percent = 100
	}
	j.Percent = percent
	j.Message = message
	j.events = append(j.events, Event{Kind: EventProgress, Message: message, Percent: percent})
}

// EventsSince returns events starting from the given index.
func (j *Job) EventsSince(offset int) []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	if offset >= len(j.events) {
		return nil
	}
	events := make([]Event, len(j.events)-offset)
	copy(events, j.events[offset:])
	return events
}

// Snapshot returns a copy of the job's status fields, safe to serialise.
func (j *Job) Snapshot() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.JobStatus
}

// CurrentStatus returns the job status.
func (j *Job) CurrentStatus() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status
}

// Done reports whether the job reached a terminal status.
func (j *Job) Done() bool {
	return j.CurrentStatus() != JobRunning
}

// SetCancel registers the function that stops the job's background work.
func (j *Job) SetCancel(cancel func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancel = cancel
}

// Cancel signals the background work to stop and marks the job cancelled.
func (j *Job) Cancel() {
	j.mu.Lock()
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	j.finish(JobCancelled, "")
}

// Complete marks the job as completed.
func (j *Job) Complete() {
	j.finish(JobCompleted, "")
}

// Fail marks the job as failed with an error message.
func (j *Job) Fail(err string) {
	j.finish(JobFailed, err)
}

// finish moves a running job to a terminal status; later calls are ignored.
func (j *Job) finish(status, err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != JobRunning {
		return
	}
	j.Status = status
	j.Error = err
	now := time.Now()
	j.FinishedAt = &now
}

// JobStore is an in-memory thread-safe store for jobs.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create adds a new job, assigning it a UUID.
func (s *JobStore) Create(jobType, tenantID string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &Job{
		JobStatus: JobStatus{
			ID:        uuid.New().String(),
			Type:      jobType,
			TenantID:  tenantID,
			Status:    JobRunning,
			StartedAt: time.Now(),
		},
		events: []Event{},
	}
	s.jobs[j.ID] = j
	return j
}

// Get returns a job by ID.
func (s *JobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// List returns all jobs, most recent first.
func (s *JobStore) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, j)
	}
	sort.Slice(result, func(a, b int) bool {
		return result[a].StartedAt.After(result[b].StartedAt)
	})
	return result
}
