// Package jobs defines asynchronous statement parsing jobs and the
// publisher, consumer and store contracts around them.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrJobNotFound is returned by JobStore lookups for unknown ids.
	ErrJobNotFound = errors.New("job not found")
	// ErrQueueClosed is returned when publishing to or starting a stopped queue.
	ErrQueueClosed = errors.New("queue is closed")
)

type JobType string

const JobTypeParseStatement JobType = "parse_statement"

// JobStatus is the lifecycle state of a job:
// pending -> running -> completed | retrying -> pending ... | failed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// DefaultMaxRetries applies when a job is published without MaxRetries.
const DefaultMaxRetries = 3

// ParseStatementJob asks the parsing agent to turn one statement PDF into
// a parsing result.
type ParseStatementJob struct {
	JobID string `json:"job_id"`

	// SourceURI is the PDF to parse: a gs:// URI or an object name.
	SourceURI string `json:"source_uri"`

	// BatchID becomes the case id of the parsing result. Empty means
	// one is generated when the job runs.
	BatchID string `json:"batch_id,omitempty"`

	// ResultName is the object name of the stored parsing result.
	ResultName string `json:"result_name,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the message of the last failed attempt.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the minimal view of a job a JobHandler receives.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ParseStatementJob) GetID() string        { return j.JobID }
func (j *ParseStatementJob) GetType() JobType     { return JobTypeParseStatement }
func (j *ParseStatementJob) GetStatus() JobStatus { return j.Status }

// Prepare fills the id, status, creation time and retry budget of a job
// about to be published. Fields already set are kept.
func (j *ParseStatementJob) Prepare(now time.Time) {
	if j.JobID == "" {
		j.JobID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	if j.MaxRetries == 0 {
		j.MaxRetries = DefaultMaxRetries
	}
}

// Begin marks the start of an attempt.
func (j *ParseStatementJob) Begin(now time.Time) {
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.CompletedAt = nil
}

// Finish records the outcome of an attempt and reports whether the job
// has retries left.
func (j *ParseStatementJob) Finish(err error, now time.Time) bool {
	j.CompletedAt = &now
	if err == nil {
		j.Status = JobStatusCompleted
		j.Error = ""
		return false
	}

	j.Error = err.Error()
	if j.RetryCount >= j.MaxRetries {
		j.Status = JobStatusFailed
		return false
	}
	j.RetryCount++
	j.Status = JobStatusRetrying
	return true
}

// Requeue resets a retrying job so it can be published again.
func (j *ParseStatementJob) Requeue() {
	j.Status = JobStatusPending
	j.StartedAt = nil
	j.CompletedAt = nil
}

type Publisher interface {
	// PublishParseStatement assigns defaults via Prepare, stores the job
	// and enqueues it.
	PublishParseStatement(ctx context.Context, job *ParseStatementJob) error
	Close() error
}

type Consumer interface {
	// Start launches workers that call handler for each job.
	Start(ctx context.Context, handler JobHandler) error
	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error triggers a retry while
// the job has retries left.
type JobHandler func(ctx context.Context, job Job) error

// JobStore persists job state.
type JobStore interface {
	SaveJob(ctx context.Context, job *ParseStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ParseStatementJob, error)

	// ListJobs retrieves jobs, newest first, with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseStatementJob, error)

	// CountByStatus tallies jobs per status, optionally within one batch.
	CountByStatus(ctx context.Context, batchID string) (map[JobStatus]int, error)
}

// JobFilter narrows ListJobs. Empty fields match every job.
type JobFilter struct {
	BatchID string
	Status  JobStatus
	Limit   int
	Offset  int
}
