// Package inmemory provides a channel-backed job queue and a map-backed
// job store for single-instance deployments and tests.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/statement-recon/internal/jobs"
	"github.com/dvloznov/statement-recon/internal/logger"
)

// DefaultWorkers is the number of concurrent workers when none is given.
const DefaultWorkers = 2

// Queue distributes parse jobs to a fixed pool of workers. Failed jobs are
// re-published after a linear backoff until their retries run out.
type Queue struct {
	pending chan *jobs.ParseStatementJob
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex
	store   jobs.JobStore
	workers int
	closed  bool

	// Backoff is the delay before retry n is scheduled, multiplied by n.
	Backoff time.Duration
}

// NewQueue creates a queue holding up to bufferSize jobs before
// PublishParseStatement blocks. store may be nil.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		pending: make(chan *jobs.ParseStatementJob, bufferSize),
		done:    make(chan struct{}),
		store:   store,
		workers: workers,
		Backoff: time.Second,
	}
}

func (q *Queue) PublishParseStatement(ctx context.Context, job *jobs.ParseStatementJob) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return jobs.ErrQueueClosed
	}

	job.Prepare(time.Now())
	if err := q.save(ctx, job); err != nil {
		return fmt.Errorf("PublishParseStatement: %w", err)
	}

	// The send may block on a full buffer; Stop closes done to release it.
	select {
	case q.pending <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return jobs.ErrQueueClosed
	}
}

func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return jobs.ErrQueueClosed
	}

	q.wg.Add(q.workers)
	for range q.workers {
		go q.work(ctx, handler)
	}
	return nil
}

func (q *Queue) work(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			return
		case job := <-q.pending:
			q.run(ctx, job, handler)
		}
	}
}

// run performs one attempt of job. The stored copy is updated before and
// after the attempt; a retry is scheduled on a separate copy.
func (q *Queue) run(ctx context.Context, job *jobs.ParseStatementJob, handler jobs.JobHandler) {
	ctx, log := logger.WithStrs(ctx, "job_id", job.JobID, "source", job.SourceURI)

	job.Begin(time.Now())
	_ = q.save(ctx, job)

	err := handler(ctx, job)
	retry := job.Finish(err, time.Now())
	_ = q.save(ctx, job)

	switch {
	case err == nil:
		log.Info().Str("result", job.ResultName).Msg("Job completed")
	case retry:
		log.Warn().Err(err).Int("retry", job.RetryCount).Msg("Job failed, scheduling retry")
		q.retryLater(ctx, *job)
	default:
		log.Error().Err(err).Int("retries", job.RetryCount).Msg("Job failed permanently")
	}
}

func (q *Queue) retryLater(ctx context.Context, job jobs.ParseStatementJob) {
	time.AfterFunc(time.Duration(job.RetryCount)*q.Backoff, func() {
		job.Requeue()
		if err := q.PublishParseStatement(ctx, &job); err != nil {
			job.Status = jobs.JobStatusFailed
			job.Error = err.Error()
			_ = q.save(context.Background(), &job)
		}
	})
}

func (q *Queue) save(ctx context.Context, job *jobs.ParseStatementJob) error {
	if q.store == nil {
		return nil
	}
	return q.store.SaveJob(ctx, job)
}

// Stop closes the queue and waits for in-flight jobs or ctx, whichever
// comes first. Jobs still buffered are abandoned.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
