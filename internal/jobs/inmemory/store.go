package inmemory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dvloznov/statement-recon/internal/jobs"
)

// Store keeps parse jobs in a map guarded by a RWMutex. Callers always
// receive copies. Data is lost on restart.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]jobs.ParseStatementJob
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]jobs.ParseStatementJob)}
}

func (s *Store) SaveJob(ctx context.Context, job *jobs.ParseStatementJob) error {
	if job == nil || job.JobID == "" {
		return errors.New("SaveJob: job ID is required")
	}
	s.mu.Lock()
	s.jobs[job.JobID] = *job
	s.mu.Unlock()
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ParseStatementJob, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("GetJob: %w: %s", jobs.ErrJobNotFound, jobID)
	}
	return &job, nil
}

// ListJobs returns matching jobs newest first, ties broken by id.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ParseStatementJob, error) {
	s.mu.RLock()
	matched := make([]jobs.ParseStatementJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if matches(job, filter) {
			matched = append(matched, job)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b jobs.ParseStatementJob) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.JobID, b.JobID)
	})

	lo := min(max(filter.Offset, 0), len(matched))
	hi := len(matched)
	if filter.Limit > 0 {
		hi = min(lo+filter.Limit, hi)
	}

	result := make([]*jobs.ParseStatementJob, 0, hi-lo)
	for i := lo; i < hi; i++ {
		result = append(result, &matched[i])
	}
	return result, nil
}

func (s *Store) CountByStatus(ctx context.Context, batchID string) (map[jobs.JobStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[jobs.JobStatus]int)
	for _, job := range s.jobs {
		if matches(job, jobs.JobFilter{BatchID: batchID}) {
			counts[job.Status]++
		}
	}
	return counts, nil
}

func matches(job jobs.ParseStatementJob, filter jobs.JobFilter) bool {
	if filter.BatchID != "" && job.BatchID != filter.BatchID {
		return false
	}
	return filter.Status == "" || job.Status == filter.Status
}

var _ jobs.JobStore = (*Store)(nil)
