package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/statement-recon/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	job := &jobs.ParseStatementJob{JobID: "j1", SourceURI: "gs://b/raw/a.pdf", Status: jobs.JobStatusPending}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	job.Status = jobs.JobStatusRunning
	got, err := s.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("store must keep its own copy, got status %s", got.Status)
	}

	if _, err := s.GetJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
	if err := s.SaveJob(ctx, &jobs.ParseStatementJob{}); err == nil {
		t.Error("expected error for job without ID")
	}
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	for i, st := range []jobs.JobStatus{jobs.JobStatusCompleted, jobs.JobStatusFailed, jobs.JobStatusCompleted} {
		_ = s.SaveJob(ctx, &jobs.ParseStatementJob{
			JobID:     string(rune('a' + i)),
			BatchID:   "case-1",
			Status:    st,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	all, _ := s.ListJobs(ctx, jobs.JobFilter{})
	if len(all) != 3 || all[0].JobID != "c" || all[2].JobID != "a" {
		t.Errorf("expected newest first, got %v", ids(all))
	}

	completed, _ := s.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if len(completed) != 2 {
		t.Errorf("expected 2 completed jobs, got %d", len(completed))
	}

	page, _ := s.ListJobs(ctx, jobs.JobFilter{Offset: 1, Limit: 1})
	if len(page) != 1 || page[0].JobID != "b" {
		t.Errorf("unexpected page %v", ids(page))
	}

	none, _ := s.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", none)
	}
}

func TestStore_CountByStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_ = s.SaveJob(ctx, &jobs.ParseStatementJob{JobID: "a", BatchID: "b1", Status: jobs.JobStatusCompleted})
	_ = s.SaveJob(ctx, &jobs.ParseStatementJob{JobID: "b", BatchID: "b1", Status: jobs.JobStatusFailed})
	_ = s.SaveJob(ctx, &jobs.ParseStatementJob{JobID: "c", BatchID: "b2", Status: jobs.JobStatusCompleted})

	all, err := s.CountByStatus(ctx, "")
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if all[jobs.JobStatusCompleted] != 2 || all[jobs.JobStatusFailed] != 1 {
		t.Errorf("unexpected counts %v", all)
	}

	b2, _ := s.CountByStatus(ctx, "b2")
	if len(b2) != 1 || b2[jobs.JobStatusCompleted] != 1 {
		t.Errorf("unexpected batch counts %v", b2)
	}
}

func ids(list []*jobs.ParseStatementJob) []string {
	out := make([]string, len(list))
	for i, j := range list {
		out[i] = j.JobID
	}
	return out
}
