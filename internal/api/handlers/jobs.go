package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-recon/internal/api/middleware"
	"github.com/dvloznov/statement-recon/internal/docstore"
	"github.com/dvloznov/statement-recon/internal/jobs"
)

// StatementsHandler enqueues statement parsing.
type StatementsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	bucket    string
	ready     func(ctx context.Context) error
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. A nil ready treats
// the parser as always available.
func NewStatementsHandler(publisher jobs.Publisher, store jobs.JobStore, bucket string, ready func(ctx context.Context) error, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		publisher: publisher,
		store:     store,
		bucket:    bucket,
		ready:     ready,
		log:       log,
	}
}

// EnqueueParsing handles POST /api/statements/parse
func (h *StatementsHandler) EnqueueParsing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceURI string `json:"source_uri"`
		BatchID   string `json:"batch_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.SourceURI = strings.TrimSpace(req.SourceURI)
	if req.SourceURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "source_uri is required")
		return
	}
	if _, err := docstore.ObjectName(req.SourceURI, h.bucket); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	if h.ready != nil {
		if err := h.ready(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Statement parser unavailable")
			middleware.WriteError(w, http.StatusServiceUnavailable, "Statement parser unavailable")
			return
		}
	}

	job := &jobs.ParseStatementJob{
		SourceURI: req.SourceURI,
		BatchID:   strings.TrimSpace(req.BatchID),
	}

	if err := h.publisher.PublishParseStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue parsing job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parsing job")
		return
	}
	jobID := job.JobID

	h.log.Info().Str("job_id", jobID).Str("source", req.SourceURI).Msg("Parsing job enqueued")

	saved, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		middleware.WriteJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
		return
	}
	middleware.WriteJSON(w, http.StatusAccepted, saved)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := mux.Vars(r)["id"]

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		BatchID: query.Get("batch_id"),
		Status:  jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	byStatus, err := h.store.CountByStatus(ctx, filter.BatchID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":      jobsList,
		"count":     len(jobsList),
		"by_status": byStatus,
	})
}
