package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/statement-recon/internal/jobs"
	"github.com/dvloznov/statement-recon/internal/logger"
	"github.com/dvloznov/statement-recon/internal/observability/metrics"
)

// NewJobHandler returns a jobs.JobHandler that runs the parsing pipeline
// for ParseStatementJobs and records the stored result name on the job.
func NewJobHandler(deps Deps) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		parseJob, ok := job.(*jobs.ParseStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		ctx, log := logger.WithStrs(ctx, "job_id", parseJob.JobID, "source", parseJob.SourceURI)
		log.Info().Msg("Processing parse job")

		start := time.Now()
		state, err := ParseStatement(ctx, parseJob.SourceURI, parseJob.BatchID, deps)
		metrics.ObserveParseJob(err, time.Since(start))
		if err != nil {
			log.Error().Err(err).Msg("Pipeline execution failed")
			return err
		}

		parseJob.BatchID = state.BatchID
		parseJob.ResultName = state.ResultName
		return nil
	}
}
