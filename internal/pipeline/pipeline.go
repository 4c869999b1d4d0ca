// Package pipeline implements the parsing agent: it turns a statement PDF
// in the document store into a parsing result envelope stored alongside it.
package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/dvloznov/statement-recon/internal/docstore"
	"github.com/dvloznov/statement-recon/internal/logger"
)

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially, stopping at the
// first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	for i, step := range p.steps {
		start := time.Now()
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
		log.Debug().
			Int("step", i+1).
			Str("name", stepName(step)).
			Dur("elapsed", time.Since(start)).
			Msg("Pipeline step completed")
	}
	return nil
}

// Deps are the collaborators of the parsing pipeline.
type Deps struct {
	Store         docstore.Store
	Bucket        string
	Parser        AIParser
	ResultsPrefix string
	NewBatchID    func() string
}

// NewStatementParsingPipeline creates the standard five-step pipeline.
func NewStatementParsingPipeline(deps Deps) *Pipeline {
	return NewPipeline(
		&FetchPDFStep{Store: deps.Store, Bucket: deps.Bucket},
		&ParseStatementStep{Parser: deps.Parser},
		&BuildEnvelopeStep{NewBatchID: deps.NewBatchID},
		&VerifyEnvelopeStep{},
		&StoreResultStep{Store: deps.Store, ResultsPrefix: deps.ResultsPrefix},
	)
}

// ParseStatement runs the standard pipeline for one PDF and returns the
// final state. batchID may be empty to have one generated.
func ParseStatement(ctx context.Context, sourceRef, batchID string, deps Deps) (*PipelineState, error) {
	state := &PipelineState{SourceRef: sourceRef, BatchID: batchID}
	if err := NewStatementParsingPipeline(deps).Execute(ctx, state); err != nil {
		return state, fmt.Errorf("ParseStatement: %s: %w", sourceRef, err)
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("source", sourceRef).
		Str("batch_id", state.BatchID).
		Str("result", state.ResultName).
		Msg("Statement parsed")
	return state, nil
}

func stepName(step PipelineStep) string {
	t := reflect.TypeOf(step)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
