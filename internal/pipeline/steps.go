package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/dvloznov/statement-recon/internal/docstore"
	"github.com/dvloznov/statement-recon/internal/logger"
	"github.com/dvloznov/statement-recon/internal/recon"
)

// PipelineStep represents a single step in the parsing pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	// SourceRef is the PDF to parse: an object name or a gs:// URI.
	SourceRef  string
	ObjectName string
	Filename   string
	BatchID    string

	PDFBytes   []byte
	Detail     *recon.StatementDetail
	Envelope   *recon.RawStatement
	ResultName string
}

// Step 1: FetchPDFStep reads the PDF from the document store.
type FetchPDFStep struct {
	Store  docstore.Store
	Bucket string
}

func (s *FetchPDFStep) Execute(ctx context.Context, state *PipelineState) error {
	name, err := docstore.ObjectName(state.SourceRef, s.Bucket)
	if err != nil {
		return fmt.Errorf("FetchPDFStep: %w", err)
	}
	data, err := s.Store.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("FetchPDFStep: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("FetchPDFStep: %s is empty", name)
	}
	state.ObjectName = name
	state.Filename = path.Base(name)
	state.PDFBytes = data
	return nil
}

// Step 2: ParseStatementStep calls the statement parser with the PDF.
type ParseStatementStep struct {
	Parser AIParser
}

func (s *ParseStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	detail, err := s.Parser.ParseStatement(ctx, state.PDFBytes)
	if err != nil {
		return fmt.Errorf("ParseStatementStep: %w", err)
	}
	if detail == nil {
		return fmt.Errorf("ParseStatementStep: %w", recon.ErrMissingDetail)
	}
	state.Detail = detail
	return nil
}

// Step 3: BuildEnvelopeStep wraps the detail with a batch id and filename.
type BuildEnvelopeStep struct {
	// NewBatchID defaults to uuid.NewString.
	NewBatchID func() string
}

func (s *BuildEnvelopeStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.BatchID == "" {
		newID := s.NewBatchID
		if newID == nil {
			newID = uuid.NewString
		}
		state.BatchID = newID()
	}
	state.Envelope = &recon.RawStatement{
		BatchID:  state.BatchID,
		Filename: resultFilename(state.Filename),
		Result:   state.Detail,
	}
	return nil
}

// Step 4: VerifyEnvelopeStep maps the envelope the way the loader will and
// logs the verdicts. Unreconciled accounts are reported, not rejected.
type VerifyEnvelopeStep struct{}

func (s *VerifyEnvelopeStep) Execute(ctx context.Context, state *PipelineState) error {
	m := recon.NewMapperWithIDs(func() string { return state.BatchID })
	row, err := m.MapStatement(*state.Envelope)
	if err != nil {
		return fmt.Errorf("VerifyEnvelopeStep: %w", err)
	}

	log := logger.FromContext(ctx)
	summary := recon.Summarize(row)
	if len(row.Accounts) == 0 {
		log.Warn().Str("batch_id", row.CaseID).Msg("Parsed statement has no accounts")
	}
	for _, acct := range row.Accounts {
		if v := recon.Verify(acct); !v.IsReconciled {
			log.Warn().
				Str("batch_id", row.CaseID).
				Str("account_number", acct.AccountNumber).
				Float64("difference", v.Difference).
				Msg("Parsed account does not reconcile")
		}
	}
	log.Info().
		Str("batch_id", row.CaseID).
		Str("period", row.PeriodLabel).
		Int("accounts", summary.Accounts).
		Int("reconciled", summary.Reconciled).
		Msg("Parsed statement verified")
	return nil
}

// Step 5: StoreResultStep writes the envelope next to the other parsing results.
type StoreResultStep struct {
	Store         docstore.Store
	ResultsPrefix string
}

func (s *StoreResultStep) Execute(ctx context.Context, state *PipelineState) error {
	data, err := json.MarshalIndent(state.Envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("StoreResultStep: marshal envelope: %w", err)
	}
	name := path.Join(s.ResultsPrefix, state.Envelope.Filename)
	if err := s.Store.Write(ctx, name, data, "application/json"); err != nil {
		return fmt.Errorf("StoreResultStep: %w", err)
	}
	state.ResultName = name
	return nil
}

// resultFilename derives "<base>_parsing_result.json" from a PDF filename.
func resultFilename(filename string) string {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	if base == "" {
		base = "statement"
	}
	return base + recon.ParsingResultSuffix
}
