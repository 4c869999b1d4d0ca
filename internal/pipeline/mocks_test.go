package pipeline_test

import (
	"context"

	"github.com/dvloznov/statement-recon/internal/recon"
)

// MockAIParser is a mock implementation of AIParser for testing.
type MockAIParser struct {
	ParseStatementFunc func(ctx context.Context, pdfBytes []byte) (*recon.StatementDetail, error)
	calls              int
}

func (m *MockAIParser) ParseStatement(ctx context.Context, pdfBytes []byte) (*recon.StatementDetail, error) {
	m.calls++
	if m.ParseStatementFunc != nil {
		return m.ParseStatementFunc(ctx, pdfBytes)
	}
	return &recon.StatementDetail{Accounts: []recon.RawAccount{}}, nil
}
