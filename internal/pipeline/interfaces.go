package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/dvloznov/statement-recon/internal/recon"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// AIParser provides an interface for AI-powered statement parsing.
// This interface enables mocking and testing of the parsing step.
type AIParser interface {
	// ParseStatement sends PDF bytes to a model and returns the statement detail.
	ParseStatement(ctx context.Context, pdfBytes []byte) (*recon.StatementDetail, error)
}

// GeminiAIParser is the concrete implementation of AIParser that uses Gemini.
type GeminiAIParser struct {
	client *genai.Client
	model  string
}

// NewGeminiAIParser creates a parser with a shared GenAI client. Credentials
// and backend selection come from the standard GOOGLE_* environment.
func NewGeminiAIParser(ctx context.Context, model string) (*GeminiAIParser, error) {
	if model == "" {
		model = DefaultModelName
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiAIParser: create genai client: %w", err)
	}
	return &GeminiAIParser{client: client, model: model}, nil
}

// ParseStatement implements AIParser.
func (p *GeminiAIParser) ParseStatement(ctx context.Context, pdfBytes []byte) (*recon.StatementDetail, error) {
	return parseStatementWithModel(ctx, p.client, p.model, pdfBytes)
}

// ErrParserUnavailable wraps failures to construct the statement parser.
var ErrParserUnavailable = errors.New("statement parser unavailable")

// LazyParser builds its parser on first use. A failed build is retried on
// the next call, so a missing credential only affects parsing.
type LazyParser struct {
	build func(ctx context.Context) (AIParser, error)

	mu     sync.Mutex
	parser AIParser
}

// NewLazyParser wraps build.
func NewLazyParser(build func(ctx context.Context) (AIParser, error)) *LazyParser {
	return &LazyParser{build: build}
}

// NewLazyGeminiParser defers NewGeminiAIParser until the first parse.
func NewLazyGeminiParser(model string) *LazyParser {
	return NewLazyParser(func(ctx context.Context) (AIParser, error) {
		return NewGeminiAIParser(ctx, model)
	})
}

// Ready builds the parser if needed and reports whether that succeeded.
func (l *LazyParser) Ready(ctx context.Context) error {
	_, err := l.get(ctx)
	return err
}

func (l *LazyParser) ParseStatement(ctx context.Context, pdfBytes []byte) (*recon.StatementDetail, error) {
	p, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return p.ParseStatement(ctx, pdfBytes)
}

func (l *LazyParser) get(ctx context.Context) (AIParser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.parser != nil {
		return l.parser, nil
	}
	p, err := l.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParserUnavailable, err)
	}
	l.parser = p
	return p, nil
}

var (
	_ AIParser = (*GeminiAIParser)(nil)
	_ AIParser = (*LazyParser)(nil)
)
