// Package app builds the collaborators shared by the API server and the
// CLI from a validated configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-recon/internal/config"
	"github.com/dvloznov/statement-recon/internal/docstore"
	"github.com/dvloznov/statement-recon/internal/enrichment"
	infraBQ "github.com/dvloznov/statement-recon/internal/infra/bigquery"
	"github.com/dvloznov/statement-recon/internal/pipeline"
	"github.com/dvloznov/statement-recon/internal/statements"
)

// App holds the configured collaborators. Call Close when done.
type App struct {
	Config     *config.Config
	Log        zerolog.Logger
	Store      docstore.Store
	Enrichment enrichment.Store

	// Parser defaults to a lazily built Gemini parser.
	Parser pipeline.AIParser

	closers []io.Closer
}

// New validates cfg and connects to GCS and, when enabled, BigQuery.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := docstore.NewGCSStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a := NewWithStore(cfg, log, store, nil)
	a.closers = append(a.closers, store)

	if cfg.Enrichment.Enabled {
		repo, err := infraBQ.NewBigQueryEnrichmentRepository(ctx, cfg.Enrichment)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Enrichment = repo
		a.closers = append(a.closers, repo)
	}

	return a, nil
}

// NewWithStore builds an App around existing collaborators. A nil
// enrichment store disables enrichment.
func NewWithStore(cfg *config.Config, log zerolog.Logger, store docstore.Store, enrich enrichment.Store) *App {
	if enrich == nil {
		enrich = enrichment.Noop{}
	}
	return &App{
		Config:     cfg,
		Log:        log,
		Store:      store,
		Enrichment: enrich,
	}
}

// Loader returns a batch loader over every parsing result under the base dir.
func (a *App) Loader() *statements.Loader {
	return statements.NewLoader(a.Store, nil, a.Config.ListPrefix(), a.Config.Batch.Concurrency)
}

// ParserDeps returns the parsing pipeline collaborators. Unless Parser was
// set, the Gemini parser is built lazily on the first parse.
func (a *App) ParserDeps() pipeline.Deps {
	if a.Parser == nil {
		a.Parser = pipeline.NewLazyGeminiParser(a.Config.Parser.Model)
	}
	return pipeline.Deps{
		Store:         a.Store,
		Bucket:        a.Config.Storage.Container,
		Parser:        a.Parser,
		ResultsPrefix: a.Config.ResultsPrefix(),
	}
}

// ParserReady reports whether the parser can be used. Parsers without a
// readiness check are always ready.
func (a *App) ParserReady(ctx context.Context) error {
	if r, ok := a.ParserDeps().Parser.(interface{ Ready(context.Context) error }); ok {
		return r.Ready(ctx)
	}
	return nil
}

// Close releases every client opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
