package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-recon/internal/config"
	"github.com/dvloznov/statement-recon/internal/docstore"
	"github.com/dvloznov/statement-recon/internal/enrichment"
	"github.com/dvloznov/statement-recon/internal/logger"
	"github.com/dvloznov/statement-recon/internal/pipeline"
	"github.com/dvloznov/statement-recon/internal/recon"
)

type stubParser struct{}

func (stubParser) ParseStatement(ctx context.Context, pdf []byte) (*recon.StatementDetail, error) {
	return &recon.StatementDetail{}, nil
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Container = "bucket"

	_, err := New(context.Background(), cfg, logger.NewWithWriter(io.Discard))
	assert.ErrorIs(t, err, config.ErrNoCredential)
}

func TestLoaderUsesBaseDir(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.BaseDir = "tenants/acme"

	store := docstore.NewMemoryStore()
	store.Put("tenants/acme/parsed/a_parsing_result.json", []byte(`{"batch_id": "a", "result": {"accounts": []}}`))
	store.Put("tenants/other/b_parsing_result.json", []byte(`{"batch_id": "b", "result": {"accounts": []}}`))

	a := NewWithStore(cfg, logger.NewWithWriter(io.Discard), store, nil)
	batch, err := a.Loader().Load(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "a", batch.Rows[0].CaseID)
	assert.IsType(t, enrichment.Noop{}, a.Enrichment)
	assert.NoError(t, a.Close())
}

func TestParserDeps(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Container = "bank-statements"
	cfg.Storage.BaseDir = "tenants/acme"

	a := NewWithStore(cfg, logger.NewWithWriter(io.Discard), docstore.NewMemoryStore(), nil)
	a.Parser = stubParser{}

	deps := a.ParserDeps()
	assert.NoError(t, a.ParserReady(context.Background()))
	assert.Equal(t, "bank-statements", deps.Bucket)
	assert.Equal(t, "tenants/acme/parsed", deps.ResultsPrefix)
	assert.Equal(t, stubParser{}, deps.Parser)
}

func TestParserReady_ReportsBuildFailure(t *testing.T) {
	a := NewWithStore(config.Default(), logger.NewWithWriter(io.Discard), docstore.NewMemoryStore(), nil)
	a.Parser = pipeline.NewLazyParser(func(ctx context.Context) (pipeline.AIParser, error) {
		return nil, errors.New("api key is required")
	})

	err := a.ParserReady(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrParserUnavailable)
	assert.NotNil(t, a.ParserDeps().Parser)
}
