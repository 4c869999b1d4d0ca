package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/statement-recon/internal/app"
	"github.com/dvloznov/statement-recon/internal/config"
	"github.com/dvloznov/statement-recon/internal/docstore"
	"github.com/dvloznov/statement-recon/internal/recon"
	"github.com/dvloznov/statement-recon/internal/view"
)

const testConfig = `storage:
  account: proj
  token: test-token
  container: statements
  base_dir: clients
log:
  level: error
`

const acmeEnvelope = `{
  "batch_id": "case-1",
  "filename": "acme_parsing_result.json",
  "result": {
    "bank_name": "Acme Bank",
    "statement_month": 3,
    "statement_year": 2024,
    "accounts": [{
      "account_number": "1234",
      "account_type": "checking",
      "beginning_balance": "1,000.00",
      "ending_balance": 1300,
      "total_deposits": 500,
      "total_withdrawals": -200
    }]
  }
}`

type stubParser struct{}

func (stubParser) ParseStatement(ctx context.Context, pdf []byte) (*recon.StatementDetail, error) {
	return &recon.StatementDetail{
		BankName:       "Stub Bank",
		StatementMonth: 1,
		StatementYear:  2025,
		Accounts:       []recon.RawAccount{},
	}, nil
}

type harness struct {
	store      *docstore.MemoryStore
	configPath string
	dir        string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "recon.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o600))

	store := docstore.NewMemoryStore()
	store.Put("clients/parsed/acme_parsing_result.json", []byte(acmeEnvelope))
	store.Put("clients/parsed/broken_parsing_result.json", []byte(`{"batch_id": "case-2"}`))
	return &harness{store: store, configPath: configPath, dir: dir}
}

func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	factory := func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app.App, error) {
		a := app.NewWithStore(cfg, log, h.store, nil)
		a.Parser = stubParser{}
		return a, nil
	}

	cmd := NewRootCommandWith(factory)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config", h.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestListTable(t *testing.T) {
	h := newHarness(t)

	out, errOut, err := h.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "CASE ID")
	assert.Contains(t, out, "case-1")
	assert.Contains(t, out, "Acme Bank")
	assert.Contains(t, out, "1/1")
	assert.Contains(t, errOut, "1 item(s) dropped")
}

func TestListJSON(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "list", "--json")
	require.NoError(t, err)

	var views []view.RowView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "case-1", views[0].CaseID)
	assert.True(t, views[0].AllReconciled)
	require.Len(t, views[0].Accounts, 1)
	assert.Equal(t, 0.0, views[0].Accounts[0].Difference)
}

func TestExportXLSX(t *testing.T) {
	h := newHarness(t)
	output := filepath.Join(h.dir, "out.xlsx")

	out, _, err := h.run(t, "export", "--format", "xlsx", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 row(s)")

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "summary")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "export", "--format", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format")
}

func TestParseStoresResult(t *testing.T) {
	h := newHarness(t)
	h.store.Put("clients/raw/stub.pdf", []byte("%PDF-1.4"))

	out, _, err := h.run(t, "parse", "--uri", "gs://statements/clients/raw/stub.pdf", "--batch-id", "b-7")
	require.NoError(t, err)
	assert.Contains(t, out, "clients/parsed/stub_parsing_result.json")

	data, err := h.store.Read(context.Background(), "clients/parsed/stub_parsing_result.json")
	require.NoError(t, err)
	var env recon.RawStatement
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "b-7", env.BatchID)
	require.NotNil(t, env.Result)
}

func TestParseRequiresURI(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "parse")
	require.Error(t, err)
}

func TestUpload(t *testing.T) {
	h := newHarness(t)
	local := filepath.Join(h.dir, "march.pdf")
	require.NoError(t, os.WriteFile(local, []byte("%PDF-1.4"), 0o600))

	out, _, err := h.run(t, "upload", "--file", local)
	require.NoError(t, err)
	assert.Contains(t, out, "gs://statements/clients/raw/march.pdf")

	data, err := h.store.Read(context.Background(), "clients/raw/march.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestConfigInit(t *testing.T) {
	h := newHarness(t)
	output := filepath.Join(h.dir, "new.yaml")

	_, _, err := h.run(t, "config", "init", "-o", output)
	require.NoError(t, err)

	cfg, err := config.Load(output)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Parser.Model, cfg.Parser.Model)

	_, _, err = h.run(t, "config", "init", "-o", output)
	require.Error(t, err)

	_, _, err = h.run(t, "config", "init", "-o", output, "--force")
	require.NoError(t, err)
}

func TestFactoryError(t *testing.T) {
	h := newHarness(t)
	cmd := NewRootCommandWith(func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app.App, error) {
		return nil, assert.AnError
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", h.configPath, "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
