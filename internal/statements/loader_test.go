package statements

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-recon/internal/docstore"
	"github.com/dvloznov/statement-recon/internal/recon"
)

const prefix = "statements/parsed/"

func envelope(batchID string, month int) []byte {
	return []byte(fmt.Sprintf(`{
  "batch_id": %q,
  "filename": "stmt_%s_parsing_result.json",
  "result": {
    "bank_name": "First Community Bank",
    "statement_month": %d,
    "statement_year": 2025,
    "accounts": [
      {"account_number": "0042", "beginning_balance": "1,780.44", "ending_balance": 449.92,
       "total_deposits": "151,000.00", "total_withdrawals": -152330.52}
    ]
  }
}`, batchID, batchID, month))
}

func newLoader(store docstore.Store) *Loader {
	return NewLoader(store, recon.NewMapper(), prefix, 4)
}

func TestLoad(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(prefix+"a_parsing_result.json", envelope("a", 8))
	store.Put(prefix+"b_parsing_result.json", envelope("b", 9))
	store.Put(prefix+"b.pdf", []byte("%PDF"))
	store.Put("elsewhere/c_parsing_result.json", envelope("c", 10))

	batch, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Rows, 2)
	assert.Empty(t, batch.Dropped)

	assert.Equal(t, "a", batch.Rows[0].CaseID)
	assert.Equal(t, "AUG 2025", batch.Rows[0].PeriodLabel)
	assert.Equal(t, "stmt_a", batch.Rows[0].SourceFilename)
	assert.Equal(t, "b", batch.Rows[1].CaseID)

	v := recon.Verify(batch.Rows[0].Accounts[0])
	assert.True(t, v.IsReconciled)
}

func TestLoad_DropsBadItems(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(prefix+"1_parsing_result.json", envelope("one", 1))
	store.Put(prefix+"2_parsing_result.json", []byte(`{"batch_id": "two", "filename": "x"}`))
	store.Put(prefix+"3_parsing_result.json", []byte(`not json`))
	store.Put(prefix+"4_parsing_result.json", envelope("four", 4))
	store.Put(prefix+"5_parsing_result.json", envelope("five", 5))
	store.ReadErrs[prefix+"5_parsing_result.json"] = errors.New("permission denied")

	batch, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, batch.Rows, 2)
	assert.Equal(t, "one", batch.Rows[0].CaseID)
	assert.Equal(t, "four", batch.Rows[1].CaseID)

	require.Len(t, batch.Dropped, 3)
	assert.Equal(t, ReasonMissingDetail, batch.Dropped[0].Reason)
	assert.ErrorIs(t, batch.Dropped[0].Err, recon.ErrMissingDetail)
	assert.Equal(t, ReasonDecode, batch.Dropped[1].Reason)
	assert.Equal(t, ReasonRead, batch.Dropped[2].Reason)
	assert.Equal(t, prefix+"5_parsing_result.json", batch.Dropped[2].Object)
}

func TestLoad_FilenameFallsBackToObjectName(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(prefix+"acme_parsing_result.json", []byte(`{"batch_id": "x", "result": {"accounts": []}}`))

	batch, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "acme", batch.Rows[0].SourceFilename)
}

func TestLoad_NumericIdentifiersKeepAllDigits(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(prefix+"n_parsing_result.json", []byte(`{
  "batch_id": 9007199254740993,
  "result": {"accounts": [{"account_number": 1234567890123456, "ending_balance": 10}]}
}`))

	batch, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "9007199254740993", batch.Rows[0].CaseID)
	assert.Equal(t, "1234567890123456", batch.Rows[0].Accounts[0].AccountNumber)
	assert.Equal(t, 10.0, batch.Rows[0].Accounts[0].EndingBalance)
}

func TestLoad_FallbackCaseIDStableAcrossLoads(t *testing.T) {
	store := docstore.NewMemoryStore()
	body := []byte(`{"result": {"statement_month": 8, "accounts": []}}`)
	store.Put(prefix+"x_parsing_result.json", body)
	store.Put(prefix+"y_parsing_result.json", body)

	first, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)
	second, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, first.Rows, 2)
	assert.NotEqual(t, first.Rows[0].CaseID, first.Rows[1].CaseID)
	assert.Equal(t, first.Rows[0].CaseID, second.Rows[0].CaseID)
	assert.Equal(t, first.Rows[1].CaseID, second.Rows[1].CaseID)
}

func TestLoad_TrailingDataIsDropped(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(prefix+"t_parsing_result.json", []byte(`{"batch_id": "t", "result": {}} garbage`))

	batch, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch.Rows)
	require.Len(t, batch.Dropped, 1)
	assert.Equal(t, ReasonDecode, batch.Dropped[0].Reason)
}

func TestLoad_Empty(t *testing.T) {
	batch, err := newLoader(docstore.NewMemoryStore()).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, batch.Rows)
	assert.Empty(t, batch.Rows)
	assert.Empty(t, batch.Dropped)
}

func TestLoad_ListFailure(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.ListErr = errors.New("bucket unreachable")

	_, err := newLoader(store).Load(context.Background())
	assert.ErrorIs(t, err, store.ListErr)
}

func TestLoad_PreservesOrder(t *testing.T) {
	store := docstore.NewMemoryStore()
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("%03d", i)
		store.Put(prefix+id+"_parsing_result.json", envelope(id, i%12+1))
	}

	batch, err := newLoader(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Rows, 40)
	for i, row := range batch.Rows {
		assert.Equal(t, fmt.Sprintf("%03d", i), row.CaseID)
	}
}

func TestFind(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Put(prefix+"a_parsing_result.json", envelope("a", 8))

	l := newLoader(store)
	row, ok, err := l.Find(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", row.CaseID)

	_, ok, err = l.Find(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
