package enrichment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lookup(t *testing.T) {
	s := NewMemoryStore(Record{CaseID: "a", OverdraftDays: 2}, Record{CaseID: "b", MCAWithdrawals: 3})

	got, err := s.Lookup(context.Background(), []string{"a", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got["a"].OverdraftDays)
}

func TestLookupOrEmpty_DegradesOnError(t *testing.T) {
	s := NewMemoryStore(Record{CaseID: "a"})
	s.Err = errors.New("bigquery unavailable")

	got := LookupOrEmpty(context.Background(), s, []string{"a"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLookupOrEmpty_NilStoreAndNoIDs(t *testing.T) {
	assert.Empty(t, LookupOrEmpty(context.Background(), nil, []string{"a"}))
	assert.Empty(t, LookupOrEmpty(context.Background(), NewMemoryStore(Record{CaseID: "a"}), nil))
}

func TestNoop(t *testing.T) {
	got, err := Noop{}.Lookup(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUniqueCaseIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, UniqueCaseIDs([]string{"b", "", "a", "b"}))
	assert.Empty(t, UniqueCaseIDs(nil))
}
