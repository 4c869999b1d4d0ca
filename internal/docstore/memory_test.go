package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ListSortedByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Put("statements/b_parsing_result.json", []byte("{}"))
	s.Put("statements/a_parsing_result.json", []byte("{}"))
	s.Put("other/c_parsing_result.json", []byte("{}"))

	objects, err := s.List(ctx, "statements/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "statements/a_parsing_result.json", objects[0].Name)
	assert.Equal(t, "statements/b_parsing_result.json", objects[1].Name)
	assert.Equal(t, int64(2), objects[0].Size)
}

func TestMemoryStore_ReadMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Read(context.Background(), "nope.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_InjectedErrors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Put("x.json", []byte("{}"))

	boom := errors.New("boom")
	s.ReadErrs["x.json"] = boom
	_, err := s.Read(ctx, "x.json")
	assert.ErrorIs(t, err, boom)

	s.ListErr = boom
	_, err = s.List(ctx, "")
	assert.ErrorIs(t, err, boom)
}

func TestMemoryStore_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Write(ctx, "x", []byte("abc"), "text/plain"))

	data, err := s.Read(ctx, "x")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := s.Read(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestFilterSuffix(t *testing.T) {
	objects := []Object{
		{Name: "a_parsing_result.json"},
		{Name: "b_PARSING_RESULT.JSON"},
		{Name: "c.pdf"},
		{Name: "d_parsing_result.json.bak"},
	}
	kept := FilterSuffix(objects, "_parsing_result.json")
	require.Len(t, kept, 2)
	assert.Equal(t, "a_parsing_result.json", kept[0].Name)
	assert.Equal(t, "b_PARSING_RESULT.JSON", kept[1].Name)
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "statement.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4"), 0o600))

	s := NewMemoryStore()
	require.NoError(t, UploadFile(context.Background(), s, "raw/statement.pdf", p))

	data, err := s.Read(context.Background(), "raw/statement.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestUploadFile_MissingFile(t *testing.T) {
	err := UploadFile(context.Background(), NewMemoryStore(), "x", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
