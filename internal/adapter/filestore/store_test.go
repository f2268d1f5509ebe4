package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingFileIsEmpty(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "vouches.json"))

	totals, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.NotNil(t, totals)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "vouches.json"))

	want := map[string]int64{
		"111111111111111111": 5,
		"222222222222222222": 1,
	}
	require.NoError(t, store.Save(context.Background(), want))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_SaveWritesIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vouches.json")
	store := New(path)

	require.NoError(t, store.Save(context.Background(), map[string]int64{"111": 5, "222": 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Keys come out sorted, values four-space indented.
	want := "{\n    \"111\": 5,\n    \"222\": 1\n}\n"
	assert.Equal(t, want, string(data))
}

func TestStore_SaveReplacesPreviousContent(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "vouches.json"))

	require.NoError(t, store.Save(context.Background(), map[string]int64{"111": 1, "222": 2}))
	require.NoError(t, store.Save(context.Background(), map[string]int64{"111": 3}))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"111": 3}, got)

	// No temporary files may survive a successful save.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), "leftover temp file %s", entry.Name())
	}
}

func TestStore_SaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "nested", "vouches.json")
	store := New(path)

	require.NoError(t, store.Save(context.Background(), map[string]int64{"111": 1}))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"111": 1}, got)
}

func TestStore_LoadCorruptFileFails(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated object", content: `{"111": 5`},
		{name: "not json at all", content: "points for everyone"},
		{name: "wrong value type", content: `{"111": "five"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vouches.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := New(path).Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestStore_LoadEmptyFileIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "zero bytes", content: ""},
		{name: "whitespace only", content: " \n\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vouches.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			totals, err := New(path).Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, totals)
			assert.NotNil(t, totals)
		})
	}
}

func TestStore_LoadNullDocumentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vouches.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o600))

	totals, err := New(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.NotNil(t, totals)
}

func TestStore_LoadAcceptsHandEditedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vouches.json")
	content := "{\n\t\"333333333333333333\": 12\n}"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	totals, err := New(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"333333333333333333": 12}, totals)
}
