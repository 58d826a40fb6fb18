package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONFileRoundTrip(t *testing.T) {
	file, err := NewJSONFile(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	assert.False(t, file.Exists())

	require.NoError(t, file.Save(sampleDoc{Name: "CS101", Count: 3}))
	assert.True(t, file.Exists())

	var loaded sampleDoc
	require.NoError(t, file.Load(&loaded))
	assert.Equal(t, sampleDoc{Name: "CS101", Count: 3}, loaded)
}

func TestJSONFileLoadMissing(t *testing.T) {
	file, err := NewJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	var doc sampleDoc
	assert.ErrorIs(t, file.Load(&doc), ErrNotExist)
}

func TestJSONFileCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "store.json")
	file, err := NewJSONFile(path)
	require.NoError(t, err)
	require.NoError(t, file.Save(sampleDoc{Name: "x"}))
}

func TestJSONFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	file, err := NewJSONFile(filepath.Join(dir, "store.json"))
	require.NoError(t, err)

	require.NoError(t, file.Save(sampleDoc{Count: 1}))
	require.NoError(t, file.Save(sampleDoc{Count: 2}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, strings.Contains(entries[0].Name(), ".tmp-"))

	var loaded sampleDoc
	require.NoError(t, file.Load(&loaded))
	assert.Equal(t, 2, loaded.Count)
}

func TestFrameStoreSaveAndCount(t *testing.T) {
	store, err := NewFrameStore(t.TempDir())
	require.NoError(t, err)

	count, err := store.Save("S1_Bob", []byte("frame-a"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.Save("S1_Bob", []byte("frame-b"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.Count("S2_Carol")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFrameStoreList(t *testing.T) {
	store, err := NewFrameStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("S1_Bob", []byte("frame-a"))
	require.NoError(t, err)
	_, err = store.Save("S1_Bob", []byte("frame-b"))
	require.NoError(t, err)

	frames, err := store.List("S1_Bob")
	require.NoError(t, err)
	require.Len(t, frames, 2)

	frames, err = store.List("S2_Carol")
	require.NoError(t, err)
	assert.Empty(t, frames)
}
