package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONFile(t *testing.T) {
	dir := t.TempDir()

	var v []int
	found, err := readJSONFile(filepath.Join(dir, "missing.json"), &v)
	assert.NoError(t, err)
	assert.False(t, found)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1, 2"), 0644))
	found, err = readJSONFile(bad, &v)
	assert.True(t, found)
	assert.Error(t, err)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte("[1, 2, 3]"), 0644))
	found, err = readJSONFile(good, &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestWriteJSONFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "out.json")

	require.NoError(t, writeJSONFile(path, map[string]int{"a": 1}, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(data))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestWriteJSONFile_Backup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, writeJSONFile(path, []string{"first"}, true))
	_, err := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err), "no backup before the file exists")

	require.NoError(t, writeJSONFile(path, []string{"second"}, true))
	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.JSONEq(t, `["first"]`, string(backup))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["second"]`, string(current))
}

func TestWriteJSONFile_NoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, writeJSONFile(path, 1, false))
	require.NoError(t, writeJSONFile(path, 2, false))

	_, err := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))
}
