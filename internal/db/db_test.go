package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MemoryDefaults(t *testing.T) {
	database, err := Open()
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec("CREATE TABLE t (path TEXT PRIMARY KEY, digest TEXT NOT NULL);")
	require.NoError(t, err)
}

func TestOpen_FileCreatesParent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "snapshot.db")

	database, err := Open(WithPath(dbPath))
	require.NoError(t, err)
	_, err = database.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY);")
	require.NoError(t, err)
	require.NoError(t, database.Close())

	assert.FileExists(t, dbPath)
}

func TestOpen_ReadOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snapshot.db")

	rw, err := Open(WithPath(dbPath))
	require.NoError(t, err)
	_, err = rw.Exec("CREATE TABLE t (v TEXT); INSERT INTO t VALUES ('a');")
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := Open(WithPath(dbPath), WithReadOnly())
	require.NoError(t, err)
	defer ro.Close()

	var v string
	require.NoError(t, ro.Get(&v, "SELECT v FROM t"))
	assert.Equal(t, "a", v)

	_, err = ro.Exec("INSERT INTO t VALUES ('b')")
	assert.Error(t, err)

	_, err = Open(WithPath(filepath.Join(t.TempDir(), "missing.db")), WithReadOnly())
	assert.Error(t, err)
}

func TestOpen_DefaultPragmas(t *testing.T) {
	database, err := Open(WithPath(filepath.Join(t.TempDir(), "p.db")))
	require.NoError(t, err)
	defer database.Close()

	var mode string
	require.NoError(t, database.Get(&mode, "PRAGMA journal_mode"))
	assert.Equal(t, "delete", mode)

	var sync int
	require.NoError(t, database.Get(&sync, "PRAGMA synchronous"))
	assert.Equal(t, 2, sync)
}
