package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema_CreatesTables(t *testing.T) {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.InitSchema())
	// Re-running is harmless
	require.NoError(t, db.InitSchema())

	for _, table := range []string{"Movies", "Actors", "WatchList"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestInitSchema_EnforcesForeignKeys(t *testing.T) {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.InitSchema())

	_, err = db.Exec(`INSERT INTO WatchList (Title, Year, Rating, MovieId) VALUES (?, ?, ?, ?)`,
		"Ghost", 1990, 7.1, 42)
	assert.Error(t, err)
}

func TestInitSchema_TitleIsCaseInsensitive(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "movie.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.InitSchema())

	_, err = db.Exec(`INSERT INTO Movies (Title, Year, IMDBId, Director, Rating, Runtime) VALUES (?, ?, ?, ?, ?, ?)`,
		"Titanic", 1997, "tt0120338", "James Cameron", 7.9, 194)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Movies WHERE Title = ?`, "TITANIC").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStorageError_Unwrap(t *testing.T) {
	inner := errors.New("disk I/O error")
	err := &StorageError{Op: "insert movie", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "storage: insert movie: disk I/O error", err.Error())
}

func TestNewDB_ForeignKeysOnEveryConnection(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "movie.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.InitSchema())

	// a replaced connection must come up with enforcement already on
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)
	for i := 0; i < 3; i++ {
		var enabled int
		require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled))
		assert.Equal(t, 1, enabled)
	}

	_, err = db.Exec(`INSERT INTO WatchList (Title, Year, Rating, MovieId) VALUES (?, ?, ?, ?)`,
		"Ghost", 1990, 7.1, 42)
	assert.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on", withForeignKeys(":memory:"))
	assert.Equal(t, "file:m.db?cache=shared&_foreign_keys=on", withForeignKeys("file:m.db?cache=shared"))
	assert.Equal(t, "m.db?_fk=1", withForeignKeys("m.db?_fk=1"))
}
