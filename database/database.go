// Package database provides database connectivity and schema management.
package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import sqlite3 driver
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// StorageError reports a relational store failure. It always propagates to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewDB creates a new database connection. Foreign keys are enforced on
// every connection the pool opens.
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite3", withForeignKeys(dataSourceName))
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	// One connection keeps a :memory: database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, &StorageError{Op: "ping", Err: err}
	}

	return &DB{db}, nil
}

// withForeignKeys adds the go-sqlite3 _foreign_keys option to dsn unless it is already set
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// InitSchema initializes the database schema
func (db *DB) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS Movies (
		Id INTEGER PRIMARY KEY AUTOINCREMENT UNIQUE,
		Title TEXT NOT NULL UNIQUE COLLATE NOCASE,
		Year INTEGER NOT NULL,
		IMDBId TEXT NOT NULL,
		Director TEXT NOT NULL,
		Rating REAL NOT NULL,
		Runtime INTEGER NOT NULL,
		Genre TEXT,
		Plot TEXT,
		Poster TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_movies_imdb_id ON Movies(IMDBId);

	CREATE TABLE IF NOT EXISTS Actors (
		Id INTEGER PRIMARY KEY AUTOINCREMENT UNIQUE,
		FullName TEXT NOT NULL UNIQUE COLLATE NOCASE,
		FirstName TEXT NOT NULL,
		LastName TEXT NOT NULL,
		Character TEXT,
		ProfileURL TEXT,
		KnownForTitle TEXT NOT NULL,
		MovieId INTEGER NOT NULL,
		FOREIGN KEY (MovieId) REFERENCES Movies (Id)
	);

	CREATE INDEX IF NOT EXISTS idx_actors_movie_id ON Actors(MovieId);

	CREATE TABLE IF NOT EXISTS WatchList (
		Id INTEGER PRIMARY KEY AUTOINCREMENT UNIQUE,
		Title TEXT NOT NULL UNIQUE COLLATE NOCASE,
		Year INTEGER NOT NULL,
		Rating REAL NOT NULL,
		MovieId INTEGER NOT NULL,
		FOREIGN KEY (MovieId) REFERENCES Movies (Id)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return &StorageError{Op: "create schema", Err: err}
	}

	return nil
}
