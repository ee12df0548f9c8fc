// Package repository provides data access layer for the movie store.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"moviecache/database"
)

var (
	// ErrNotFound is returned when no row matches the identity key
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by Create when a row with the same identity key already exists
	ErrDuplicate = errors.New("already exists")
)

// ReferentialIntegrityError means a row references a movie that does not exist
// and may not be created on demand.
type ReferentialIntegrityError struct {
	Entity string
	Title  string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %q references a movie that is not stored", e.Entity, e.Title)
}

// classify maps driver constraint errors onto repository errors and wraps
// everything else as a StorageError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
	}
	return &database.StorageError{Op: op, Err: err}
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// Helper functions for handling null values
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
