package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"moviecache/database"
	"moviecache/models"
)

// WatchListRepository handles watch-list data operations
type WatchListRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewWatchListRepository creates a new watch-list repository
func NewWatchListRepository(db *database.DB, logger *zap.Logger) *WatchListRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WatchListRepository{db: db, logger: logger}
}

// GetAll returns every watch-list entry ordered by insertion
func (r *WatchListRepository) GetAll() ([]models.WatchListEntry, error) {
	rows, err := r.db.Query(`SELECT Id, Title, Year, Rating, MovieId FROM WatchList ORDER BY Id`)
	if err != nil {
		return nil, classify("query watch list", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			r.logger.Warn("failed to close rows", zap.Error(cerr))
		}
	}()

	entries := []models.WatchListEntry{}
	for rows.Next() {
		var entry models.WatchListEntry
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Year, &entry.Rating, &entry.MovieID); err != nil {
			return nil, classify("scan watch list entry", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, classify("iterate watch list", err)
	}

	return entries, nil
}

// GetByTitle returns the entry for title, ignoring case
func (r *WatchListRepository) GetByTitle(title string) (*models.WatchListEntry, error) {
	var entry models.WatchListEntry
	err := r.db.QueryRow(`SELECT Id, Title, Year, Rating, MovieId FROM WatchList WHERE Title = ?`, title).
		Scan(&entry.ID, &entry.Title, &entry.Year, &entry.Rating, &entry.MovieID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("watch list entry %q not found: %w", title, ErrNotFound)
		}
		return nil, classify("get watch list entry", err)
	}
	return &entry, nil
}

// Create adds a watch-list entry. entry.MovieID must reference a stored movie.
func (r *WatchListRepository) Create(entry *models.WatchListEntry) error {
	query := `INSERT INTO WatchList (Title, Year, Rating, MovieId) VALUES (?, ?, ?, ?)`
	_, err := r.db.Exec(query, entry.Title, entry.Year, entry.Rating, entry.MovieID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &ReferentialIntegrityError{Entity: "watch list entry", Title: entry.Title}
		}
		return classify("create watch list entry", err)
	}
	return nil
}

// Count returns the number of watch-list entries
func (r *WatchListRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM WatchList`).Scan(&n); err != nil {
		return 0, classify("count watch list", err)
	}
	return n, nil
}
