package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"moviecache/database"
	"moviecache/models"
)

const movieColumns = `Id, Title, Year, IMDBId, Director, Rating, Runtime, Genre, Plot, Poster`

// MovieRepository handles database operations for movies
type MovieRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *database.DB, logger *zap.Logger) *MovieRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovieRepository{db: db, logger: logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (models.Movie, error) {
	var movie models.Movie
	var genre, plot, poster sql.NullString

	err := row.Scan(
		&movie.ID, &movie.Title, &movie.Year, &movie.IMDBID, &movie.Director,
		&movie.Rating, &movie.Runtime, &genre, &plot, &poster,
	)
	if err != nil {
		return models.Movie{}, err
	}

	movie.Genre = genre.String
	movie.Plot = plot.String
	movie.Poster = poster.String
	return movie, nil
}

// GetAll retrieves all movies ordered by insertion
func (r *MovieRepository) GetAll() ([]models.Movie, error) {
	rows, err := r.db.Query(`SELECT ` + movieColumns + ` FROM Movies ORDER BY Id`)
	if err != nil {
		return nil, classify("query movies", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close rows", zap.Error(err))
		}
	}()

	movies := []models.Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, classify("scan movie", err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("iterate movies", err)
	}

	return movies, nil
}

// GetByID retrieves a movie by its ID
func (r *MovieRepository) GetByID(id int) (*models.Movie, error) {
	movie, err := scanMovie(r.db.QueryRow(`SELECT `+movieColumns+` FROM Movies WHERE Id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("movie with id %d not found: %w", id, ErrNotFound)
		}
		return nil, classify("get movie", err)
	}
	return &movie, nil
}

// GetByTitle retrieves a movie by title, ignoring case
func (r *MovieRepository) GetByTitle(title string) (*models.Movie, error) {
	movie, err := scanMovie(r.db.QueryRow(`SELECT `+movieColumns+` FROM Movies WHERE Title = ?`, title))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("movie %q not found: %w", title, ErrNotFound)
		}
		return nil, classify("get movie by title", err)
	}
	return &movie, nil
}

// IDByTitle resolves the row id for title
func (r *MovieRepository) IDByTitle(title string) (int, error) {
	var id int
	if err := r.db.QueryRow(`SELECT Id FROM Movies WHERE Title = ?`, title).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("movie %q not found: %w", title, ErrNotFound)
		}
		return 0, classify("resolve movie id", err)
	}
	return id, nil
}

// Create inserts a new movie. Rating and Runtime must already be parsed.
// The row id is not read back here; callers resolve it with IDByTitle.
func (r *MovieRepository) Create(movie *models.Movie) error {
	query := `
		INSERT INTO Movies (Title, Year, IMDBId, Director, Rating, Runtime, Genre, Plot, Poster)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		movie.Title, movie.Year, movie.IMDBID, movie.Director, movie.Rating, movie.Runtime,
		nullString(movie.Genre), nullString(movie.Plot), nullString(movie.Poster),
	)
	if err != nil {
		return classify("create movie", err)
	}
	return nil
}

// Count returns the number of stored movies
func (r *MovieRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM Movies`).Scan(&n); err != nil {
		return 0, classify("count movies", err)
	}
	return n, nil
}
