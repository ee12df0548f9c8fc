package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"moviecache/database"
	"moviecache/models"
)

const actorColumns = `Id, FullName, FirstName, LastName, Character, ProfileURL, KnownForTitle, MovieId`

// ActorRepository handles database operations for actors
type ActorRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewActorRepository creates a new actor repository
func NewActorRepository(db *database.DB, logger *zap.Logger) *ActorRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActorRepository{db: db, logger: logger}
}

func scanActor(row rowScanner) (models.Actor, error) {
	var actor models.Actor
	var character, profileURL sql.NullString

	err := row.Scan(
		&actor.ID, &actor.FullName, &actor.FirstName, &actor.LastName,
		&character, &profileURL, &actor.KnownForTitle, &actor.MovieID,
	)
	if err != nil {
		return models.Actor{}, err
	}

	actor.Character = character.String
	actor.ProfileURL = profileURL.String
	return actor, nil
}

func (r *ActorRepository) list(query string, args ...any) ([]models.Actor, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, classify("query actors", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close rows", zap.Error(err))
		}
	}()

	actors := []models.Actor{}
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, classify("scan actor", err)
		}
		actors = append(actors, actor)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate actors", err)
	}
	return actors, nil
}

// GetAll retrieves all actors ordered by insertion
func (r *ActorRepository) GetAll() ([]models.Actor, error) {
	return r.list(`SELECT ` + actorColumns + ` FROM Actors ORDER BY Id`)
}

// GetByMovieID returns the actors whose known-for movie is movieID
func (r *ActorRepository) GetByMovieID(movieID int) ([]models.Actor, error) {
	return r.list(`SELECT `+actorColumns+` FROM Actors WHERE MovieId = ? ORDER BY Id`, movieID)
}

// GetByName retrieves an actor by full name, ignoring case
func (r *ActorRepository) GetByName(fullName string) (*models.Actor, error) {
	actor, err := scanActor(r.db.QueryRow(`SELECT `+actorColumns+` FROM Actors WHERE FullName = ?`, fullName))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("actor %q not found: %w", fullName, ErrNotFound)
		}
		return nil, classify("get actor", err)
	}
	return &actor, nil
}

// IDByName resolves the row id for fullName
func (r *ActorRepository) IDByName(fullName string) (int, error) {
	var id int
	if err := r.db.QueryRow(`SELECT Id FROM Actors WHERE FullName = ?`, fullName).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("actor %q not found: %w", fullName, ErrNotFound)
		}
		return 0, classify("resolve actor id", err)
	}
	return id, nil
}

// Create inserts a new actor. actor.MovieID must reference a stored movie.
func (r *ActorRepository) Create(actor *models.Actor) error {
	query := `
		INSERT INTO Actors (FullName, FirstName, LastName, Character, ProfileURL, KnownForTitle, MovieId)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		actor.FullName, actor.FirstName, actor.LastName,
		nullString(actor.Character), nullString(actor.ProfileURL),
		actor.KnownForTitle, actor.MovieID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &ReferentialIntegrityError{Entity: "actor", Title: actor.KnownForTitle}
		}
		return classify("create actor", err)
	}
	return nil
}

// Count returns the number of stored actors
func (r *ActorRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM Actors`).Scan(&n); err != nil {
		return 0, classify("count actors", err)
	}
	return n, nil
}
