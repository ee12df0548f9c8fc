// Package library persists movies, actors and watch-list entries exactly once
// each, fetching whatever a row depends on along the way.
package library

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"moviecache/database"
	"moviecache/models"
	"moviecache/repository"
	"moviecache/services"
)

// MovieSource provides structured movie metadata
type MovieSource interface {
	SearchMovies(ctx context.Context, title string) ([]models.Movie, error)
	GetMovieDetails(ctx context.Context, title string) (models.Movie, error)
}

// CastSource provides scraped cast lists and filmographies
type CastSource interface {
	GetCast(ctx context.Context, imdbID string) ([]models.Actor, error)
	GetKnownFor(ctx context.Context, profileURL string) ([]string, error)
}

// Library ties the sources to the relational store
type Library struct {
	movies    *repository.MovieRepository
	actors    *repository.ActorRepository
	watchList *repository.WatchListRepository
	omdb      MovieSource
	imdb      CastSource
	logger    *zap.Logger

	warmKnownFor bool
}

// Option configures a Library
type Option func(*Library)

// WithKnownForWarmup makes InsertActor look up every known-for title of a new
// actor, not just the first, so their details land in the payload cache.
// Only the first title is stored.
func WithKnownForWarmup() Option {
	return func(l *Library) { l.warmKnownFor = true }
}

// New creates a Library over db
func New(db *database.DB, omdb MovieSource, imdb CastSource, logger *zap.Logger, opts ...Option) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Library{
		movies:    repository.NewMovieRepository(db, logger),
		actors:    repository.NewActorRepository(db, logger),
		watchList: repository.NewWatchListRepository(db, logger),
		omdb:      omdb,
		imdb:      imdb,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Movies exposes the movie repository for read access
func (l *Library) Movies() *repository.MovieRepository { return l.movies }

// Actors exposes the actor repository for read access
func (l *Library) Actors() *repository.ActorRepository { return l.actors }

// WatchList exposes the watch-list repository for read access
func (l *Library) WatchList() *repository.WatchListRepository { return l.watchList }

// MovieDetails fetches the full record for title without storing it
func (l *Library) MovieDetails(ctx context.Context, title string) (models.Movie, error) {
	return l.omdb.GetMovieDetails(ctx, title)
}

// InsertMovie stores m unless a movie with the same title already exists.
// Summaries without detail fields are completed from a title lookup first.
// It returns the row id and whether a new row was written.
func (l *Library) InsertMovie(ctx context.Context, m models.Movie) (int, bool, error) {
	if m.Title == "" {
		return 0, false, &services.FieldMissingError{Entity: "movie " + m.IMDBID, Field: "Title"}
	}

	id, err := l.movies.IDByTitle(m.Title)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, false, err
	}

	if !m.HasDetails() {
		details, err := l.omdb.GetMovieDetails(ctx, m.Title)
		if err != nil {
			return 0, false, err
		}
		m = mergeDetails(m, details)
	}

	rating, err := models.ParseRating(m.RatingText)
	if err != nil {
		l.logger.Warn("unparseable rating, storing 0", zap.String("title", m.Title), zap.Error(err))
	}
	runtime, err := models.ParseRuntime(m.RuntimeText)
	if err != nil {
		l.logger.Warn("unparseable runtime, storing 0", zap.String("title", m.Title), zap.Error(err))
	}
	m.Rating = rating
	m.Runtime = runtime

	created := true
	if err := l.movies.Create(&m); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return 0, false, err
		}
		created = false
	}

	id, err = l.movies.IDByTitle(m.Title)
	if err != nil {
		return 0, false, err
	}
	if created {
		l.logger.Info("stored movie", zap.String("title", m.Title), zap.Int("id", id))
	}
	return id, created, nil
}

// InsertActor stores a unless an actor with the same full name exists. The
// actor's known-for title is scraped from the profile page and its movie row
// is created when missing.
func (l *Library) InsertActor(ctx context.Context, a models.Actor) (int, bool, error) {
	if a.FullName == "" {
		return 0, false, &services.FieldMissingError{Entity: "actor", Field: "FullName"}
	}

	id, err := l.actors.IDByName(a.FullName)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, false, err
	}

	if a.ProfileURL == "" {
		return 0, false, &services.FieldMissingError{Entity: "actor " + a.FullName, Field: "ProfileURL"}
	}
	titles, err := l.imdb.GetKnownFor(ctx, a.ProfileURL)
	if err != nil {
		return 0, false, err
	}
	if len(titles) == 0 {
		return 0, false, &services.ExtractionStructureError{URL: a.ProfileURL, Marker: ".knownfor-title-role"}
	}

	movieID, err := l.resolveMovie(ctx, titles[0])
	if err != nil {
		return 0, false, err
	}

	if a.FirstName == "" && a.LastName == "" {
		a.FirstName, a.LastName = models.SplitName(a.FullName)
	}
	a.KnownForTitle = titles[0]
	a.MovieID = movieID

	created := true
	if err := l.actors.Create(&a); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return 0, false, err
		}
		created = false
	}

	id, err = l.actors.IDByName(a.FullName)
	if err != nil {
		return 0, false, err
	}
	if created {
		l.logger.Info("stored actor",
			zap.String("name", a.FullName),
			zap.String("known_for", a.KnownForTitle),
			zap.Int("movie_id", movieID))
		if l.warmKnownFor {
			l.warmDetails(ctx, titles[1:])
		}
	}
	return id, created, nil
}

// warmDetails fetches details for titles without storing them. Failures only cost a cache entry.
func (l *Library) warmDetails(ctx context.Context, titles []string) {
	for _, title := range titles {
		if ctx.Err() != nil {
			return
		}
		if _, err := l.omdb.GetMovieDetails(ctx, title); err != nil {
			l.logger.Debug("known-for lookup failed", zap.String("title", title), zap.Error(err))
		}
	}
}

// InsertWatchlistEntry adds m to the watch list unless an entry with the same
// title exists. The movie must already be stored; it is never fetched here.
func (l *Library) InsertWatchlistEntry(m models.Movie) (int, bool, error) {
	if m.Title == "" {
		return 0, false, &services.FieldMissingError{Entity: "watch list entry", Field: "Title"}
	}

	existing, err := l.watchList.GetByTitle(m.Title)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, false, err
	}

	stored, err := l.movies.GetByTitle(m.Title)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, false, &repository.ReferentialIntegrityError{Entity: "watch list entry", Title: m.Title}
		}
		return 0, false, err
	}

	entry := models.WatchListEntry{
		Title:   stored.Title,
		Year:    m.Year,
		Rating:  m.Rating,
		MovieID: stored.ID,
	}
	if entry.Year == 0 {
		entry.Year = stored.Year
	}
	if entry.Rating == 0 {
		entry.Rating = stored.Rating
	}

	created := true
	if err := l.watchList.Create(&entry); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return 0, false, err
		}
		created = false
	}

	saved, err := l.watchList.GetByTitle(entry.Title)
	if err != nil {
		return 0, false, err
	}
	return saved.ID, created, nil
}

// resolveMovie returns the row id for title, fetching and storing the movie if needed
func (l *Library) resolveMovie(ctx context.Context, title string) (int, error) {
	id, err := l.movies.IDByTitle(title)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	details, err := l.omdb.GetMovieDetails(ctx, title)
	if err != nil {
		return 0, err
	}
	id, _, err = l.InsertMovie(ctx, details)
	return id, err
}

// mergeDetails fills detail-only fields from details; fields already set on the summary win
func mergeDetails(summary, details models.Movie) models.Movie {
	merged := details
	if summary.Title != "" {
		merged.Title = summary.Title
	}
	if summary.Year != 0 {
		merged.Year = summary.Year
	}
	if summary.IMDBID != "" {
		merged.IMDBID = summary.IMDBID
	}
	if summary.Poster != "" {
		merged.Poster = summary.Poster
	}
	return merged
}
