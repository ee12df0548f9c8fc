package library

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"moviecache/models"
	"moviecache/services"
)

// Outcome is how a batch treats the result of a single record
type Outcome int

const (
	// OutcomeOK means the record was stored or already present
	OutcomeOK Outcome = iota
	// OutcomeSkip means upstream data was incomplete; the record is dropped quietly
	OutcomeSkip
	// OutcomeFailed means the record could not be stored; it is reported and the batch continues
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeSkip:
		return "skip"
	default:
		return "failed"
	}
}

// Classify maps a per-record error onto an Outcome
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	var missing *services.FieldMissingError
	var structure *services.ExtractionStructureError
	if errors.As(err, &missing) || errors.As(err, &structure) {
		return OutcomeSkip
	}
	return OutcomeFailed
}

// RecordError pairs a record name with the reason it was not stored
type RecordError struct {
	Name string
	Err  error
}

// ImportReport summarizes a batch of inserts
type ImportReport struct {
	Inserted []string
	Existing []string
	Skipped  []RecordError
	Failed   []RecordError
}

func (r *ImportReport) record(name string, created bool, err error) {
	switch Classify(err) {
	case OutcomeOK:
		if created {
			r.Inserted = append(r.Inserted, name)
		} else {
			r.Existing = append(r.Existing, name)
		}
	case OutcomeSkip:
		r.Skipped = append(r.Skipped, RecordError{Name: name, Err: err})
	default:
		r.Failed = append(r.Failed, RecordError{Name: name, Err: err})
	}
}

// FetchMovieList searches for title and stores every result. A result that
// cannot be stored is logged and left out of the store; the search results
// are returned either way, with ID set for the stored ones.
func (l *Library) FetchMovieList(ctx context.Context, title string) ([]models.Movie, error) {
	movies, err := l.omdb.SearchMovies(ctx, title)
	if err != nil {
		return nil, err
	}

	for i := range movies {
		if err := ctx.Err(); err != nil {
			return movies, err
		}
		id, _, err := l.InsertMovie(ctx, movies[i])
		if err != nil {
			l.logger.Warn("movie not stored",
				zap.String("title", movies[i].Title),
				zap.Stringer("outcome", Classify(err)),
				zap.Error(err))
			continue
		}
		movies[i].ID = id
	}
	return movies, nil
}

// FetchCast returns the scraped cast of imdbID without storing it
func (l *Library) FetchCast(ctx context.Context, imdbID string) ([]models.Actor, error) {
	return l.imdb.GetCast(ctx, imdbID)
}

// ImportCast scrapes the cast of imdbID and stores each actor
func (l *Library) ImportCast(ctx context.Context, imdbID string) (ImportReport, error) {
	var report ImportReport

	actors, err := l.FetchCast(ctx, imdbID)
	if err != nil {
		return report, err
	}

	for _, actor := range actors {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		_, created, err := l.InsertActor(ctx, actor)
		if err != nil {
			l.logger.Warn("actor not stored",
				zap.String("name", actor.FullName),
				zap.Stringer("outcome", Classify(err)),
				zap.Error(err))
		}
		report.record(actor.FullName, created, err)
	}
	return report, nil
}
