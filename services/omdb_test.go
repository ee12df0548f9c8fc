package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviecache/cache"
)

const testBase = "http://omdb.test"

func TestParseSearch_Titanic(t *testing.T) {
	movies, skipped, err := ParseSearch(readFixture(t, "search_titanic.json"))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, movies, 2)

	assert.Equal(t, "Titanic", movies[0].Title)
	assert.Equal(t, 1997, movies[0].Year)
	assert.Equal(t, "tt0120338", movies[0].IMDBID)
	assert.Equal(t, "https://m.media-amazon.com/images/M/titanic.jpg", movies[0].Poster)

	assert.Equal(t, "Titanic II", movies[1].Title)
	assert.Empty(t, movies[1].Poster, "N/A poster is dropped")
	assert.False(t, movies[1].HasDetails())
}

func TestParseSearch_SkipsIncompleteSummaries(t *testing.T) {
	payload := `{"Search":[{"Title":"","Year":"1953","imdbID":"tt0046435"},{"Title":"Titanic","Year":"1997","imdbID":"tt0120338"},{"Title":"No ID","Year":"2000"}],"Response":"True"}`

	movies, skipped, err := ParseSearch(payload)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Titanic", movies[0].Title)
	require.Len(t, skipped, 2)

	var missing *FieldMissingError
	require.True(t, errors.As(skipped[0], &missing))
	assert.Equal(t, "Title", missing.Field)
	require.True(t, errors.As(skipped[1], &missing))
	assert.Equal(t, "imdbID", missing.Field)
}

func TestParseSearch_NoResults(t *testing.T) {
	_, _, err := ParseSearch(`{"Response":"False","Error":"Movie not found!"}`)
	var missing *FieldMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Search", missing.Field)
	assert.Contains(t, err.Error(), "Movie not found!")
}

func TestParseDetails_Titanic(t *testing.T) {
	movie, err := ParseDetails(readFixture(t, "details_titanic.json"))
	require.NoError(t, err)

	assert.Equal(t, "Titanic", movie.Title)
	assert.Equal(t, 1997, movie.Year)
	assert.Equal(t, "tt0120338", movie.IMDBID)
	assert.Equal(t, "James Cameron", movie.Director)
	assert.Equal(t, "Drama, Romance", movie.Genre)
	assert.Equal(t, "7.9/10", movie.RatingText, "first rating wins")
	assert.Equal(t, "194 min", movie.RuntimeText)
	assert.NotEmpty(t, movie.Plot)
	assert.True(t, movie.HasDetails())
}

func TestParseDetails_FallsBackToIMDbRating(t *testing.T) {
	movie, err := ParseDetails(`{"Title":"Ghost","Year":"1990","Runtime":"127 min","Director":"Jerry Zucker","imdbRating":"7.1","Response":"True"}`)
	require.NoError(t, err)
	assert.Equal(t, "7.1/10", movie.RatingText)
}

func TestParseDetails_MissingFields(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		field   string
	}{
		{"not found", `{"Response":"False","Error":"Movie not found!"}`, "Title"},
		{"no director", `{"Title":"X","Runtime":"90 min","imdbRating":"5.0"}`, "Director"},
		{"no runtime", `{"Title":"X","Director":"Y","imdbRating":"5.0"}`, "Runtime"},
		{"no rating", `{"Title":"X","Director":"Y","Runtime":"90 min","imdbRating":"N/A"}`, "Ratings"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDetails(tc.payload)
			var missing *FieldMissingError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, tc.field, missing.Field)
		})
	}
}

func TestOMDbService_LowercasesQueries(t *testing.T) {
	acq := newFakeAcquirer()
	acq.payloads[cache.Key(testBase, map[string]string{"apikey": "k", "s": "titanic"})] = readFixture(t, "search_titanic.json")
	acq.payloads[cache.Key(testBase, map[string]string{"apikey": "k", "t": "titanic"})] = readFixture(t, "details_titanic.json")
	svc := NewOMDbService(testBase+"/", "k", acq, nil)

	movies, err := svc.SearchMovies(context.Background(), "Titanic")
	require.NoError(t, err)
	assert.Len(t, movies, 2)

	movie, err := svc.GetMovieDetails(context.Background(), "TITANIC")
	require.NoError(t, err)
	assert.Equal(t, "James Cameron", movie.Director)
}

func TestOMDbService_PropagatesFetchFailure(t *testing.T) {
	svc := NewOMDbService(testBase, "k", newFakeAcquirer(), nil)

	_, err := svc.SearchMovies(context.Background(), "Titanic")
	assert.Error(t, err)
	_, err = svc.GetMovieDetails(context.Background(), "Titanic")
	assert.Error(t, err)
}
