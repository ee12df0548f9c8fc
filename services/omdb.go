package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"moviecache/models"
)

// DefaultOMDbURL is the public OMDb endpoint
const DefaultOMDbURL = "http://www.omdbapi.com"

// OMDbService handles interactions with the OMDb API
type OMDbService struct {
	baseURL string
	apiKey  string
	acq     Acquirer
	logger  *zap.Logger
}

// OMDbSearchResponse is the payload of an s= search
type OMDbSearchResponse struct {
	Search   []OMDbSummary `json:"Search"`
	Response string        `json:"Response"`
	Error    string        `json:"Error"`
}

// OMDbSummary is one entry of a search result
type OMDbSummary struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDBID string `json:"imdbID"`
	Poster string `json:"Poster"`
}

// OMDbMovie is the payload of a t= title lookup
type OMDbMovie struct {
	Title      string       `json:"Title"`
	Year       string       `json:"Year"`
	IMDBID     string       `json:"imdbID"`
	Poster     string       `json:"Poster"`
	Genre      string       `json:"Genre"`
	Runtime    string       `json:"Runtime"`
	Director   string       `json:"Director"`
	Plot       string       `json:"Plot"`
	Ratings    []OMDbRating `json:"Ratings"`
	IMDBRating string       `json:"imdbRating"`
	Response   string       `json:"Response"`
	Error      string       `json:"Error"`
}

// OMDbRating is a single source/value pair, e.g. "Internet Movie Database" / "7.9/10"
type OMDbRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// NewOMDbService creates a new OMDb service instance
func NewOMDbService(baseURL, apiKey string, acq Acquirer, logger *zap.Logger) *OMDbService {
	if baseURL == "" {
		baseURL = DefaultOMDbURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OMDbService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		acq:     acq,
		logger:  logger,
	}
}

// SearchMovies returns summary records for title. Summaries lacking a title or
// imdbID are skipped.
func (s *OMDbService) SearchMovies(ctx context.Context, title string) ([]models.Movie, error) {
	params := map[string]string{"apikey": s.apiKey, "s": strings.ToLower(title)}
	payload, err := s.acq.Acquire(ctx, s.baseURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search OMDb for %q: %w", title, err)
	}

	movies, skipped, err := ParseSearch(payload)
	if err != nil {
		return nil, err
	}
	for _, reason := range skipped {
		s.logger.Warn("skipping search result", zap.String("query", title), zap.Error(reason))
	}
	return movies, nil
}

// GetMovieDetails looks up title and returns the full record
func (s *OMDbService) GetMovieDetails(ctx context.Context, title string) (models.Movie, error) {
	params := map[string]string{"apikey": s.apiKey, "t": strings.ToLower(title)}
	payload, err := s.acq.Acquire(ctx, s.baseURL, params)
	if err != nil {
		return models.Movie{}, fmt.Errorf("failed to fetch OMDb details for %q: %w", title, err)
	}
	return ParseDetails(payload)
}

// ParseSearch decodes a search payload. The returned skip errors describe
// summaries that were dropped.
func ParseSearch(payload string) ([]models.Movie, []error, error) {
	var resp OMDbSearchResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to decode OMDb search response: %w", err)
	}
	if resp.Search == nil {
		return nil, nil, &FieldMissingError{Entity: "search", Field: "Search", Reason: resp.Error}
	}

	var skipped []error
	movies := make([]models.Movie, 0, len(resp.Search))
	for _, item := range resp.Search {
		switch {
		case strings.TrimSpace(item.Title) == "":
			skipped = append(skipped, &FieldMissingError{Entity: "search result " + item.IMDBID, Field: "Title"})
			continue
		case strings.TrimSpace(item.IMDBID) == "":
			skipped = append(skipped, &FieldMissingError{Entity: "search result " + item.Title, Field: "imdbID"})
			continue
		}
		movies = append(movies, models.Movie{
			Title:  strings.TrimSpace(item.Title),
			Year:   models.ParseYear(item.Year),
			IMDBID: strings.TrimSpace(item.IMDBID),
			Poster: naToEmpty(item.Poster),
		})
	}
	return movies, skipped, nil
}

// ParseDetails decodes a title lookup payload. Title, Director, Runtime and a
// rating are required.
func ParseDetails(payload string) (models.Movie, error) {
	var resp OMDbMovie
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return models.Movie{}, fmt.Errorf("failed to decode OMDb movie response: %w", err)
	}

	entity := "movie " + resp.Title
	if resp.Title == "" {
		return models.Movie{}, &FieldMissingError{Entity: "movie", Field: "Title", Reason: resp.Error}
	}
	if resp.Director == "" {
		return models.Movie{}, &FieldMissingError{Entity: entity, Field: "Director"}
	}
	if resp.Runtime == "" {
		return models.Movie{}, &FieldMissingError{Entity: entity, Field: "Runtime"}
	}

	rating := ""
	if len(resp.Ratings) > 0 {
		rating = resp.Ratings[0].Value
	} else if resp.IMDBRating != "" && resp.IMDBRating != "N/A" {
		rating = resp.IMDBRating + "/10"
	}
	if rating == "" {
		return models.Movie{}, &FieldMissingError{Entity: entity, Field: "Ratings"}
	}

	return models.Movie{
		Title:       resp.Title,
		Year:        models.ParseYear(resp.Year),
		IMDBID:      resp.IMDBID,
		Director:    resp.Director,
		Poster:      naToEmpty(resp.Poster),
		Genre:       naToEmpty(resp.Genre),
		Plot:        naToEmpty(resp.Plot),
		RatingText:  rating,
		RuntimeText: resp.Runtime,
	}, nil
}

func naToEmpty(s string) string {
	s = strings.TrimSpace(s)
	if s == "N/A" {
		return ""
	}
	return s
}
