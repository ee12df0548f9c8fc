// Package models defines the data structures used throughout the application.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Movie represents a movie record as fetched from OMDb and stored in Movies
type Movie struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Year     int     `json:"year,omitempty"`
	IMDBID   string  `json:"imdb_id,omitempty"`
	Director string  `json:"director,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Runtime  int     `json:"runtime,omitempty"` // in minutes
	Poster   string  `json:"poster,omitempty"`
	Genre    string  `json:"genre,omitempty"`
	Plot     string  `json:"plot,omitempty"`

	// Raw upstream forms, e.g. "7.9/10" and "194 min". Parsed on insert.
	RatingText  string `json:"-"`
	RuntimeText string `json:"-"`
}

// Info returns the one-line description used in listings
func (m Movie) Info() string {
	return fmt.Sprintf("%s (%d) imdbID: %s", m.Title, m.Year, m.IMDBID)
}

// HasDetails reports whether the detail-only fields have been populated
func (m Movie) HasDetails() bool {
	return m.Director != "" && m.RatingText != "" && m.RuntimeText != ""
}

// ParseRating converts an OMDb rating such as "7.9/10" into 7.9.
// "N/A" and empty values yield 0.
func ParseRating(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, nil
	}
	value := strings.TrimSpace(strings.SplitN(s, "/", 2)[0])
	rating, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rating %q: %w", s, err)
	}
	return rating, nil
}

// ParseRuntime converts an OMDb runtime such as "194 min" into minutes
func ParseRuntime(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, nil
	}
	value := strings.Fields(s)[0]
	runtime, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid runtime %q: %w", s, err)
	}
	return runtime, nil
}

// ParseYear reads the leading year from values like "1997" or "2011–2019"
func ParseYear(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && end < 4 && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end != 4 {
		return 0
	}
	year, _ := strconv.Atoi(s[:end])
	return year
}
