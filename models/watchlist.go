package models

// WatchListEntry is a movie the user intends to watch. MovieID must point at a stored movie.
type WatchListEntry struct {
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Year    int     `json:"year,omitempty"`
	Rating  float64 `json:"rating,omitempty"`
	MovieID int     `json:"movie_id"`
}
