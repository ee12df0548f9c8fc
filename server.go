package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"moviecache/library"
	"moviecache/models"
	"moviecache/repository"
)

// App serves the stored library over HTTP
type App struct {
	library *library.Library
	logger  *zap.Logger
}

type watchRequest struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

func (app *App) router() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", app.healthHandler).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/movies", app.getMoviesHandler).Methods("GET")
	api.HandleFunc("/movies/{id}", app.getMovieByIDHandler).Methods("GET")
	api.HandleFunc("/movies/{id}/actors", app.getMovieActorsHandler).Methods("GET")
	api.HandleFunc("/actors", app.getActorsHandler).Methods("GET")
	api.HandleFunc("/watchlist", app.getWatchListHandler).Methods("GET")
	api.HandleFunc("/watchlist", app.addToWatchListHandler).Methods("POST")

	return r
}

func (app *App) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (app *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("Error encoding response", zap.Error(err))
	}
}

func (app *App) getMoviesHandler(w http.ResponseWriter, _ *http.Request) {
	movies, err := app.library.Movies().GetAll()
	if err != nil {
		app.logger.Error("Error getting movies", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	app.writeJSON(w, http.StatusOK, movies)
}

// movieFromPath resolves the {id} route variable, writing the error response itself
func (app *App) movieFromPath(w http.ResponseWriter, r *http.Request) (*models.Movie, bool) {
	movieID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid movie ID", http.StatusBadRequest)
		return nil, false
	}

	movie, err := app.library.Movies().GetByID(movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Movie not found", http.StatusNotFound)
			return nil, false
		}
		app.logger.Error("Error getting movie by ID", zap.Int("id", movieID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return movie, true
}

func (app *App) getMovieByIDHandler(w http.ResponseWriter, r *http.Request) {
	movie, ok := app.movieFromPath(w, r)
	if !ok {
		return
	}
	app.writeJSON(w, http.StatusOK, movie)
}

func (app *App) getMovieActorsHandler(w http.ResponseWriter, r *http.Request) {
	movie, ok := app.movieFromPath(w, r)
	if !ok {
		return
	}

	actors, err := app.library.Actors().GetByMovieID(movie.ID)
	if err != nil {
		app.logger.Error("Error getting actors for movie", zap.Int("id", movie.ID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if actors == nil {
		actors = []models.Actor{}
	}
	app.writeJSON(w, http.StatusOK, actors)
}

func (app *App) getActorsHandler(w http.ResponseWriter, _ *http.Request) {
	actors, err := app.library.Actors().GetAll()
	if err != nil {
		app.logger.Error("Error getting actors", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if actors == nil {
		actors = []models.Actor{}
	}
	app.writeJSON(w, http.StatusOK, actors)
}

func (app *App) getWatchListHandler(w http.ResponseWriter, _ *http.Request) {
	entries, err := app.library.WatchList().GetAll()
	if err != nil {
		app.logger.Error("Error getting watch list", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.WatchListEntry{}
	}
	app.writeJSON(w, http.StatusOK, entries)
}

func (app *App) addToWatchListHandler(w http.ResponseWriter, r *http.Request) {
	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	_, created, err := app.library.InsertWatchlistEntry(models.Movie{Title: title, Year: req.Year})
	if err != nil {
		var refErr *repository.ReferentialIntegrityError
		if errors.As(err, &refErr) {
			http.Error(w, "Movie is not in the library", http.StatusUnprocessableEntity)
			return
		}
		app.logger.Error("Error adding to watch list", zap.String("title", title), zap.Error(err))
		http.Error(w, "Failed to add to watch list", http.StatusInternalServerError)
		return
	}

	entry, err := app.library.WatchList().GetByTitle(title)
	if err != nil {
		app.logger.Error("Error reading watch list entry", zap.String("title", title), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	app.writeJSON(w, status, entry)
}
