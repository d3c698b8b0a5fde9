package handlers

import (
	"errors"
	"net/http"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/data"
)

// AddFavourite puts a movie on the caller's favourites list
func (h *Handlers) AddFavourite(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	if _, err := h.Movies.GetListItem(r.Context(), movieID); err != nil {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	if err := h.Favourites.Add(r.Context(), user.ID, movieID); err != nil {
		if errors.Is(err, data.ErrAlreadyExists) {
			api.Error(w, http.StatusConflict, "Movie already in favourites.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusCreated, map[string]string{"message": "Movie added to favourites."})
}

// RemoveFavourite takes a movie off the caller's favourites list
func (h *Handlers) RemoveFavourite(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	if err := h.Favourites.Remove(r.Context(), user.ID, movieID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "Movie not in favourites.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.NoContent(w)
}

// ListFavourites returns the caller's favourite movies
func (h *Handlers) ListFavourites(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	movies, err := h.Favourites.Movies(r.Context(), user.ID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusOK, movies)
}
