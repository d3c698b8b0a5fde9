package handlers

import (
	"errors"
	"net/http"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/data"
)

type ratingRequest struct {
	Rating int `json:"rating"`
}

// RateMovie toggles the caller's rating on a movie: a new value creates or
// updates it, repeating the current value removes it.
func (h *Handlers) RateMovie(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	var payload ratingRequest
	if err := api.DecodeJSON(r, &payload); err != nil || !data.ValidRating(payload.Rating) {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	if _, err := h.Movies.GetListItem(r.Context(), movieID); err != nil {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	existing, err := h.Ratings.Get(r.Context(), user.ID, movieID)
	switch {
	case errors.Is(err, data.ErrNotFound):
		rating, err := h.Ratings.Create(r.Context(), user.ID, movieID, payload.Rating)
		if err != nil {
			api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
			return
		}
		h.forgetMovie(movieID)
		api.JSON(w, http.StatusCreated, rating)

	case err != nil:
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")

	case existing.Rating == payload.Rating:
		if err := h.Ratings.Delete(r.Context(), existing.ID); err != nil {
			api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
			return
		}
		h.forgetMovie(movieID)
		api.JSON(w, http.StatusOK, map[string]string{"message": "Your rating was removed."})

	default:
		if err := h.Ratings.Update(r.Context(), existing.ID, payload.Rating); err != nil {
			api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
			return
		}
		existing.Rating = payload.Rating
		h.forgetMovie(movieID)
		api.JSON(w, http.StatusOK, existing)
	}
}
