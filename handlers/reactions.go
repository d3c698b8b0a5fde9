package handlers

import (
	"errors"
	"net/http"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/data"
)

type reactionRequest struct {
	Reaction string `json:"reaction"`
}

// ReactToMovie toggles the caller's like or dislike on a movie: repeating the
// current reaction removes it, the opposite one flips it.
func (h *Handlers) ReactToMovie(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	var payload reactionRequest
	if err := api.DecodeJSON(r, &payload); err != nil || !data.ValidReaction(payload.Reaction) {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	if _, err := h.Movies.GetListItem(r.Context(), movieID); err != nil {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	existing, err := h.Reactions.Get(r.Context(), user.ID, movieID)
	switch {
	case errors.Is(err, data.ErrNotFound):
		reaction, err := h.Reactions.Create(r.Context(), user.ID, movieID, payload.Reaction)
		if err != nil {
			api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
			return
		}
		h.forgetMovie(movieID)
		api.JSON(w, http.StatusCreated, reaction)

	case err != nil:
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")

	case existing.Reaction == payload.Reaction:
		if err := h.Reactions.Delete(r.Context(), existing.ID); err != nil {
			api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
			return
		}
		h.forgetMovie(movieID)
		api.JSON(w, http.StatusOK, map[string]string{"message": "Your reaction was removed."})

	default:
		if err := h.Reactions.Update(r.Context(), existing.ID, payload.Reaction); err != nil {
			api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
			return
		}
		existing.Reaction = payload.Reaction
		h.forgetMovie(movieID)
		api.JSON(w, http.StatusOK, existing)
	}
}
