package handlers

import (
	"errors"
	"net/http"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/data"
)

type commentRequest struct {
	Comment string `json:"comment"`
}

// CreateComment attaches a comment to a movie
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	var payload commentRequest
	if err := api.DecodeJSON(r, &payload); err != nil || payload.Comment == "" {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	if _, err := h.Movies.GetListItem(r.Context(), movieID); err != nil {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	comment, err := h.Comments.Create(r.Context(), user.ID, movieID, payload.Comment)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	h.forgetMovie(movieID)

	api.JSON(w, http.StatusCreated, comment)
}

// ListComments returns every comment on a movie
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	if _, err := h.Movies.GetListItem(r.Context(), movieID); err != nil {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	comments, err := h.Comments.ListByMovie(r.Context(), movieID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusOK, comments)
}

// UpdateComment edits a comment. The author and staff may edit it.
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	movieID, okMovie := idParam(r, "movie_id")
	commentID, okComment := idParam(r, "comment_id")
	if !okMovie || !okComment {
		api.Error(w, http.StatusNotFound, "Comment not found.")
		return
	}

	var payload commentRequest
	if err := api.DecodeJSON(r, &payload); err != nil || payload.Comment == "" {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	comment, err := h.Comments.Get(r.Context(), commentID, movieID)
	if err != nil {
		api.Error(w, http.StatusNotFound, "Comment not found.")
		return
	}

	if comment.UserID != user.ID && !user.IsStaff() {
		api.Error(w, http.StatusForbidden, "You can't update this comment.")
		return
	}

	updated, err := h.Comments.Update(r.Context(), commentID, payload.Comment)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	h.forgetMovie(movieID)

	api.JSON(w, http.StatusOK, updated)
}

// DeleteComment removes a comment. The author and staff may delete it.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	movieID, okMovie := idParam(r, "movie_id")
	commentID, okComment := idParam(r, "comment_id")
	if !okMovie || !okComment {
		api.Error(w, http.StatusNotFound, "Comment not found.")
		return
	}

	comment, err := h.Comments.Get(r.Context(), commentID, movieID)
	if err != nil {
		api.Error(w, http.StatusNotFound, "Comment not found.")
		return
	}

	if comment.UserID != user.ID && !user.IsStaff() {
		api.Error(w, http.StatusForbidden, "You can't delete this comment.")
		return
	}

	if err := h.Comments.Delete(r.Context(), commentID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "Comment not found.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	h.forgetMovie(movieID)

	api.NoContent(w)
}
