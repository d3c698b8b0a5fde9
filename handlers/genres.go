package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/data"
)

type genreListResponse struct {
	Genres  []data.GenreWithCount `json:"genres"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

// ListGenres returns all genres with their movie counts
func (h *Handlers) ListGenres(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.Error(w, http.StatusBadRequest, "Invalid input data.")
			return
		}
		page = parsed
	}

	perPage := defaultPerPage
	if raw := query.Get("per_page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPerPage {
			api.Error(w, http.StatusBadRequest, "Invalid input data.")
			return
		}
		perPage = parsed
	}

	total, err := h.Genres.Count(r.Context())
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	if total == 0 {
		api.Error(w, http.StatusNotFound, "No genres found.")
		return
	}

	genres, err := h.Genres.ListWithCounts(r.Context(), (page-1)*perPage, perPage)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	if len(genres) == 0 {
		api.Error(w, http.StatusNotFound, "Page out of range.")
		return
	}

	api.JSON(w, http.StatusOK, genreListResponse{
		Genres:  genres,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

type genreDetailResponse struct {
	data.Genre
	Movies []data.MovieListItem `json:"movies"`
}

// GetGenre returns one genre with the movies attached to it
func (h *Handlers) GetGenre(w http.ResponseWriter, r *http.Request) {
	genreID, ok := idParam(r, "genre_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Genre with the given ID was not found.")
		return
	}

	genre, err := h.Genres.Get(r.Context(), genreID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "Genre with the given ID was not found.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	movies, err := h.Genres.Movies(r.Context(), genreID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusOK, genreDetailResponse{Genre: *genre, Movies: movies})
}
