package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/cache"
	"github.com/jimmitjoo/cinema/data"
)

const (
	defaultPerPage = 10
	maxPerPage     = 20

	movieCacheTTLSeconds = 300
)

type movieListResponse struct {
	Movies     []data.MovieListItem `json:"movies"`
	TotalItems int                  `json:"total_items"`
	TotalPages int                  `json:"total_pages"`
	Page       int                  `json:"page"`
	PerPage    int                  `json:"per_page"`
	Prev       *string              `json:"prev_page"`
	Next       *string              `json:"next_page"`
}

// ListMovies returns a paginated, filterable movie page
func (h *Handlers) ListMovies(w http.ResponseWriter, r *http.Request) {
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

	filter := data.MovieFilter{
		Search:    query.Get("search"),
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
		Offset:    (page - 1) * perPage,
		Limit:     perPage,
	}
	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "Invalid input data.")
			return
		}
		filter.Year = year
	}
	if raw := query.Get("imdb"); raw != "" {
		imdb, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "Invalid input data.")
			return
		}
		filter.MinIMDB = imdb
	}

	total, err := h.Movies.Count(r.Context(), filter)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	if total == 0 {
		api.Error(w, http.StatusNotFound, "No movies found.")
		return
	}

	lastPage := (total + perPage - 1) / perPage
	if page > lastPage {
		api.Error(w, http.StatusNotFound, "Page out of range.")
		return
	}

	movies, err := h.Movies.List(r.Context(), filter)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	response := movieListResponse{
		Movies:     movies,
		TotalItems: total,
		TotalPages: lastPage,
		Page:       page,
		PerPage:    perPage,
	}
	if page > 1 {
		response.Prev = pageLink(page-1, perPage)
	}
	if page < lastPage {
		response.Next = pageLink(page+1, perPage)
	}

	api.JSON(w, http.StatusOK, response)
}

func pageLink(page, perPage int) *string {
	link := fmt.Sprintf("/cinema/movies/?page=%d&per_page=%d", page, perPage)
	return &link
}

type movieCreateRequest struct {
	Name          string   `json:"name"`
	Year          int      `json:"year"`
	Duration      int      `json:"duration"`
	IMDB          float64  `json:"imdb"`
	IMDBVotes     int      `json:"imdb_votes"`
	Description   string   `json:"description"`
	Budget        float64  `json:"budget"`
	Revenue       float64  `json:"revenue"`
	Certification string   `json:"certification"`
	Price         float64  `json:"price"`
	CountryCode   string   `json:"country"`
	Genres        []string `json:"genres"`
	Actors        []string `json:"actors"`
	Directors     []string `json:"directors"`
	Languages     []string `json:"languages"`
}

func (m movieCreateRequest) validate() error {
	switch {
	case m.Name == "":
		return errors.New("name is required")
	case m.Year < 1888:
		return errors.New("year is out of range")
	case m.Duration <= 0:
		return errors.New("duration must be positive")
	case m.IMDB < 0 || m.IMDB > 10:
		return errors.New("imdb is out of range")
	case !data.ValidCertification(m.Certification):
		return errors.New("unknown certification")
	case m.Price < 0:
		return errors.New("price must not be negative")
	case len(m.CountryCode) != 2:
		return errors.New("country must be a two-letter code")
	}
	return nil
}

// CreateMovie adds a movie with its genres, cast and languages (staff only)
func (h *Handlers) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var payload movieCreateRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	if err := payload.validate(); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	exists, err := h.Movies.Exists(r.Context(), payload.Name, payload.Year)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}
	if exists {
		api.Error(w, http.StatusConflict, fmt.Sprintf(
			"A movie with the name '%s' and release year '%d' already exists.",
			payload.Name, payload.Year))
		return
	}

	input := data.MovieInput{
		UUID:          uuid.NewString(),
		Name:          payload.Name,
		Year:          payload.Year,
		Duration:      payload.Duration,
		IMDB:          payload.IMDB,
		IMDBVotes:     payload.IMDBVotes,
		Description:   payload.Description,
		Budget:        payload.Budget,
		Revenue:       payload.Revenue,
		Certification: payload.Certification,
		Price:         payload.Price,
		CountryCode:   payload.CountryCode,
		Genres:        payload.Genres,
		Actors:        payload.Actors,
		Directors:     payload.Directors,
		Languages:     payload.Languages,
	}

	id, err := h.Movies.Create(r.Context(), input)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	item, err := h.Movies.GetListItem(r.Context(), id)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusCreated, item)
}

// GetMovie returns the full movie detail; hot entries come from the cache
func (h *Handlers) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	cacheKey := fmt.Sprintf("movie:%d", movieID)
	if cached, err := h.Cache.Get(cacheKey); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	} else if !errors.Is(err, cache.ErrMiss) {
		h.Log.Warn("movie cache read failed", map[string]interface{}{
			"movie_id": movieID, "error": err.Error(),
		})
	}

	movie, err := h.Movies.GetDetail(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	body, err := json.Marshal(movie)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}
	if err := h.Cache.Set(cacheKey, body, movieCacheTTLSeconds); err != nil {
		h.Log.Warn("movie cache write failed", map[string]interface{}{
			"movie_id": movieID, "error": err.Error(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type movieUpdateRequest struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Duration    *int     `json:"duration"`
	IMDB        *float64 `json:"imdb"`
	IMDBVotes   *int     `json:"imdb_votes"`
	Description *string  `json:"description"`
	Budget      *float64 `json:"budget"`
	Revenue     *float64 `json:"revenue"`
	Price       *float64 `json:"price"`
}

func (m movieUpdateRequest) validate() error {
	switch {
	case m.Name != nil && *m.Name == "":
		return errors.New("name must not be empty")
	case m.Year != nil && *m.Year < 1888:
		return errors.New("year is out of range")
	case m.Duration != nil && *m.Duration <= 0:
		return errors.New("duration must be positive")
	case m.IMDB != nil && (*m.IMDB < 0 || *m.IMDB > 10):
		return errors.New("imdb is out of range")
	case m.Price != nil && *m.Price < 0:
		return errors.New("price must not be negative")
	}
	return nil
}

// UpdateMovie applies a partial update to a movie (staff only)
func (h *Handlers) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	var payload movieUpdateRequest
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}
	if err := payload.validate(); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid input data.")
		return
	}

	update := data.MovieUpdate{
		Name:        payload.Name,
		Year:        payload.Year,
		Duration:    payload.Duration,
		IMDB:        payload.IMDB,
		IMDBVotes:   payload.IMDBVotes,
		Description: payload.Description,
		Budget:      payload.Budget,
		Revenue:     payload.Revenue,
		Price:       payload.Price,
	}

	if err := h.Movies.Update(r.Context(), movieID, update); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	h.forgetMovie(movieID)

	item, err := h.Movies.GetListItem(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	api.JSON(w, http.StatusOK, item)
}

// DeleteMovie removes a movie and everything attached to it (staff only)
func (h *Handlers) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(r, "movie_id")
	if !ok {
		api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
		return
	}

	if err := h.Movies.Delete(r.Context(), movieID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "Movie with the given ID was not found.")
			return
		}
		api.Error(w, http.StatusInternalServerError, "An error occurred while processing the request.")
		return
	}

	h.forgetMovie(movieID)

	api.NoContent(w)
}

func (h *Handlers) forgetMovie(movieID int64) {
	if err := h.Cache.Forget(fmt.Sprintf("movie:%d", movieID)); err != nil {
		h.Log.Warn("movie cache invalidation failed", map[string]interface{}{
			"movie_id": movieID, "error": err.Error(),
		})
	}
}
