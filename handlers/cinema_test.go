package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimmitjoo/cinema/data"
)

func TestListMovies_Empty(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/movies/", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No movies found.", errorDetail(t, rec))
}

func TestListMovies_Pagination(t *testing.T) {
	app := newTestApp(t)
	for i := 1; i <= 25; i++ {
		app.movies.add(fmt.Sprintf("Movie %d", i), 2000+i)
	}

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/movies/?page=2&per_page=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body movieListResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 25, body.TotalItems)
	assert.Equal(t, 3, body.TotalPages)
	assert.Equal(t, 2, body.Page)
	assert.Len(t, body.Movies, 10)
	assert.Equal(t, "Movie 11", body.Movies[0].Name)
	require.NotNil(t, body.Prev)
	require.NotNil(t, body.Next)
	assert.Equal(t, "/cinema/movies/?page=1&per_page=10", *body.Prev)
	assert.Equal(t, "/cinema/movies/?page=3&per_page=10", *body.Next)
}

func TestListMovies_LastPageHasNoNextLink(t *testing.T) {
	app := newTestApp(t)
	for i := 1; i <= 25; i++ {
		app.movies.add(fmt.Sprintf("Movie %d", i), 2000+i)
	}

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/movies/?page=3&per_page=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body movieListResponse
	decodeBody(t, rec, &body)
	assert.Len(t, body.Movies, 5)
	assert.NotNil(t, body.Prev)
	assert.Nil(t, body.Next)
}

func TestListMovies_PageOutOfRange(t *testing.T) {
	app := newTestApp(t)
	app.movies.add("Only Movie", 2020)

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/movies/?page=5", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Page out of range.", errorDetail(t, rec))
}

func TestListMovies_InvalidQuery(t *testing.T) {
	app := newTestApp(t)
	app.movies.add("Only Movie", 2020)

	for _, target := range []string{
		"/api/v1/cinema/movies/?page=0",
		"/api/v1/cinema/movies/?page=abc",
		"/api/v1/cinema/movies/?per_page=0",
		"/api/v1/cinema/movies/?per_page=21",
		"/api/v1/cinema/movies/?year=x",
	} {
		rec := app.request(t, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetMovie(t *testing.T) {
	app := newTestApp(t)
	item := app.movies.add("Inception", 2010)

	rec := app.request(t, http.MethodGet, fmt.Sprintf("/api/v1/cinema/movies/%d/", item.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body data.Movie
	decodeBody(t, rec, &body)
	assert.Equal(t, "Inception", body.Name)
	assert.Equal(t, 2010, body.Year)
}

func TestGetMovie_NotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/movies/99/", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Movie with the given ID was not found.", errorDetail(t, rec))
}

func TestCreateMovie(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "mod@example.com", "secret-password", data.GroupModerator)

	rec := app.request(t, http.MethodPost, "/api/v1/cinema/movies/", token, map[string]interface{}{
		"name": "Inception", "year": 2010, "duration": 148,
		"imdb": 8.8, "certification": "PG13", "price": 12.5, "country": "US",
		"genres": []string{"Sci-Fi"}, "directors": []string{"Christopher Nolan"},
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var body data.MovieListItem
	decodeBody(t, rec, &body)
	assert.Equal(t, "Inception", body.Name)
	assert.NotEmpty(t, body.UUID)
}

func TestCreateMovie_Duplicate(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "mod@example.com", "secret-password", data.GroupModerator)
	app.movies.add("Inception", 2010)

	rec := app.request(t, http.MethodPost, "/api/v1/cinema/movies/", token, map[string]interface{}{
		"name": "Inception", "year": 2010, "duration": 148,
		"imdb": 8.8, "certification": "PG13", "price": 12.5, "country": "US",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t,
		"A movie with the name 'Inception' and release year '2010' already exists.",
		errorDetail(t, rec))
}

func TestCreateMovie_InvalidPayload(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "mod@example.com", "secret-password", data.GroupModerator)

	rec := app.request(t, http.MethodPost, "/api/v1/cinema/movies/", token, map[string]interface{}{
		"name": "", "year": 2010, "duration": 148,
		"imdb": 8.8, "certification": "PG13", "price": 12.5, "country": "US",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input data.", errorDetail(t, rec))
}

func TestCreateMovie_RequiresStaff(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "user@example.com", "secret-password", data.GroupUser)

	rec := app.request(t, http.MethodPost, "/api/v1/cinema/movies/", token, map[string]interface{}{
		"name": "Inception", "year": 2010, "duration": 148,
		"imdb": 8.8, "certification": "PG13", "price": 12.5, "country": "US",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateMovie(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "mod@example.com", "secret-password", data.GroupModerator)
	item := app.movies.add("Inception", 2010)

	rec := app.request(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/cinema/movies/%d/", item.ID), token,
		map[string]interface{}{"price": 15.0})

	require.Equal(t, http.StatusOK, rec.Code)

	var body data.MovieListItem
	decodeBody(t, rec, &body)
	assert.Equal(t, 15.0, body.Price)
}

func TestUpdateMovie_NoFieldsUnknownMovie(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "mod@example.com", "secret-password", data.GroupModerator)

	rec := app.request(t, http.MethodPatch, "/api/v1/cinema/movies/999/", token,
		map[string]interface{}{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Movie with the given ID was not found.", errorDetail(t, rec))
}

func TestDeleteMovie(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "mod@example.com", "secret-password", data.GroupModerator)
	item := app.movies.add("Inception", 2010)

	rec := app.request(t, http.MethodDelete,
		fmt.Sprintf("/api/v1/cinema/movies/%d/", item.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(t, http.MethodGet, fmt.Sprintf("/api/v1/cinema/movies/%d/", item.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListGenres(t *testing.T) {
	app := newTestApp(t)
	app.genres.genres[1] = data.GenreWithCount{ID: 1, Name: "Drama", MoviesCount: 3}
	app.genres.genres[2] = data.GenreWithCount{ID: 2, Name: "Sci-Fi", MoviesCount: 1}

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/genres/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body genreListResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 2, body.Total)
	assert.Len(t, body.Genres, 2)
	assert.Equal(t, "Drama", body.Genres[0].Name)
}

func TestListGenres_Empty(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/genres/", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No genres found.", errorDetail(t, rec))
}

func TestGetGenre(t *testing.T) {
	app := newTestApp(t)
	app.genres.genres[1] = data.GenreWithCount{ID: 1, Name: "Drama", MoviesCount: 1}
	app.genres.movies[1] = []data.MovieListItem{{ID: 7, Name: "Whiplash", Year: 2014}}

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/genres/1/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body genreDetailResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "Drama", body.Name)
	require.Len(t, body.Movies, 1)
	assert.Equal(t, "Whiplash", body.Movies[0].Name)
}

func TestGetGenre_NotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/v1/cinema/genres/9/", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Genre with the given ID was not found.", errorDetail(t, rec))
}

func TestComments_CreateListUpdateDelete(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "user@example.com", "secret-password", data.GroupUser)
	item := app.movies.add("Inception", 2010)
	base := fmt.Sprintf("/api/v1/cinema/movies/%d/comments/", item.ID)

	rec := app.request(t, http.MethodPost, base, token, map[string]string{"comment": "Great movie"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created data.Comment
	decodeBody(t, rec, &created)
	assert.Equal(t, "Great movie", created.Comment)

	rec = app.request(t, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []data.Comment
	decodeBody(t, rec, &listed)
	require.Len(t, listed, 1)

	rec = app.request(t, http.MethodPut,
		fmt.Sprintf("%s%d/", base, created.ID), token, map[string]string{"comment": "Changed my mind"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated data.Comment
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Changed my mind", updated.Comment)

	rec = app.request(t, http.MethodDelete, fmt.Sprintf("%s%d/", base, created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUpdateComment_AuthorOrStaff(t *testing.T) {
	app := newTestApp(t)
	author, _ := app.createUser(t, "author@example.com", "secret-password", data.GroupUser)
	_, otherToken := app.createUser(t, "other@example.com", "secret-password", data.GroupUser)
	_, modToken := app.createUser(t, "mod@example.com", "secret-password", data.GroupModerator)
	item := app.movies.add("Inception", 2010)

	comment, err := app.comments.Create(context.Background(), author.ID, item.ID, "Mine")
	require.NoError(t, err)
	target := fmt.Sprintf("/api/v1/cinema/movies/%d/comments/%d/", item.ID, comment.ID)

	rec := app.request(t, http.MethodPut, target, otherToken, map[string]string{"comment": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You can't update this comment.", errorDetail(t, rec))

	// Moderators may edit any comment
	rec = app.request(t, http.MethodPut, target, modToken, map[string]string{"comment": "Moderated"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated data.Comment
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Moderated", updated.Comment)
}

func TestDeleteComment_StaffMayDelete(t *testing.T) {
	app := newTestApp(t)
	author, _ := app.createUser(t, "author@example.com", "secret-password", data.GroupUser)
	_, otherToken := app.createUser(t, "other@example.com", "secret-password", data.GroupUser)
	_, modToken := app.createUser(t, "mod@example.com", "secret-password", data.GroupModerator)
	item := app.movies.add("Inception", 2010)

	comment, err := app.comments.Create(context.Background(), author.ID, item.ID, "Mine")
	require.NoError(t, err)
	target := fmt.Sprintf("/api/v1/cinema/movies/%d/comments/%d/", item.ID, comment.ID)

	rec := app.request(t, http.MethodDelete, target, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You can't delete this comment.", errorDetail(t, rec))

	rec = app.request(t, http.MethodDelete, target, modToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateMovie_Toggle(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "user@example.com", "secret-password", data.GroupUser)
	item := app.movies.add("Inception", 2010)
	target := fmt.Sprintf("/api/v1/cinema/movies/%d/ratings/", item.ID)

	// First rating creates
	rec := app.request(t, http.MethodPost, target, token, map[string]int{"rating": 8})
	require.Equal(t, http.StatusCreated, rec.Code)

	// A different value updates
	rec = app.request(t, http.MethodPost, target, token, map[string]int{"rating": 9})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated data.Rating
	decodeBody(t, rec, &updated)
	assert.Equal(t, 9, updated.Rating)

	// The same value removes
	rec = app.request(t, http.MethodPost, target, token, map[string]int{"rating": 9})
	require.Equal(t, http.StatusOK, rec.Code)

	var removed map[string]string
	decodeBody(t, rec, &removed)
	assert.Equal(t, "Your rating was removed.", removed["message"])
}

func TestRateMovie_InvalidValue(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "user@example.com", "secret-password", data.GroupUser)
	item := app.movies.add("Inception", 2010)

	rec := app.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/cinema/movies/%d/ratings/", item.ID), token, map[string]int{"rating": 11})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input data.", errorDetail(t, rec))
}

func TestReactToMovie_Toggle(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "user@example.com", "secret-password", data.GroupUser)
	item := app.movies.add("Inception", 2010)
	target := fmt.Sprintf("/api/v1/cinema/movies/%d/reactions/", item.ID)

	rec := app.request(t, http.MethodPost, target, token, map[string]string{"reaction": data.ReactionLike})
	require.Equal(t, http.StatusCreated, rec.Code)

	// The opposite reaction flips
	rec = app.request(t, http.MethodPost, target, token, map[string]string{"reaction": data.ReactionDislike})
	require.Equal(t, http.StatusOK, rec.Code)

	var flipped data.Reaction
	decodeBody(t, rec, &flipped)
	assert.Equal(t, data.ReactionDislike, flipped.Reaction)

	// Repeating removes
	rec = app.request(t, http.MethodPost, target, token, map[string]string{"reaction": data.ReactionDislike})
	require.Equal(t, http.StatusOK, rec.Code)

	var removed map[string]string
	decodeBody(t, rec, &removed)
	assert.Equal(t, "Your reaction was removed.", removed["message"])
}

func TestFavourites(t *testing.T) {
	app := newTestApp(t)
	_, token := app.createUser(t, "user@example.com", "secret-password", data.GroupUser)
	item := app.movies.add("Inception", 2010)
	target := fmt.Sprintf("/api/v1/accounts/user/favourites/%d/", item.ID)

	// An empty list is still a 200
	rec := app.request(t, http.MethodGet, "/api/v1/accounts/user/favourites/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var empty []data.MovieListItem
	decodeBody(t, rec, &empty)
	assert.Empty(t, empty)

	// Add
	rec = app.request(t, http.MethodPost, target, token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Adding twice conflicts
	rec = app.request(t, http.MethodPost, target, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Movie already in favourites.", errorDetail(t, rec))

	// List
	rec = app.request(t, http.MethodGet, "/api/v1/accounts/user/favourites/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []data.MovieListItem
	decodeBody(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Inception", listed[0].Name)

	// Remove
	rec = app.request(t, http.MethodDelete, target, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Removing again is a 404
	rec = app.request(t, http.MethodDelete, target, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Movie not in favourites.", errorDetail(t, rec))
}

func TestFavourites_RequireAuth(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/v1/accounts/user/favourites/", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthCheck_NoDatabase(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthenticate_BadHeader(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/v1/accounts/change-password/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := app.request(t, http.MethodPost, "/api/v1/accounts/change-password/", "not-a-jwt", nil)
	assert.Equal(t, http.StatusBadRequest, req.Code)
	assert.Equal(t, "Invalid or expired token.", errorDetail(t, req))
}
