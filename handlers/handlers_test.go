package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jimmitjoo/cinema/auth"
	"github.com/jimmitjoo/cinema/cache"
	"github.com/jimmitjoo/cinema/data"
	"github.com/jimmitjoo/cinema/logging"
)

// ---- stub stores -----------------------------------------------------------

type stubUsers struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*data.User
	refresh map[string]*data.RefreshToken
}

func newStubUsers() *stubUsers {
	return &stubUsers{
		byID:    make(map[int64]*data.User),
		refresh: make(map[string]*data.RefreshToken),
	}
}

var groupIDs = map[string]int64{
	data.GroupUser:      1,
	data.GroupModerator: 2,
	data.GroupAdmin:     3,
}

var groupNames = map[int64]string{1: data.GroupUser, 2: data.GroupModerator, 3: data.GroupAdmin}

func (s *stubUsers) GroupID(_ context.Context, name string) (int64, error) {
	id, ok := groupIDs[name]
	if !ok {
		return 0, data.ErrNotFound
	}
	return id, nil
}

func (s *stubUsers) Create(_ context.Context, email, passwordHash string, groupID int64) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	user := &data.User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		GroupID:      groupID,
		Group:        groupNames[groupID],
		CreatedAt:    time.Now(),
	}
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubUsers) Activate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return data.ErrNotFound
	}
	user.IsActive = true
	return nil
}

func (s *stubUsers) SetPassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return data.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (s *stubUsers) SetGroup(_ context.Context, id, groupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return data.ErrNotFound
	}
	user.GroupID = groupID
	user.Group = groupNames[groupID]
	return nil
}

func (s *stubUsers) StoreRefreshToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh[token] = &data.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (s *stubUsers) GetRefreshToken(_ context.Context, token string) (*data.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.refresh[token]
	if !ok {
		return nil, data.ErrNotFound
	}
	return stored, nil
}

func (s *stubUsers) DeleteRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.refresh[token]; !ok {
		return data.ErrNotFound
	}
	delete(s.refresh, token)
	return nil
}

type stubMovies struct {
	mu      sync.Mutex
	nextID  int64
	items   map[int64]*data.MovieListItem
	details map[int64]*data.Movie
	deleted []int64
}

func newStubMovies() *stubMovies {
	return &stubMovies{
		items:   make(map[int64]*data.MovieListItem),
		details: make(map[int64]*data.Movie),
	}
}

func (s *stubMovies) add(name string, year int) *data.MovieListItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item := &data.MovieListItem{
		ID: s.nextID, UUID: fmt.Sprintf("uuid-%d", s.nextID),
		Name: name, Year: year, Duration: 120, IMDB: 7.5, Price: 9.99,
	}
	s.items[item.ID] = item
	s.details[item.ID] = &data.Movie{
		ID: item.ID, UUID: item.UUID, Name: name, Year: year,
		Duration: 120, IMDB: 7.5, Certification: data.CertificationPG13,
		Genres: []data.Genre{}, Actors: []data.Person{}, Directors: []data.Person{},
		Languages: []data.Language{}, Comments: []data.Comment{},
		Ratings: []data.Rating{}, Reactions: []data.Reaction{},
	}
	return item
}

func (s *stubMovies) Count(_ context.Context, _ data.MovieFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

func (s *stubMovies) List(_ context.Context, filter data.MovieFilter) ([]data.MovieListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []data.MovieListItem
	for id := int64(1); id <= s.nextID; id++ {
		if item, ok := s.items[id]; ok {
			all = append(all, *item)
		}
	}

	if filter.Offset >= len(all) {
		return nil, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], nil
}

func (s *stubMovies) Exists(_ context.Context, name string, year int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Name == name && item.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubMovies) GetListItem(_ context.Context, id int64) (*data.MovieListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubMovies) GetDetail(_ context.Context, id int64) (*data.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	detail, ok := s.details[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	copied := *detail
	return &copied, nil
}

func (s *stubMovies) Create(_ context.Context, input data.MovieInput) (int64, error) {
	item := s.add(input.Name, input.Year)
	return item.ID, nil
}

func (s *stubMovies) Update(_ context.Context, id int64, update data.MovieUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return data.ErrNotFound
	}
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Price != nil {
		item.Price = *update.Price
	}
	return nil
}

func (s *stubMovies) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return data.ErrNotFound
	}
	delete(s.items, id)
	delete(s.details, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubGenres struct {
	genres map[int64]data.GenreWithCount
	movies map[int64][]data.MovieListItem
}

func newStubGenres() *stubGenres {
	return &stubGenres{
		genres: make(map[int64]data.GenreWithCount),
		movies: make(map[int64][]data.MovieListItem),
	}
}

func (s *stubGenres) Count(_ context.Context) (int, error) {
	return len(s.genres), nil
}

func (s *stubGenres) ListWithCounts(_ context.Context, offset, limit int) ([]data.GenreWithCount, error) {
	var all []data.GenreWithCount
	for id := int64(1); id <= int64(len(s.genres)); id++ {
		if genre, ok := s.genres[id]; ok {
			all = append(all, genre)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *stubGenres) Get(_ context.Context, id int64) (*data.Genre, error) {
	genre, ok := s.genres[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	return &data.Genre{ID: genre.ID, Name: genre.Name}, nil
}

func (s *stubGenres) Movies(_ context.Context, genreID int64) ([]data.MovieListItem, error) {
	return s.movies[genreID], nil
}

type stubComments struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*data.Comment
}

func newStubComments() *stubComments {
	return &stubComments{byID: make(map[int64]*data.Comment)}
}

func (s *stubComments) Create(_ context.Context, userID, movieID int64, text string) (*data.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	comment := &data.Comment{
		ID: s.nextID, UserID: userID, MovieID: movieID, Comment: text,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	s.byID[comment.ID] = comment
	return comment, nil
}

func (s *stubComments) ListByMovie(_ context.Context, movieID int64) ([]data.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []data.Comment
	for id := int64(1); id <= s.nextID; id++ {
		if comment, ok := s.byID[id]; ok && comment.MovieID == movieID {
			out = append(out, *comment)
		}
	}
	return out, nil
}

func (s *stubComments) Get(_ context.Context, commentID, movieID int64) (*data.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.byID[commentID]
	if !ok || comment.MovieID != movieID {
		return nil, data.ErrNotFound
	}
	copied := *comment
	return &copied, nil
}

func (s *stubComments) Update(_ context.Context, commentID int64, text string) (*data.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.byID[commentID]
	if !ok {
		return nil, data.ErrNotFound
	}
	comment.Comment = text
	comment.UpdatedAt = time.Now()
	copied := *comment
	return &copied, nil
}

func (s *stubComments) Delete(_ context.Context, commentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[commentID]; !ok {
		return data.ErrNotFound
	}
	delete(s.byID, commentID)
	return nil
}

type stubRatings struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*data.Rating
}

func newStubRatings() *stubRatings {
	return &stubRatings{byID: make(map[int64]*data.Rating)}
}

func (s *stubRatings) Get(_ context.Context, userID, movieID int64) (*data.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rating := range s.byID {
		if rating.UserID == userID && rating.MovieID == movieID {
			copied := *rating
			return &copied, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *stubRatings) Create(_ context.Context, userID, movieID int64, value int) (*data.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rating := &data.Rating{ID: s.nextID, UserID: userID, MovieID: movieID, Rating: value, CreatedAt: time.Now()}
	s.byID[rating.ID] = rating
	return rating, nil
}

func (s *stubRatings) Update(_ context.Context, id int64, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rating, ok := s.byID[id]
	if !ok {
		return data.ErrNotFound
	}
	rating.Rating = value
	return nil
}

func (s *stubRatings) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return data.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type stubReactions struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*data.Reaction
}

func newStubReactions() *stubReactions {
	return &stubReactions{byID: make(map[int64]*data.Reaction)}
}

func (s *stubReactions) Get(_ context.Context, userID, movieID int64) (*data.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reaction := range s.byID {
		if reaction.UserID == userID && reaction.MovieID == movieID {
			copied := *reaction
			return &copied, nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *stubReactions) Create(_ context.Context, userID, movieID int64, value string) (*data.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	reaction := &data.Reaction{ID: s.nextID, UserID: userID, MovieID: movieID, Reaction: value, CreatedAt: time.Now()}
	s.byID[reaction.ID] = reaction
	return reaction, nil
}

func (s *stubReactions) Update(_ context.Context, id int64, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reaction, ok := s.byID[id]
	if !ok {
		return data.ErrNotFound
	}
	reaction.Reaction = value
	return nil
}

func (s *stubReactions) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return data.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type stubFavourites struct {
	mu     sync.Mutex
	byUser map[int64][]int64
	movies *stubMovies
}

func newStubFavourites(movies *stubMovies) *stubFavourites {
	return &stubFavourites{byUser: make(map[int64][]int64), movies: movies}
}

func (s *stubFavourites) Add(_ context.Context, userID, movieID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byUser[userID] {
		if id == movieID {
			return data.ErrAlreadyExists
		}
	}
	s.byUser[userID] = append(s.byUser[userID], movieID)
	return nil
}

func (s *stubFavourites) Remove(_ context.Context, userID, movieID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byUser[userID]
	for i, id := range ids {
		if id == movieID {
			s.byUser[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return data.ErrNotFound
}

func (s *stubFavourites) Movies(ctx context.Context, userID int64) ([]data.MovieListItem, error) {
	s.mu.Lock()
	ids := append([]int64(nil), s.byUser[userID]...)
	s.mu.Unlock()

	out := []data.MovieListItem{}
	for _, id := range ids {
		if item, err := s.movies.GetListItem(ctx, id); err == nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

type stubMailer struct {
	mu          sync.Mutex
	activations []string
	resets      []string
}

func (s *stubMailer) SendActivation(to, _ string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activations = append(s.activations, to)
	return nil
}

func (s *stubMailer) SendPasswordReset(to, _ string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, to)
	return nil
}

// ---- test app --------------------------------------------------------------

type testApp struct {
	handlers   *Handlers
	router     http.Handler
	users      *stubUsers
	movies     *stubMovies
	genres     *stubGenres
	comments   *stubComments
	ratings    *stubRatings
	reactions  *stubReactions
	favourites *stubFavourites
	mailer     *stubMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := newStubUsers()
	movies := newStubMovies()
	genres := newStubGenres()
	comments := newStubComments()
	ratings := newStubRatings()
	reactions := newStubReactions()
	favourites := newStubFavourites(movies)
	mailer := &stubMailer{}

	h := &Handlers{
		Log: logging.New(logging.Config{
			Level:      logging.ErrorLevel,
			Writer:     io.Discard,
			EnableJSON: true,
		}),
		Users:      users,
		Movies:     movies,
		Genres:     genres,
		Comments:   comments,
		Ratings:    ratings,
		Reactions:  reactions,
		Favourites: favourites,

		Tokens:        auth.NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour),
		Signer:        auth.NewSigner("signing-secret"),
		Mail:          mailer,
		Cache:         cache.Noop{},
		ActivationTTL: time.Hour,
		ResetTTL:      time.Hour,
	}

	return &testApp{
		handlers:   h,
		router:     h.Routes(),
		users:      users,
		movies:     movies,
		genres:     genres,
		comments:   comments,
		ratings:    ratings,
		reactions:  reactions,
		favourites: favourites,
		mailer:     mailer,
	}
}

// createUser registers an active user directly in the store and returns the
// user together with a valid access token.
func (app *testApp) createUser(t *testing.T, email, password, group string) (*data.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := app.users.Create(context.Background(), email, hash, groupIDs[group])
	require.NoError(t, err)
	require.NoError(t, app.users.Activate(context.Background(), user.ID))
	user.IsActive = true

	token, err := app.handlers.Tokens.CreateAccessToken(user.ID)
	require.NoError(t, err)

	return user, token
}

func (app *testApp) request(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func errorDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decodeBody(t, rec, &body)
	return body.Detail
}
