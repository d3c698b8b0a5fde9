// Package handlers wires the HTTP API of the cinema service. Handlers depend
// on narrow store interfaces so they can be exercised without a database.
package handlers

import (
	"context"
	"time"

	"github.com/jimmitjoo/cinema/auth"
	"github.com/jimmitjoo/cinema/cache"
	"github.com/jimmitjoo/cinema/data"
	"github.com/jimmitjoo/cinema/database"
	"github.com/jimmitjoo/cinema/logging"
)

type UserStore interface {
	GroupID(ctx context.Context, name string) (int64, error)
	Create(ctx context.Context, email, passwordHash string, groupID int64) (*data.User, error)
	GetByEmail(ctx context.Context, email string) (*data.User, error)
	GetByID(ctx context.Context, id int64) (*data.User, error)
	Activate(ctx context.Context, id int64) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	SetGroup(ctx context.Context, id, groupID int64) error
	StoreRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*data.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}

type MovieStore interface {
	Count(ctx context.Context, filter data.MovieFilter) (int, error)
	List(ctx context.Context, filter data.MovieFilter) ([]data.MovieListItem, error)
	Exists(ctx context.Context, name string, year int) (bool, error)
	GetListItem(ctx context.Context, id int64) (*data.MovieListItem, error)
	GetDetail(ctx context.Context, id int64) (*data.Movie, error)
	Create(ctx context.Context, input data.MovieInput) (int64, error)
	Update(ctx context.Context, id int64, update data.MovieUpdate) error
	Delete(ctx context.Context, id int64) error
}

type GenreStore interface {
	Count(ctx context.Context) (int, error)
	ListWithCounts(ctx context.Context, offset, limit int) ([]data.GenreWithCount, error)
	Get(ctx context.Context, id int64) (*data.Genre, error)
	Movies(ctx context.Context, genreID int64) ([]data.MovieListItem, error)
}

type CommentStore interface {
	Create(ctx context.Context, userID, movieID int64, text string) (*data.Comment, error)
	ListByMovie(ctx context.Context, movieID int64) ([]data.Comment, error)
	Get(ctx context.Context, commentID, movieID int64) (*data.Comment, error)
	Update(ctx context.Context, commentID int64, text string) (*data.Comment, error)
	Delete(ctx context.Context, commentID int64) error
}

type RatingStore interface {
	Get(ctx context.Context, userID, movieID int64) (*data.Rating, error)
	Create(ctx context.Context, userID, movieID int64, rating int) (*data.Rating, error)
	Update(ctx context.Context, id int64, rating int) error
	Delete(ctx context.Context, id int64) error
}

type ReactionStore interface {
	Get(ctx context.Context, userID, movieID int64) (*data.Reaction, error)
	Create(ctx context.Context, userID, movieID int64, reaction string) (*data.Reaction, error)
	Update(ctx context.Context, id int64, reaction string) error
	Delete(ctx context.Context, id int64) error
}

type FavouriteStore interface {
	Add(ctx context.Context, userID, movieID int64) error
	Remove(ctx context.Context, userID, movieID int64) error
	Movies(ctx context.Context, userID int64) ([]data.MovieListItem, error)
}

// Mailer sends the account emails; satisfied by email.Mailer
type Mailer interface {
	SendActivation(to, token string, ttl time.Duration) error
	SendPasswordReset(to, token string, ttl time.Duration) error
}

// Handlers holds every dependency of the HTTP layer
type Handlers struct {
	Log        *logging.Logger
	Users      UserStore
	Movies     MovieStore
	Genres     GenreStore
	Comments   CommentStore
	Ratings    RatingStore
	Reactions  ReactionStore
	Favourites FavouriteStore

	Tokens *auth.TokenManager
	Signer *auth.Signer
	Mail   Mailer
	Cache  cache.Cache
	Health *database.HealthChecker

	ActivationTTL time.Duration
	ResetTTL      time.Duration
}
