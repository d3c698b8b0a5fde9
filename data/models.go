// Package data holds the persistence layer of the cinema service. All
// repositories run plain SQL through the pgx stdlib driver; the schema itself
// is owned by the migration files under migrations/.
package data

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// User group names seeded by the migrations
const (
	GroupUser      = "user"
	GroupModerator = "moderator"
	GroupAdmin     = "admin"
)

// Movie certifications
const (
	CertificationG    = "G"
	CertificationPG   = "PG"
	CertificationPG13 = "PG13"
	CertificationR    = "R"
	CertificationNC17 = "NC17"
)

// Reactions
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// ValidCertification reports whether c is one of the known certifications
func ValidCertification(c string) bool {
	switch c {
	case CertificationG, CertificationPG, CertificationPG13, CertificationR, CertificationNC17:
		return true
	}
	return false
}

// ValidReaction reports whether r is a known reaction type
func ValidReaction(r string) bool {
	return r == ReactionLike || r == ReactionDislike
}

// ValidRating reports whether r is within the 1..10 rating scale
func ValidRating(r int) bool {
	return r >= 1 && r <= 10
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	GroupID      int64     `json:"-"`
	Group        string    `json:"group"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsStaff reports whether the user may manage the movie catalogue
func (u *User) IsStaff() bool {
	return u.Group == GroupModerator || u.Group == GroupAdmin
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GenreWithCount struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	MoviesCount int    `json:"movies_count"`
}

type Country struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Language struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type MovieListItem struct {
	ID          int64   `json:"id"`
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Year        int     `json:"year"`
	Duration    int     `json:"duration"`
	IMDB        float64 `json:"imdb"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type Movie struct {
	ID            int64      `json:"id"`
	UUID          string     `json:"uuid"`
	Name          string     `json:"name"`
	Year          int        `json:"year"`
	Duration      int        `json:"duration"`
	IMDB          float64    `json:"imdb"`
	IMDBVotes     int        `json:"imdb_votes"`
	Description   string     `json:"description"`
	Budget        float64    `json:"budget"`
	Revenue       float64    `json:"revenue"`
	Certification string     `json:"certification"`
	Price         float64    `json:"price"`
	Country       Country    `json:"country"`
	Genres        []Genre    `json:"genres"`
	Actors        []Person   `json:"actors"`
	Directors     []Person   `json:"directors"`
	Languages     []Language `json:"languages"`
	Comments      []Comment  `json:"comments"`
	Ratings       []Rating   `json:"ratings"`
	Reactions     []Reaction `json:"reactions"`
}

type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type Reaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

// MovieFilter captures the list endpoint's search, filter and sort options
type MovieFilter struct {
	Search    string
	Year      int
	MinIMDB   float64
	SortBy    string // price, budget or duration
	SortOrder string // asc or desc
	Offset    int
	Limit     int
}

// MovieInput is the payload for creating a movie together with its relations
type MovieInput struct {
	UUID          string
	Name          string
	Year          int
	Duration      int
	IMDB          float64
	IMDBVotes     int
	Description   string
	Budget        float64
	Revenue       float64
	Certification string
	Price         float64
	CountryCode   string
	Genres        []string
	Actors        []string
	Directors     []string
	Languages     []string
}

// MovieUpdate carries a partial update; nil fields are left untouched
type MovieUpdate struct {
	Name        *string
	Year        *int
	Duration    *int
	IMDB        *float64
	IMDBVotes   *int
	Description *string
	Budget      *float64
	Revenue     *float64
	Price       *float64
}
