package data

import (
	"context"
	"database/sql"
	"errors"
)

// FavouriteRepository persists per-user favourite movie lists. The list row
// is created lazily on the first add.
type FavouriteRepository struct {
	db *sql.DB
}

func NewFavouriteRepository(db *sql.DB) *FavouriteRepository {
	return &FavouriteRepository{db: db}
}

// listID finds the user's favourites list, or ErrNotFound
func (r *FavouriteRepository) listID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM favourites WHERE user_id = $1`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

// Add puts a movie on the user's favourites list, creating the list when
// missing. Returns ErrAlreadyExists when the movie is already listed.
func (r *FavouriteRepository) Add(ctx context.Context, userID, movieID int64) error {
	listID, err := r.listID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO favourites (user_id) VALUES ($1) RETURNING id`, userID).Scan(&listID)
	}
	if err != nil {
		return err
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favourites_movies
			WHERE favourite_id = $1 AND movie_id = $2)`, listID, movieID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExists
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO favourites_movies (favourite_id, movie_id) VALUES ($1, $2)`,
		listID, movieID)
	return err
}

// Remove takes a movie off the user's favourites list. ErrNotFound covers
// both a missing list and a movie that is not on it.
func (r *FavouriteRepository) Remove(ctx context.Context, userID, movieID int64) error {
	listID, err := r.listID(ctx, userID)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favourites_movies WHERE favourite_id = $1 AND movie_id = $2`,
		listID, movieID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Movies lists the user's favourite movies; an absent list yields an empty slice
func (r *FavouriteRepository) Movies(ctx context.Context, userID int64) ([]MovieListItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.uuid, m.name, m.year, m.duration, m.imdb, m.description, m.price
		 FROM movies m
		 JOIN favourites_movies fm ON fm.movie_id = m.id
		 JOIN favourites f ON f.id = fm.favourite_id
		 WHERE f.user_id = $1
		 ORDER BY m.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := []MovieListItem{}
	for rows.Next() {
		var m MovieListItem
		if err := rows.Scan(&m.ID, &m.UUID, &m.Name, &m.Year, &m.Duration,
			&m.IMDB, &m.Description, &m.Price); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}
