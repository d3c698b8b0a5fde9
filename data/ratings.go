package data

import (
	"context"
	"database/sql"
	"errors"
)

// RatingRepository persists per-user movie ratings (one per user and movie)
type RatingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Get fetches the user's rating for a movie, if any
func (r *RatingRepository) Get(ctx context.Context, userID, movieID int64) (*Rating, error) {
	var rt Rating
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, movie_id, rating, created_at
		 FROM ratings WHERE user_id = $1 AND movie_id = $2`, userID, movieID).Scan(
		&rt.ID, &rt.UserID, &rt.MovieID, &rt.Rating, &rt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// Create stores a new rating
func (r *RatingRepository) Create(ctx context.Context, userID, movieID int64, rating int) (*Rating, error) {
	rt := &Rating{UserID: userID, MovieID: movieID, Rating: rating}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ratings (user_id, movie_id, rating)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		userID, movieID, rating).Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// Update replaces the rating value
func (r *RatingRepository) Update(ctx context.Context, id int64, rating int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ratings SET rating = $2 WHERE id = $1`, id, rating)
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

// Delete removes the rating
func (r *RatingRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	return err
}
