package data

import (
	"context"
	"database/sql"
	"errors"
)

// ReactionRepository persists like/dislike reactions (one per user and movie)
type ReactionRepository struct {
	db *sql.DB
}

func NewReactionRepository(db *sql.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Get fetches the user's reaction to a movie, if any
func (r *ReactionRepository) Get(ctx context.Context, userID, movieID int64) (*Reaction, error) {
	var re Reaction
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, movie_id, reaction, created_at
		 FROM movie_reactions WHERE user_id = $1 AND movie_id = $2`, userID, movieID).Scan(
		&re.ID, &re.UserID, &re.MovieID, &re.Reaction, &re.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &re, nil
}

// Create stores a new reaction
func (r *ReactionRepository) Create(ctx context.Context, userID, movieID int64, reaction string) (*Reaction, error) {
	re := &Reaction{UserID: userID, MovieID: movieID, Reaction: reaction}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO movie_reactions (user_id, movie_id, reaction)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		userID, movieID, reaction).Scan(&re.ID, &re.CreatedAt)
	if err != nil {
		return nil, err
	}
	return re, nil
}

// Update replaces the reaction value
func (r *ReactionRepository) Update(ctx context.Context, id int64, reaction string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE movie_reactions SET reaction = $2 WHERE id = $1`, id, reaction)
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

// Delete removes the reaction
func (r *ReactionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM movie_reactions WHERE id = $1`, id)
	return err
}
