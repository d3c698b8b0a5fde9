package data

import (
	"context"
	"database/sql"
	"errors"
)

// CommentRepository persists per-movie comments
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create stores a new comment and returns it with timestamps filled in
func (r *CommentRepository) Create(ctx context.Context, userID, movieID int64, text string) (*Comment, error) {
	c := &Comment{UserID: userID, MovieID: movieID, Comment: text}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (user_id, movie_id, comment)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		userID, movieID, text).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByMovie returns all comments for a movie, oldest first
func (r *CommentRepository) ListByMovie(ctx context.Context, movieID int64) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, movie_id, comment, created_at, updated_at
		 FROM comments WHERE movie_id = $1 ORDER BY id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.MovieID, &c.Comment, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Get fetches a comment belonging to a specific movie
func (r *CommentRepository) Get(ctx context.Context, commentID, movieID int64) (*Comment, error) {
	var c Comment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, movie_id, comment, created_at, updated_at
		 FROM comments WHERE id = $1 AND movie_id = $2`, commentID, movieID).Scan(
		&c.ID, &c.UserID, &c.MovieID, &c.Comment, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update replaces the comment text
func (r *CommentRepository) Update(ctx context.Context, commentID int64, text string) (*Comment, error) {
	var c Comment
	err := r.db.QueryRowContext(ctx,
		`UPDATE comments SET comment = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, user_id, movie_id, comment, created_at, updated_at`,
		commentID, text).Scan(
		&c.ID, &c.UserID, &c.MovieID, &c.Comment, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, commentID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
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
