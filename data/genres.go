package data

import (
	"context"
	"database/sql"
	"errors"
)

// GenreRepository serves the genre list and per-genre movie lookups
type GenreRepository struct {
	db *sql.DB
}

func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// Count returns the total number of genres
func (r *GenreRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM genres`).Scan(&total)
	return total, err
}

// ListWithCounts returns one page of genres, each with its movie count
func (r *GenreRepository) ListWithCounts(ctx context.Context, offset, limit int) ([]GenreWithCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, COUNT(mg.movie_id)
		 FROM genres g
		 LEFT JOIN movies_genres mg ON mg.genre_id = g.id
		 GROUP BY g.id, g.name
		 ORDER BY g.id
		 OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []GenreWithCount
	for rows.Next() {
		var g GenreWithCount
		if err := rows.Scan(&g.ID, &g.Name, &g.MoviesCount); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// Get fetches a single genre by ID
func (r *GenreRepository) Get(ctx context.Context, id int64) (*Genre, error) {
	var g Genre
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM genres WHERE id = $1`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Movies returns the movies attached to a genre
func (r *GenreRepository) Movies(ctx context.Context, genreID int64) ([]MovieListItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.uuid, m.name, m.year, m.duration, m.imdb, m.description, m.price
		 FROM movies m
		 JOIN movies_genres mg ON mg.movie_id = m.id
		 WHERE mg.genre_id = $1
		 ORDER BY m.id DESC`, genreID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []MovieListItem
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
