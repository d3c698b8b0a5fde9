package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// MovieRepository persists the movie catalogue and its related entities
type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

var movieSortColumns = map[string]string{
	"price":    "m.price",
	"budget":   "m.budget",
	"duration": "m.duration",
}

// Count returns the number of distinct movies matching the filter
func (r *MovieRepository) Count(ctx context.Context, filter MovieFilter) (int, error) {
	where, args := movieFilterClause(filter)

	query := `SELECT COUNT(DISTINCT m.id)
		FROM movies m
		LEFT JOIN actors_movies am ON am.movie_id = m.id
		LEFT JOIN actors a ON a.id = am.actor_id
		LEFT JOIN directors_movies dm ON dm.movie_id = m.id
		LEFT JOIN directors d ON d.id = dm.director_id` + where

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// List returns one page of movies matching the filter. Search spans movie
// name and description plus actor and director names; sorting falls back to
// id DESC so pagination stays stable.
func (r *MovieRepository) List(ctx context.Context, filter MovieFilter) ([]MovieListItem, error) {
	where, args := movieFilterClause(filter)

	sortCol := "m.id"
	direction := "DESC"
	if col, ok := movieSortColumns[filter.SortBy]; ok {
		sortCol = col
		if strings.EqualFold(filter.SortOrder, "asc") {
			direction = "ASC"
		}
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT DISTINCT m.id, m.uuid, m.name, m.year, m.duration,
			m.imdb, m.description, m.price, %s AS sort_value
		FROM movies m
		LEFT JOIN actors_movies am ON am.movie_id = m.id
		LEFT JOIN actors a ON a.id = am.actor_id
		LEFT JOIN directors_movies dm ON dm.movie_id = m.id
		LEFT JOIN directors d ON d.id = dm.director_id
		%s
		ORDER BY sort_value %s, m.id DESC
		LIMIT $%d OFFSET $%d`,
		sortCol, where, direction, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []MovieListItem
	for rows.Next() {
		var m MovieListItem
		var sortDummy interface{}
		if err := rows.Scan(&m.ID, &m.UUID, &m.Name, &m.Year, &m.Duration,
			&m.IMDB, &m.Description, &m.Price, &sortDummy); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}

	return movies, rows.Err()
}

func movieFilterClause(filter MovieFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf(
			"(m.name ILIKE %s OR m.description ILIKE %s OR a.name ILIKE %s OR d.name ILIKE %s)",
			p, p, p, p))
	}

	if filter.Year != 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("m.year = $%d", len(args)))
	}

	if filter.MinIMDB != 0 {
		args = append(args, filter.MinIMDB)
		conditions = append(conditions, fmt.Sprintf("m.imdb >= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Exists reports whether a movie with the same name and year is already stored
func (r *MovieRepository) Exists(ctx context.Context, name string, year int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM movies WHERE name = $1 AND year = $2)`,
		name, year).Scan(&exists)
	return exists, err
}

// GetListItem fetches the list representation of a single movie
func (r *MovieRepository) GetListItem(ctx context.Context, id int64) (*MovieListItem, error) {
	var m MovieListItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, uuid, name, year, duration, imdb, description, price
		 FROM movies WHERE id = $1`, id).Scan(
		&m.ID, &m.UUID, &m.Name, &m.Year, &m.Duration, &m.IMDB, &m.Description, &m.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetDetail fetches a movie with all of its related entities
func (r *MovieRepository) GetDetail(ctx context.Context, id int64) (*Movie, error) {
	var m Movie
	err := r.db.QueryRowContext(ctx,
		`SELECT m.id, m.uuid, m.name, m.year, m.duration, m.imdb, m.imdb_votes,
			m.description, m.budget, m.revenue, m.certification, m.price,
			c.id, c.code, COALESCE(c.name, '')
		 FROM movies m JOIN countries c ON c.id = m.country_id
		 WHERE m.id = $1`, id).Scan(
		&m.ID, &m.UUID, &m.Name, &m.Year, &m.Duration, &m.IMDB, &m.IMDBVotes,
		&m.Description, &m.Budget, &m.Revenue, &m.Certification, &m.Price,
		&m.Country.ID, &m.Country.Code, &m.Country.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if m.Genres, err = r.relatedGenres(ctx, id); err != nil {
		return nil, err
	}
	if m.Actors, err = r.relatedPeople(ctx, id, "actors", "actors_movies", "actor_id"); err != nil {
		return nil, err
	}
	if m.Directors, err = r.relatedPeople(ctx, id, "directors", "directors_movies", "director_id"); err != nil {
		return nil, err
	}
	if m.Languages, err = r.relatedLanguages(ctx, id); err != nil {
		return nil, err
	}
	if m.Comments, err = r.relatedComments(ctx, id); err != nil {
		return nil, err
	}
	if m.Ratings, err = r.relatedRatings(ctx, id); err != nil {
		return nil, err
	}
	if m.Reactions, err = r.relatedReactions(ctx, id); err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *MovieRepository) relatedGenres(ctx context.Context, movieID int64) ([]Genre, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name FROM genres g
		 JOIN movies_genres mg ON mg.genre_id = g.id
		 WHERE mg.movie_id = $1 ORDER BY g.id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *MovieRepository) relatedPeople(ctx context.Context, movieID int64, table, joinTable, fkColumn string) ([]Person, error) {
	query := fmt.Sprintf(
		`SELECT p.id, p.name FROM %s p
		 JOIN %s j ON j.%s = p.id
		 WHERE j.movie_id = $1 ORDER BY p.id`, table, joinTable, fkColumn)

	rows, err := r.db.QueryContext(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (r *MovieRepository) relatedLanguages(ctx context.Context, movieID int64) ([]Language, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.name FROM languages l
		 JOIN movies_languages ml ON ml.language_id = l.id
		 WHERE ml.movie_id = $1 ORDER BY l.id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var languages []Language
	for rows.Next() {
		var l Language
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		languages = append(languages, l)
	}
	return languages, rows.Err()
}

func (r *MovieRepository) relatedComments(ctx context.Context, movieID int64) ([]Comment, error) {
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

func (r *MovieRepository) relatedRatings(ctx context.Context, movieID int64) ([]Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, movie_id, rating, created_at
		 FROM ratings WHERE movie_id = $1 ORDER BY id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		var rt Rating
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.MovieID, &rt.Rating, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

func (r *MovieRepository) relatedReactions(ctx context.Context, movieID int64) ([]Reaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, movie_id, reaction, created_at
		 FROM movie_reactions WHERE movie_id = $1 ORDER BY id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []Reaction
	for rows.Next() {
		var re Reaction
		if err := rows.Scan(&re.ID, &re.UserID, &re.MovieID, &re.Reaction, &re.CreatedAt); err != nil {
			return nil, err
		}
		reactions = append(reactions, re)
	}
	return reactions, rows.Err()
}

// Create inserts a movie and resolves-or-creates its related entities inside
// one transaction.
func (r *MovieRepository) Create(ctx context.Context, input MovieInput) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	countryID, err := getOrCreate(ctx, tx,
		`SELECT id FROM countries WHERE code = $1`,
		`INSERT INTO countries (code) VALUES ($1) RETURNING id`,
		input.CountryCode)
	if err != nil {
		return 0, err
	}

	var movieID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO movies (uuid, name, year, duration, imdb, imdb_votes, description,
			budget, revenue, certification, price, country_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		input.UUID, input.Name, input.Year, input.Duration, input.IMDB, input.IMDBVotes,
		input.Description, input.Budget, input.Revenue, input.Certification, input.Price,
		countryID).Scan(&movieID)
	if err != nil {
		return 0, err
	}

	if err := linkNamed(ctx, tx, movieID, input.Genres,
		`SELECT id FROM genres WHERE name = $1`,
		`INSERT INTO genres (name) VALUES ($1) RETURNING id`,
		`INSERT INTO movies_genres (movie_id, genre_id) VALUES ($1, $2)`); err != nil {
		return 0, err
	}
	if err := linkNamed(ctx, tx, movieID, input.Actors,
		`SELECT id FROM actors WHERE name = $1`,
		`INSERT INTO actors (name) VALUES ($1) RETURNING id`,
		`INSERT INTO actors_movies (movie_id, actor_id) VALUES ($1, $2)`); err != nil {
		return 0, err
	}
	if err := linkNamed(ctx, tx, movieID, input.Directors,
		`SELECT id FROM directors WHERE name = $1`,
		`INSERT INTO directors (name) VALUES ($1) RETURNING id`,
		`INSERT INTO directors_movies (movie_id, director_id) VALUES ($1, $2)`); err != nil {
		return 0, err
	}
	if err := linkNamed(ctx, tx, movieID, input.Languages,
		`SELECT id FROM languages WHERE name = $1`,
		`INSERT INTO languages (name) VALUES ($1) RETURNING id`,
		`INSERT INTO movies_languages (movie_id, language_id) VALUES ($1, $2)`); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return movieID, nil
}

func getOrCreate(ctx context.Context, tx *sql.Tx, selectQuery, insertQuery string, arg interface{}) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, selectQuery, arg).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, insertQuery, arg).Scan(&id)
	}
	return id, err
}

func linkNamed(ctx context.Context, tx *sql.Tx, movieID int64, names []string, selectQuery, insertQuery, linkQuery string) error {
	for _, name := range names {
		id, err := getOrCreate(ctx, tx, selectQuery, insertQuery, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, linkQuery, movieID, id); err != nil {
			return err
		}
	}
	return nil
}

// Update applies a partial update; only non-nil fields change
func (r *MovieRepository) Update(ctx context.Context, id int64, update MovieUpdate) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Year != nil {
		add("year", *update.Year)
	}
	if update.Duration != nil {
		add("duration", *update.Duration)
	}
	if update.IMDB != nil {
		add("imdb", *update.IMDB)
	}
	if update.IMDBVotes != nil {
		add("imdb_votes", *update.IMDBVotes)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Budget != nil {
		add("budget", *update.Budget)
	}
	if update.Revenue != nil {
		add("revenue", *update.Revenue)
	}
	if update.Price != nil {
		add("price", *update.Price)
	}

	if len(sets) == 0 {
		// Nothing to change; still report a missing movie as not found
		var exists bool
		err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE movies SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
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

// Delete removes a movie; related rows go away through ON DELETE CASCADE
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
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
