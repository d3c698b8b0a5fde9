package data

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// UserRepository persists accounts and their stored refresh tokens
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GroupID looks up a user group by name
func (r *UserRepository) GroupID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM user_groups WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

// Create inserts a new inactive user in the given group
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, groupID int64) (*User, error) {
	user := &User{Email: email, PasswordHash: passwordHash, GroupID: groupID}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, is_active, group_id)
		 VALUES ($1, $2, FALSE, $3)
		 RETURNING id, created_at`,
		email, passwordHash, groupID).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail fetches a user with its group by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx,
		`SELECT u.id, u.email, u.password_hash, u.is_active, u.group_id, g.name, u.created_at
		 FROM users u JOIN user_groups g ON g.id = u.group_id
		 WHERE u.email = $1`, email)
}

// GetByID fetches a user with its group by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.get(ctx,
		`SELECT u.id, u.email, u.password_hash, u.is_active, u.group_id, g.name, u.created_at
		 FROM users u JOIN user_groups g ON g.id = u.group_id
		 WHERE u.id = $1`, id)
}

func (r *UserRepository) get(ctx context.Context, query string, arg interface{}) (*User, error) {
	var user User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.IsActive,
		&user.GroupID, &user.Group, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Activate marks the user account active
func (r *UserRepository) Activate(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users SET is_active = TRUE WHERE id = $1`, id)
}

// SetPassword replaces the stored password hash
func (r *UserRepository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

// SetGroup moves the user to another group
func (r *UserRepository) SetGroup(ctx context.Context, id, groupID int64) error {
	return r.exec(ctx, `UPDATE users SET group_id = $2 WHERE id = $1`, id, groupID)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...interface{}) error {
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

// StoreRefreshToken saves a refresh token until its expiry
func (r *UserRepository) StoreRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, expiresAt)
	return err
}

// GetRefreshToken finds a stored refresh token
func (r *UserRepository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	var rt RefreshToken
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at FROM refresh_tokens WHERE token = $1`,
		token).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// DeleteRefreshToken removes a stored refresh token, e.g. on logout
func (r *UserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	return r.exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
}

// PurgeExpiredTokens drops refresh tokens past their expiry. Run periodically.
func (r *UserRepository) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
