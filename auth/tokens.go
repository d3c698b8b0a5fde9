package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenManager issues and validates the JWT access and refresh tokens used by
// the accounts API. Access and refresh tokens are signed with separate secrets
// so one class of token can never stand in for the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager creates a TokenManager with the given secrets and lifetimes
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// CreateAccessToken signs a short lived access token for the user
func (tm *TokenManager) CreateAccessToken(userID int64) (string, error) {
	return tm.create(userID, tm.accessSecret, tm.accessTTL)
}

// CreateRefreshToken signs a long lived refresh token for the user
func (tm *TokenManager) CreateRefreshToken(userID int64) (string, error) {
	return tm.create(userID, tm.refreshSecret, tm.refreshTTL)
}

// DecodeAccessToken validates an access token and returns the user ID
func (tm *TokenManager) DecodeAccessToken(token string) (int64, error) {
	return tm.decode(token, tm.accessSecret)
}

// DecodeRefreshToken validates a refresh token and returns the user ID
func (tm *TokenManager) DecodeRefreshToken(token string) (int64, error) {
	return tm.decode(token, tm.refreshSecret)
}

// RefreshTTL exposes the refresh token lifetime for persistence
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

func (tm *TokenManager) create(userID int64, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (tm *TokenManager) decode(tokenString string, secret []byte) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return int64(rawID), nil
}
