package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/data"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticate resolves the Bearer token into an active user and stores it on
// the request context. Inactive accounts are rejected.
func (h *Handlers) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			api.Error(w, http.StatusUnauthorized, "Authorization header is missing or malformed.")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		userID, err := h.Tokens.DecodeAccessToken(token)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "Invalid or expired token.")
			return
		}

		user, err := h.Users.GetByID(r.Context(), userID)
		if err != nil {
			api.Error(w, http.StatusNotFound, "User not found.")
			return
		}

		if !user.IsActive {
			api.Error(w, http.StatusForbidden, "User account is inactive.")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStaff allows only moderators and admins through
func (h *Handlers) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if user == nil || !user.IsStaff() {
			api.Error(w, http.StatusForbidden, "You don't have permission to perform this action.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin allows only admins through
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if user == nil || user.Group != data.GroupAdmin {
			api.Error(w, http.StatusForbidden, "You don't have permission to perform this action.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userFrom(ctx context.Context) *data.User {
	user, _ := ctx.Value(userContextKey).(*data.User)
	return user
}

// idParam parses a numeric chi URL parameter
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
