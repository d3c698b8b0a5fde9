package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jimmitjoo/cinema/api"
	"github.com/jimmitjoo/cinema/logging"
)

// Routes assembles the full router: middleware chain, the versioned API and
// the health endpoint.
func (h *Handlers) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(logging.RequestLogger(h.Log))
	mux.Use(logging.Recovery(h.Log))
	mux.Use(api.SecureHeaders)
	mux.Use(api.CORS(api.DefaultCORSConfig()))
	mux.Use(api.RateLimit(api.NewTokenBucket(100, 100, time.Minute)))

	mux.Get("/health", h.HealthCheck)

	mux.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/register/", h.Register)
			r.Post("/activate/", h.Activate)
			r.Post("/login/", h.Login)
			r.Post("/refresh/", h.Refresh)
			r.Post("/logout/", h.Logout)
			r.Post("/password-reset/request/", h.RequestPasswordReset)
			r.Post("/password-reset/complete/", h.CompletePasswordReset)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)
				r.Post("/change-password/", h.ChangePassword)
				r.Get("/user/favourites/", h.ListFavourites)
				r.Post("/user/favourites/{movie_id}/", h.AddFavourite)
				r.Delete("/user/favourites/{movie_id}/", h.RemoveFavourite)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate, h.RequireAdmin)
				r.Post("/users/{user_id}/group/", h.ChangeUserGroup)
				r.Post("/users/{user_id}/activate/", h.ForceActivate)
			})
		})

		r.Route("/cinema", func(r chi.Router) {
			r.Get("/movies/", h.ListMovies)
			r.Get("/movies/{movie_id}/", h.GetMovie)
			r.Get("/movies/{movie_id}/comments/", h.ListComments)
			r.Get("/genres/", h.ListGenres)
			r.Get("/genres/{genre_id}/", h.GetGenre)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)
				r.Post("/movies/{movie_id}/comments/", h.CreateComment)
				r.Put("/movies/{movie_id}/comments/{comment_id}/", h.UpdateComment)
				r.Delete("/movies/{movie_id}/comments/{comment_id}/", h.DeleteComment)
				r.Post("/movies/{movie_id}/ratings/", h.RateMovie)
				r.Post("/movies/{movie_id}/reactions/", h.ReactToMovie)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate, h.RequireStaff)
				r.Post("/movies/", h.CreateMovie)
				r.Patch("/movies/{movie_id}/", h.UpdateMovie)
				r.Delete("/movies/{movie_id}/", h.DeleteMovie)
			})
		})
	})

	return mux
}
