package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs every request with method, path, status and duration,
// and attaches a request-scoped logger to the context.
func RequestLogger(logger *Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := middleware.GetReqID(r.Context())
			contextLogger := logger.WithRequestID(requestID)
			ctx := ToContext(r.Context(), contextLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := map[string]interface{}{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    ww.Status(),
				"duration":  time.Since(start).Milliseconds(),
				"remote_ip": r.RemoteAddr,
			}

			switch {
			case ww.Status() >= 500:
				contextLogger.Error("request completed with server error", fields)
			case ww.Status() >= 400:
				contextLogger.Warn("request completed with client error", fields)
			default:
				contextLogger.Info("request completed", fields)
			}
		})
	}
}

// Recovery converts panics into 500 responses with a logged stack location.
func Recovery(logger *Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", map[string]interface{}{
						"panic":  rec,
						"method": r.Method,
						"path":   r.URL.Path,
					})
					http.Error(w, http.StatusText(http.StatusInternalServerError),
						http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
