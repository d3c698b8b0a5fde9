package handlers

import (
	"net/http"

	"github.com/jimmitjoo/cinema/api"
)

// HealthCheck reports service liveness and database pool health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.Health == nil {
		api.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		return
	}

	status := h.Health.Check(r.Context())
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	api.JSON(w, code, status)
}
