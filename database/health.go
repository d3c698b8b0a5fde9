package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// HealthChecker probes the database for the /health endpoint
type HealthChecker struct {
	db      *sql.DB
	timeout time.Duration
}

// NewHealthChecker creates a health checker with the given probe timeout
func NewHealthChecker(db *sql.DB, timeout time.Duration) *HealthChecker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HealthChecker{
		db:      db,
		timeout: timeout,
	}
}

// HealthStatus is the JSON shape returned by the health endpoint
type HealthStatus struct {
	Status           string            `json:"status"`
	ResponseTime     string            `json:"response_time"`
	ConnectionsOpen  int               `json:"connections_open"`
	ConnectionsInUse int               `json:"connections_in_use"`
	ConnectionsIdle  int               `json:"connections_idle"`
	Errors           []string          `json:"errors,omitempty"`
	Checks           map[string]string `json:"checks"`
	Timestamp        time.Time         `json:"timestamp"`
}

// Check runs the connectivity and query probes and reports pool statistics
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Checks:    make(map[string]string),
		Timestamp: time.Now().UTC(),
	}

	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	if err := hc.db.PingContext(checkCtx); err != nil {
		status.Status = "unhealthy"
		status.Errors = append(status.Errors, fmt.Sprintf("ping failed: %v", err))
		status.Checks["ping"] = "failed"
	} else {
		status.Checks["ping"] = "passed"
	}

	var one int
	if err := hc.db.QueryRowContext(checkCtx, "SELECT 1").Scan(&one); err != nil {
		status.Status = "unhealthy"
		status.Errors = append(status.Errors, fmt.Sprintf("query failed: %v", err))
		status.Checks["query"] = "failed"
	} else {
		status.Checks["query"] = "passed"
	}

	stats := hc.db.Stats()
	status.ConnectionsOpen = stats.OpenConnections
	status.ConnectionsInUse = stats.InUse
	status.ConnectionsIdle = stats.Idle
	status.ResponseTime = time.Since(start).String()

	return status
}
