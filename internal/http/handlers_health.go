package httpx

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"time"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// CacheHealth is the slice of the cache layer the readiness check needs.
type CacheHealth interface {
	Health(ctx context.Context) error
}

// readyHandler checks the database and, when configured, the cache.
// The cache is optional infrastructure, so its failures are reported but do
// not fail readiness.
func readyHandler(db *sql.DB, cache CacheHealth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := map[string]string{"database": "ok"}
		code := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}

		if cache != nil {
			status["cache"] = "ok"
			if err := cache.Health(ctx); err != nil {
				status["cache"] = "unreachable"
			}
		}

		WriteJSON(w, code, status)
	}
}
