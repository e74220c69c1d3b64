package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/logger"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready once the remote store answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.RedisClient == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "store not initialized"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.RedisClient.Ping(ctx).Err(); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "store unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
