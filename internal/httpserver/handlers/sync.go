package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/logger"
)

// SyncHomepage triggers an immediate run of the homepage file sync job.
func SyncHomepage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.HomepageSyncTrigger == nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "homepage sync is not configured", Kind: "not_found"})
			return
		}

		select {
		case d.HomepageSyncTrigger <- struct{}{}:
			d.Logger.Info("manual homepage sync triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
		default:
			d.Logger.Warn("homepage sync already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"status": "pending"})
		}
	}
}
