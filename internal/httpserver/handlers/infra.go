package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Sessions *int   `json:"sessions,omitempty"`
	Users    *int   `json:"users,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Impact   string `json:"impact,omitempty"`
	Error    string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store, the live sessions and the
// optional homepage sync job.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sessions := 0
		if d.Sessions != nil {
			sessions = d.Sessions.Count()
		}

		components := map[string]componentStatus{
			"redis": checkRedis(ctx, d),
			"sessions": {
				OK:       true,
				Sessions: &sessions,
				Mode:     "change-feed",
			},
			"homepage_sync": homepageSyncStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "critical" // no store = no reads, no writes
	}
	return "operational"
}

func homepageSyncStatus(d deps.Deps) componentStatus {
	if d.HomepageSyncTrigger == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{OK: true, Mode: "scheduled"}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil || d.Store == nil {
		return componentStatus{
			OK:     false,
			Mode:   "down",
			Impact: "reads-and-writes-disabled",
			Error:  "client not initialized",
		}
	}

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "down",
			Impact: "reads-and-writes-disabled",
			Error:  "timeout",
		}
	}

	status := componentStatus{OK: true, Mode: "optimal", Error: "none"}
	if users, err := d.Store.Users(ctx); err == nil {
		n := len(users)
		status.Users = &n
	}
	return status
}
