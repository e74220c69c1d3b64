package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	"github.com/MrSnakeDoc/auramark/internal/metadata"
)

type metadataResponse struct {
	metadata.Metadata
	Cached bool `json:"cached"`
}

type metadataError struct {
	Error          string `json:"error"`
	Kind           string `json:"kind"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}

// FetchMetadata scrapes the title and thumbnail of {url}. Results are
// cached in Redis for MetadataCacheTTL.
func FetchMetadata(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		target := strings.TrimSpace(req.URL)
		ctx := r.Context()
		useCache := d.Store != nil && d.MetadataCacheTTL > 0

		if useCache {
			meta, ok, err := d.Store.CachedMetadata(ctx, target)
			if err != nil {
				d.Logger.Warn("metadata cache read failed", logger.Error(err))
			} else if ok {
				writeJSON(w, http.StatusOK, metadataResponse{Metadata: meta, Cached: true})
				return
			}
		}

		meta, err := d.Fetcher.Fetch(ctx, target)
		if err != nil {
			writeFetchError(w, d, target, err)
			return
		}

		if useCache {
			if err := d.Store.CacheMetadata(ctx, target, meta, d.MetadataCacheTTL); err != nil {
				d.Logger.Warn("metadata cache write failed", logger.Error(err))
			}
		}
		writeJSON(w, http.StatusOK, metadataResponse{Metadata: meta})
	}
}

func writeFetchError(w http.ResponseWriter, d deps.Deps, target string, err error) {
	var fe *metadata.FetchError
	resp := metadataError{Error: err.Error()}
	status := http.StatusBadGateway

	switch {
	case errors.Is(err, metadata.ErrRequestSetup):
		status, resp.Kind = http.StatusBadRequest, "validation"
	case errors.As(err, &fe) && errors.Is(err, metadata.ErrUpstreamStatus):
		resp.Kind, resp.UpstreamStatus = "upstream_status", fe.StatusCode
	case errors.Is(err, metadata.ErrNoResponse):
		status, resp.Kind = http.StatusGatewayTimeout, "no_response"
	default:
		resp.Kind = "transport"
	}

	d.Logger.Info("metadata fetch failed",
		logger.String("url", target),
		logger.String("kind", resp.Kind),
		logger.Error(err))
	writeJSON(w, status, resp)
}
