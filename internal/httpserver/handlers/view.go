package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/session"
)

// GetView returns the caller's active location and recent window.
func GetView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := openSession(d, r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	}
}

// SetView changes the active location. A folder location must exist.
func SetView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v session.View
		if err := decodeJSON(w, r, &v); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if v.Window != "" {
			if _, err := domain.ParseWindow(string(v.Window)); err != nil {
				writeError(w, r, d.Logger, err)
				return
			}
		}

		s, err := openSession(d, r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if v.Location == (domain.Location{}) {
			v.Location = s.View().Location
		}
		if v.Location.Kind == domain.LocationFolder {
			if _, ok := s.Store().Folder(v.Location.Folder); !ok {
				writeError(w, r, d.Logger, domain.NotFoundf("folder %s", v.Location.Folder))
				return
			}
		}
		writeJSON(w, http.StatusOK, s.SetView(v))
	}
}
