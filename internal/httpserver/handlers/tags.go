package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
)

// ListTags returns the sorted tag set, trashed bookmarks included.
func ListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := openSession(d, r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"revision": s.Store().Revision(),
			"tags":     s.Store().Tags(),
		})
	}
}

// RenameTag renames {tag} on every bookmark carrying it.
func RenameTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.RenameTag(r.Context(), tagParam(r), req.Name)
		respond(w, r, d, res, err)
	}
}

// DeleteTag removes {tag} from every bookmark.
func DeleteTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Service.DeleteTag(r.Context(), tagParam(r))
		respond(w, r, d, res, err)
	}
}

// tagParam returns the {tag} path segment, percent-decoded.
func tagParam(r *http.Request) string {
	raw := chi.URLParam(r, "tag")
	if tag, err := url.PathUnescape(raw); err == nil {
		return tag
	}
	return raw
}
