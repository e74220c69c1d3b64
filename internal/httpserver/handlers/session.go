package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	"github.com/MrSnakeDoc/auramark/internal/session"
)

type sessionResponse struct {
	UserID    string       `json:"userId"`
	Revision  int64        `json:"revision"`
	Bookmarks int          `json:"bookmarks"`
	Folders   int          `json:"folders"`
	View      session.View `json:"view"`
}

// openSession returns the caller's session, subscribing on first use.
func openSession(d deps.Deps, r *http.Request) (*session.Session, error) {
	uid, err := currentUser(r)
	if err != nil {
		return nil, err
	}
	return d.Sessions.Open(r.Context(), uid)
}

func describe(s *session.Session) sessionResponse {
	bookmarks, folders := s.Store().Count()
	return sessionResponse{
		UserID:    s.UserID(),
		Revision:  s.Store().Revision(),
		Bookmarks: bookmarks,
		Folders:   folders,
		View:      s.View(),
	}
}

// Login subscribes to the caller's change feed and waits for the first snapshot.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := openSession(d, r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, describe(s))
	}
}

// SessionInfo reports the caller's session without opening one.
func SessionInfo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := currentUser(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		s, ok := d.Sessions.Get(uid)
		if !ok || !s.Ready() {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no open session", Kind: "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, describe(s))
	}
}

// Logout cancels the caller's change feed and empties its store.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := currentUser(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if !d.Sessions.Close(uid) {
			d.Logger.Debug("logout without session", logger.String("user", uid))
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
