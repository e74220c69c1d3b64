package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/service"
)

type bookmarkListResponse struct {
	Location domain.Location     `json:"location"`
	Window   domain.RecentWindow `json:"window"`
	Search   string              `json:"q,omitempty"`
	Count    int                 `json:"count"`
	Revision int64               `json:"revision"`
	Items    []domain.Bookmark   `json:"bookmarks"`
}

// ListBookmarks returns the bookmarks visible at ?location= (default: the
// session's active view), narrowed by ?q= and, for Recent, ?window=.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := openSession(d, r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		view := s.View()
		q := r.URL.Query()
		if raw := q.Get("location"); raw != "" {
			if view.Location, err = domain.ParseLocation(raw); err != nil {
				writeError(w, r, d.Logger, err)
				return
			}
		}
		if raw := q.Get("window"); raw != "" {
			if view.Window, err = domain.ParseWindow(raw); err != nil {
				writeError(w, r, d.Logger, err)
				return
			}
		}

		snap := s.Snapshot()
		items := domain.FilterBookmarks(snap.Bookmarks, domain.ViewQuery{
			Location: view.Location,
			Window:   view.Window,
			Search:   q.Get("q"),
			Now:      d.Now(),
		})
		writeJSON(w, http.StatusOK, bookmarkListResponse{
			Location: view.Location,
			Window:   view.Window,
			Search:   q.Get("q"),
			Count:    len(items),
			Revision: snap.Revision,
			Items:    items,
		})
	}
}

// CreateBookmark adds a bookmark from a draft body.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft domain.BookmarkDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.CreateBookmark(r.Context(), draft)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// UpdateBookmark replaces the editable fields of {id}.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft domain.BookmarkDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.UpdateBookmark(r.Context(), chi.URLParam(r, "id"), draft)
		respond(w, r, d, res, err)
	}
}

// bookmarkAction adapts a single-id service operation to a handler.
func bookmarkAction(d deps.Deps, op func(context.Context, string) (service.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := op(r.Context(), chi.URLParam(r, "id"))
		respond(w, r, d, res, err)
	}
}

func ToggleFavorite(d deps.Deps) http.HandlerFunc { return bookmarkAction(d, d.Service.ToggleFavorite) }
func TrashBookmark(d deps.Deps) http.HandlerFunc  { return bookmarkAction(d, d.Service.TrashBookmark) }
func RestoreBookmark(d deps.Deps) http.HandlerFunc {
	return bookmarkAction(d, d.Service.RestoreBookmark)
}
func DeleteBookmark(d deps.Deps) http.HandlerFunc { return bookmarkAction(d, d.Service.DeleteBookmark) }

func respond(w http.ResponseWriter, r *http.Request, d deps.Deps, res service.Result, err error) {
	if err != nil {
		writeError(w, r, d.Logger, err)
		return
	}
	if res.IDs == nil {
		res.IDs = []string{}
	}
	writeJSON(w, http.StatusOK, res)
}
