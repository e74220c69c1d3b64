package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
)

type folderListResponse struct {
	Revision int64               `json:"revision"`
	Folders  []domain.Folder     `json:"folders"`
	Tree     []domain.FolderNode `json:"tree"`
}

type folderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// ListFolders returns the flat folder list and its nested tree.
func ListFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := openSession(d, r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		snap := s.Snapshot()
		folders := snap.Folders
		if folders == nil {
			folders = []domain.Folder{}
		}
		writeJSON(w, http.StatusOK, folderListResponse{
			Revision: snap.Revision,
			Folders:  folders,
			Tree:     s.Store().Tree().Nested(),
		})
	}
}

// CreateFolder adds a folder under parentId (root when null).
func CreateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.CreateFolder(r.Context(), req.Name, req.ParentID)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// RenameFolder changes the name of {id}.
func RenameFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.RenameFolder(r.Context(), chi.URLParam(r, "id"), req.Name)
		respond(w, r, d, res, err)
	}
}

// DeleteFolder removes {id}; ?policy= decides what happens to its bookmarks.
func DeleteFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policy, err := domain.ParseCascadePolicy(r.URL.Query().Get("policy"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.DeleteFolder(r.Context(), chi.URLParam(r, "id"), policy)
		respond(w, r, d, res, err)
	}
}
