package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
)

type bulkRequest struct {
	IDs      []string `json:"ids"`
	FolderID string   `json:"folderId,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type moveRequest struct {
	Source domain.DragSource `json:"source"`
	Target domain.Location   `json:"target"`
}

func BulkTrash(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.BulkTrash(r.Context(), req.IDs)
		respond(w, r, d, res, err)
	}
}

func BulkMove(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.BulkMove(r.Context(), req.IDs, req.FolderID)
		respond(w, r, d, res, err)
	}
}

func BulkTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.BulkAddTags(r.Context(), req.IDs, req.Tags)
		respond(w, r, d, res, err)
	}
}

// Move drops a bookmark or folder onto a location, as drag and drop or
// the "Move to folder" menu do.
func Move(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		res, err := d.Service.Move(r.Context(), req.Source, req.Target)
		respond(w, r, d, res, err)
	}
}
