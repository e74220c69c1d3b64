package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/handlers"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/bookmarks", handlers.ListBookmarks(d))
	a.Post("/api/bookmarks", handlers.CreateBookmark(d))
	a.Put("/api/bookmarks/{id}", handlers.UpdateBookmark(d))
	a.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
	a.Post("/api/bookmarks/{id}/favorite", handlers.ToggleFavorite(d))
	a.Post("/api/bookmarks/{id}/trash", handlers.TrashBookmark(d))
	a.Post("/api/bookmarks/{id}/restore", handlers.RestoreBookmark(d))

	a.Post("/api/bulk/trash", handlers.BulkTrash(d))
	a.Post("/api/bulk/move", handlers.BulkMove(d))
	a.Post("/api/bulk/tags", handlers.BulkTags(d))
	a.Post("/api/move", handlers.Move(d))
}
