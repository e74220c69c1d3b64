package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/handlers"
)

func init() { Register(registerFolders) }

func registerFolders(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/folders", handlers.ListFolders(d))
	a.Post("/api/folders", handlers.CreateFolder(d))
	a.Patch("/api/folders/{id}", handlers.RenameFolder(d))
	a.Delete("/api/folders/{id}", handlers.DeleteFolder(d))

	a.Get("/api/tags", handlers.ListTags(d))
	a.Put("/api/tags/{tag}", handlers.RenameTag(d))
	a.Delete("/api/tags/{tag}", handlers.DeleteTag(d))
}
