package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/handlers"
)

func init() { Register(registerSession) }

func registerSession(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Post("/api/session", handlers.Login(d))
	a.Get("/api/session", handlers.SessionInfo(d))
	a.Delete("/api/session", handlers.Logout(d))
	a.Get("/api/view", handlers.GetView(d))
	a.Put("/api/view", handlers.SetView(d))

	stream(r, d).Get("/api/stream", handlers.Stream(d))
}
