package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/mw"
)

func init() { Register(registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	ops(r, d).Get("/readyz", handlers.Readyz(d))
	ops(r, d).Get("/infra", handlers.Infra(d))
	ops(r, d).With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/api/sync/homepage", handlers.SyncHomepage(d))
}
