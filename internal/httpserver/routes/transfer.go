package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/mw"
)

func init() { Register(registerTransfer) }

func registerTransfer(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/export", handlers.Export(d))
	a.Post("/api/import", handlers.Import(d))
	a.Post("/api/import/homepage", handlers.ImportHomepage(d))
	a.Post("/api/import/netscape", handlers.ImportNetscape(d))

	a.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.MetadataRateBurst,
		RefillPerIPPerMin: d.MetadataRatePerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})).Post("/api/metadata", handlers.FetchMetadata(d))
}
