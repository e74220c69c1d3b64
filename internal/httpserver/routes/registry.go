package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/mw"
)

// defaultRequestTimeout applies when deps carry no request timeout.
const defaultRequestTimeout = 15 * time.Second

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}

// api returns r restricted to authenticated callers on an allowed host,
// with the per-request timeout applied.
func api(r chi.Router, d deps.Deps) chi.Router {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return stream(r, d).With(middleware.Timeout(timeout))
}

// stream is api without the request timeout, for long-lived responses.
func stream(r chi.Router, d deps.Deps) chi.Router {
	return r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), mw.Auth(d.Verifier, d.Logger))
}

// ops returns r restricted to the allowed CIDRs.
func ops(r chi.Router, d deps.Deps) chi.Router {
	return r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
}
