package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth requires an "Authorization: Bearer <token>" header and stores the
// verified user id in the request context. EventSource clients cannot set
// headers, so the stream route may pass the token as ?access_token= instead.
func Auth(v TokenVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			uid, err := v.Verify(token)
			if err != nil {
				log.Debug("rejected bearer token",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				unauthorized(w, "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), uid)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/stream") {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="auramark"`)
	deny(w, http.StatusUnauthorized, msg, "permission")
}
