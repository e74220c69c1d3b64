package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if uid, found := identity.UserFrom(r.Context()); found {
		w.Header().Set("X-User", uid)
	}
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"example.com", "example.com", true},
		{"example.com", "example.com:8080", true},
		{"sub.example.com", "*.example.com", true},
		{"a.b.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evilexample.com", "*.example.com", false},
		{"other.com", "example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.host+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchHost(tt.host, tt.pattern))
		})
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"Bookmarks.Example.com"}, logger.Nop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "bookmarks.example.com:443"
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	r.Host = "attacker.test"
	rec := serve(h, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"permission"`)

	open := EnforceHost(nil, logger.Nop())(okHandler)
	assert.Equal(t, http.StatusOK, serve(open, r).Code)
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, true, logger.Nop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5000"
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	r.Header.Set("X-Forwarded-For", "8.8.8.8")
	assert.Equal(t, http.StatusForbidden, serve(h, r).Code)
}

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(token string) (string, error) {
	if uid, found := f[token]; found {
		return uid, nil
	}
	return "", assert.AnError
}

func TestAuth(t *testing.T) {
	h := Auth(fakeVerifier{"good": "alice"}, logger.Nop())(okHandler)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		status int
		user   string
	}{
		{name: "bearer", method: http.MethodGet, path: "/api/bookmarks", header: "Bearer good", status: http.StatusOK, user: "alice"},
		{name: "scheme is case-insensitive", method: http.MethodGet, path: "/api/bookmarks", header: "bearer good", status: http.StatusOK, user: "alice"},
		{name: "missing", method: http.MethodGet, path: "/api/bookmarks", status: http.StatusUnauthorized},
		{name: "invalid", method: http.MethodGet, path: "/api/bookmarks", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "basic auth", method: http.MethodGet, path: "/api/bookmarks", header: "Basic Z29vZA==", status: http.StatusUnauthorized},
		{name: "query token on stream", method: http.MethodGet, path: "/api/stream?access_token=good", status: http.StatusOK, user: "alice"},
		{name: "query token elsewhere", method: http.MethodGet, path: "/api/bookmarks?access_token=good", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := serve(h, r)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.user, rec.Header().Get("X-User"))
			if tt.status == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	r.Header.Set("Origin", "https://app.example.com")
	rec := serve(h, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	r = httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	r.Header.Set("Origin", "https://other.example.com")
	rec = serve(h, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	wildcard := CORS([]string{"*"})(okHandler)
	r = httptest.NewRequest(http.MethodOptions, "/api/tags", nil)
	r.Header.Set("Origin", "https://whatever.test")
	r.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec = serve(wildcard, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 1})(okHandler)

	r := httptest.NewRequest(http.MethodPost, "/api/metadata", nil)
	r.RemoteAddr = "192.0.2.10:1000"
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	rec := serve(h, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(h, r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"kind":"rate_limited"`)

	// Users are limited separately from their IP.
	authed := r.WithContext(identity.WithUser(r.Context(), "alice"))
	assert.Equal(t, http.StatusOK, serve(h, authed).Code)
}

func TestLimiterRefills(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 60})
	now := time.Now()

	allowed, _, _ := l.allow("k", now)
	assert.True(t, allowed)
	allowed, _, retry := l.allow("k", now)
	assert.False(t, allowed)
	assert.Equal(t, 1, retry)

	allowed, _, _ = l.allow("k", now.Add(time.Second))
	assert.True(t, allowed)
}
