package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_OpenGraphWins(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><head>
		<title>Plain title</title>
		<meta property="og:title" content="  OG   Title ">
		<meta name="twitter:title" content="Twitter Title">
		<meta property="og:image" content="/img/cover.png">
		<link rel="icon" href="/favicon.ico">
	</head></html>`)

	meta, err := New(Options{}).Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	require.NotNil(t, meta.Title)
	require.NotNil(t, meta.Thumbnail)
	assert.Equal(t, "OG Title", *meta.Title)
	assert.Equal(t, srv.URL+"/img/cover.png", *meta.Thumbnail)
}

func TestFetch_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		head      string
		wantTitle string
		wantThumb string
	}{
		{
			name:      "twitter tags",
			head:      `<meta name="twitter:title" content="TT"><meta name="twitter:image" content="https://cdn.example.com/t.png">`,
			wantTitle: "TT",
			wantThumb: "https://cdn.example.com/t.png",
		},
		{
			name:      "title element and icon",
			head:      "<title>\n  Hello\n  World </title><link rel=\"icon\" href=\"fav.png\">",
			wantTitle: "Hello World",
			wantThumb: "/dir/fav.png",
		},
		{
			name:      "shortcut icon",
			head:      `<title>X</title><link rel="shortcut icon" href="/s.ico">`,
			wantTitle: "X",
			wantThumb: "/s.ico",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, "<html><head>"+tt.head+"</head></html>")
			meta, err := New(Options{}).Fetch(context.Background(), srv.URL+"/dir/page")
			require.NoError(t, err)
			require.NotNil(t, meta.Title)
			assert.Equal(t, tt.wantTitle, *meta.Title)
			require.NotNil(t, meta.Thumbnail)
			want := tt.wantThumb
			if strings.HasPrefix(want, "/") {
				want = srv.URL + want
			}
			assert.Equal(t, want, *meta.Thumbnail)
		})
	}
}

func TestFetch_NothingFound(t *testing.T) {
	srv := serve(t, http.StatusOK, "<html><body>no head</body></html>")
	meta, err := New(Options{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Nil(t, meta.Title)
	assert.Nil(t, meta.Thumbnail)
}

func TestFetch_SendsCrawlerHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("<title>ok</title>"))
	}))
	defer srv.Close()

	_, err := New(Options{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "en-US,en;q=0.5", gotLang)
}

func TestFetch_UpstreamStatus(t *testing.T) {
	srv := serve(t, http.StatusNotFound, "gone")
	_, err := New(Options{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamStatus))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(Options{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoResponse))
}

func TestFetch_BadURL(t *testing.T) {
	f := New(Options{})
	for _, raw := range []string{"", "ftp://example.com", "not a url", "http://"} {
		_, err := f.Fetch(context.Background(), raw)
		assert.Truef(t, errors.Is(err, ErrRequestSetup), "url %q: got %v", raw, err)
	}
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "a b c", CleanTitle("  a\n\tb   c "))

	long := strings.Repeat("x", 250)
	got := CleanTitle(long)
	assert.Len(t, []rune(got), 200)
	assert.True(t, strings.HasSuffix(got, "..."))

	exact := strings.Repeat("y", 200)
	assert.Equal(t, exact, CleanTitle(exact))
}
