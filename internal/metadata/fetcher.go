package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/auramark/internal/utils"
)

const (
	// DefaultTimeout bounds the whole page fetch.
	DefaultTimeout = 5 * time.Second
	// DefaultUserAgent identifies as a crawler so sites serve their meta tags.
	DefaultUserAgent = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	// DefaultMaxBodyBytes caps how much of a page is parsed.
	DefaultMaxBodyBytes = 2 << 20

	maxTitleRunes = 200
)

// Metadata is what a page advertises about itself. Nil fields were not found.
type Metadata struct {
	Title     *string `json:"title"`
	Thumbnail *string `json:"thumbnail"`
}

// Error classes of a failed fetch.
var (
	// ErrUpstreamStatus means the page answered with a non-2xx status.
	ErrUpstreamStatus = errors.New("upstream returned an error status")
	// ErrNoResponse means no usable response arrived (timeout, DNS, reset).
	ErrNoResponse = errors.New("no response from upstream")
	// ErrRequestSetup means the request could not be built (bad URL).
	ErrRequestSetup = errors.New("invalid metadata request")
)

// FetchError carries the class of a failure and, for upstream errors, the status.
type FetchError struct {
	Class      error
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%v: status %d", e.Class, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Class, e.Err)
	default:
		return e.Class.Error()
	}
}

// Unwrap exposes both the class sentinel and the cause to errors.Is.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Err}
}

// Options configures a Fetcher. Zero values fall back to the defaults.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Transport    http.RoundTripper
}

// Fetcher scrapes title and thumbnail metadata from web pages.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// New builds a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodyBytes,
	}
}

// Fetch retrieves rawURL and extracts its metadata.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return Metadata{}, &FetchError{Class: ErrRequestSetup, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Metadata{}, &FetchError{Class: ErrRequestSetup, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return Metadata{}, &FetchError{Class: ErrNoResponse, Err: err}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Metadata{}, &FetchError{Class: ErrUpstreamStatus, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return Metadata{}, &FetchError{Class: ErrNoResponse, Err: err}
	}

	base := target
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL // after redirects
	}
	return Extract(doc, base), nil
}

func parseTarget(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("url is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("url has no host")
	}
	return u, nil
}

// Extract reads title and thumbnail from a parsed page. base resolves
// relative image and icon links.
func Extract(doc *goquery.Document, base *url.URL) Metadata {
	var meta Metadata

	title := firstNonEmpty(
		attr(doc, `meta[property="og:title"]`, "content"),
		attr(doc, `meta[name="twitter:title"]`, "content"),
		doc.Find("title").First().Text(),
	)
	if title = CleanTitle(title); title != "" {
		meta.Title = &title
	}

	thumb := firstNonEmpty(
		attr(doc, `meta[property="og:image"]`, "content"),
		attr(doc, `meta[name="twitter:image"]`, "content"),
		attr(doc, `link[rel="icon"]`, "href"),
		attr(doc, `link[rel="shortcut icon"]`, "href"),
	)
	if thumb != "" {
		if abs := resolve(base, thumb); abs != "" {
			meta.Thumbnail = &abs
		}
	}
	return meta
}

// CleanTitle collapses whitespace and caps the title length.
func CleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxTitleRunes {
		runes := []rune(s)
		s = string(runes[:maxTitleRunes-3]) + "..."
	}
	return s
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
