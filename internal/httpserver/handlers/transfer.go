package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	"github.com/MrSnakeDoc/auramark/internal/service"
	"github.com/MrSnakeDoc/auramark/internal/sources/homepage"
	"github.com/MrSnakeDoc/auramark/internal/transfer"
)

type importResponse struct {
	service.Result
	Summary transfer.Summary `json:"summary"`
}

// Export downloads the caller's collections as ?format=json (default),
// yaml or html (Netscape bookmark file).
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := currentUser(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		format := strings.ToLower(r.URL.Query().Get("format"))
		if format == "" {
			format = "json"
		}
		var contentType, ext string
		switch format {
		case "json":
			contentType, ext = "application/json", "json"
		case "yaml", "yml":
			contentType, ext = "application/yaml", "yaml"
		case "html":
			contentType, ext = "text/html; charset=utf-8", "html"
		default:
			writeError(w, r, d.Logger, domain.Validationf("unknown export format %q", format))
			return
		}

		snap, err := d.Sessions.Current(r.Context(), uid)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		now := d.Now()
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="auramark-%s.%s"`, now.UTC().Format("20060102-150405"), ext))

		switch ext {
		case "json":
			err = transfer.WriteJSON(w, snap, now)
		case "yaml":
			err = transfer.WriteYAML(w, snap, now)
		default:
			err = transfer.WriteNetscape(w, snap)
		}
		if err != nil {
			// Headers are gone; the client sees a truncated file.
			d.Logger.Error("export failed",
				logger.String("user", uid),
				logger.String("format", ext),
				logger.Error(err))
		}
	}
}

// Import merges a JSON export document into the caller's collections.
func Import(d deps.Deps) http.HandlerFunc {
	return importWith(d, func(r *http.Request, body io.Reader) (*domain.Batch, transfer.Summary, error) {
		return transfer.ReadJSON(body)
	})
}

// ImportNetscape imports a browser bookmark HTML file.
func ImportNetscape(d deps.Deps) http.HandlerFunc {
	return importWith(d, func(r *http.Request, body io.Reader) (*domain.Batch, transfer.Summary, error) {
		return transfer.ReadNetscape(body)
	})
}

// ImportHomepage imports a Homepage bookmarks.yaml or, with
// ?kind=services, services.yaml document.
func ImportHomepage(d deps.Deps) http.HandlerFunc {
	mapper := homepage.NewMapper()
	return importWith(d, func(r *http.Request, body io.Reader) (*domain.Batch, transfer.Summary, error) {
		kind, err := homepage.ParseKind(r.URL.Query().Get("kind"))
		if err != nil {
			return nil, transfer.Summary{}, domain.Validationf("%v", err)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, transfer.Summary{}, domain.Validationf("failed to read upload: %v", err)
		}
		b, err := mapper.Map(kind, data)
		if err != nil {
			return nil, transfer.Summary{}, err
		}
		return b, summarize(b), nil
	})
}

type parseFunc func(r *http.Request, body io.Reader) (*domain.Batch, transfer.Summary, error)

func importWith(d deps.Deps, parse parseFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := currentUser(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		body := http.MaxBytesReader(w, r.Body, transfer.MaxImportBytes)
		b, sum, err := parse(r, body)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		res, err := d.Service.Import(r.Context(), b)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		d.Logger.Info("import committed",
			logger.String("user", uid),
			logger.String("path", r.URL.Path),
			logger.Int("folders", sum.Folders),
			logger.Int("bookmarks", sum.Bookmarks),
			logger.Int64("revision", res.Revision))
		writeJSON(w, http.StatusOK, importResponse{Result: res, Summary: sum})
	}
}

func summarize(b *domain.Batch) transfer.Summary {
	var sum transfer.Summary
	for _, w := range b.Writes {
		switch w.Collection {
		case domain.CollectionFolders:
			sum.Folders++
		case domain.CollectionBookmarks:
			sum.Bookmarks++
		}
	}
	return sum
}
