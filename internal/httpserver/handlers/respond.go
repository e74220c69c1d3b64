package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
)

// maxBodyBytes caps JSON request bodies other than imports.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPermission):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoOp):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {error, kind}. Transport and unclassified
// errors are logged and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, Kind: domain.ErrorKind(err)})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validationf("request body is empty")
		}
		return domain.Validationf("invalid request body: %v", err)
	}
	return nil
}

func currentUser(r *http.Request) (string, error) {
	uid, ok := identity.UserFrom(r.Context())
	if !ok {
		return "", fmt.Errorf("%w: no authenticated user", domain.ErrPermission)
	}
	return uid, nil
}
