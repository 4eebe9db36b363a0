package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dreamlister/dreamlister-api/internal/api/shared"
	"github.com/dreamlister/dreamlister-api/internal/domain"
	"github.com/dreamlister/dreamlister-api/internal/platform/logger"
)

// maxRequestBodyBytes bounds item and auth payloads; nothing on this surface
// legitimately needs more than 1 MiB.
const maxRequestBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dst, limiting body size and
// rejecting unknown top-level members.
func DecodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// getActor extracts the authenticated username placed in the context by the
// authentication middleware. When absent it writes a 401 response and
// returns false; callers must stop processing.
func getActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := shared.GetUsername(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("request reached handler without authenticated username",
			"path", r.URL.Path,
			"method", r.Method)
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return "", false
	}
	return username, true
}

// getPathItemID extracts the numeric item ID from the URL path.
// Returns a wrapped domain.ErrInvalidID when the parameter is missing or
// not a positive integer.
func getPathItemID(r *http.Request) (int64, error) {
	pathParam := chi.URLParam(r, "id")
	if pathParam == "" {
		return 0, fmt.Errorf("%w: missing id parameter", domain.ErrInvalidID)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidID, pathParam)
	}

	return id, nil
}
