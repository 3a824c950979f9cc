package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/netlens/netlens/pkg/analysis"
	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/manager"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/topology"
)

// errUnauthorized covers missing or expired bearer tokens.
var errUnauthorized = errors.New("unauthorized")

// apiError is the JSON error envelope returned on every non-2xx response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps domain sentinels onto the HTTP taxonomy.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, manager.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, analysis.ErrBusy):
		return http.StatusConflict, "BUSY"
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, manager.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "TOO_LARGE"
	case errors.Is(err, manager.ErrValidation), errors.Is(err, topology.ErrInvalidRole):
		return http.StatusBadRequest, "VALIDATION"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithComponent("api").Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, apiError{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithComponent("api").Error().Err(err).Msg("Failed to encode response")
	}
}

// decodeJSON reads a request body into v, rejecting malformed payloads.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed json: %v", manager.ErrValidation, err)
	}
	return nil
}
