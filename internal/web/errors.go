package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as a stable JSON shape with a machine-readable code
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err)
//  3. The error is classified by type to pick status code and code string
//  4. Technical error + context is logged with request ID for correlation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/idoblueprint/guestlist/internal/guestimport"
	"github.com/idoblueprint/guestlist/internal/store"
)

// ErrorResponse is the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Error) fields.
// Validation failures also carry the per-row findings.
type ErrorResponse struct {
	Error      string                              `json:"error"`
	Code       string                              `json:"code"`
	Validation *guestimport.ImportValidationResult `json:"validation,omitempty"`
}

// respondError classifies err, logs it with request context, and writes the
// JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := classifyError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", resp.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, resp)
}

// classifyError maps domain errors to HTTP status codes and stable codes.
func classifyError(err error) (int, ErrorResponse) {
	var formatErr *guestimport.FormatError
	var validationErr *guestimport.ValidationError
	var repoErr *guestimport.RepositoryError

	switch {
	case errors.As(err, &formatErr):
		return http.StatusBadRequest, ErrorResponse{
			Error: formatErr.Error(),
			Code:  "UNREADABLE_FILE",
		}
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:      validationErr.Error(),
			Code:       "VALIDATION_FAILED",
			Validation: &validationErr.Result,
		}
	case errors.As(err, &repoErr):
		return http.StatusInternalServerError, ErrorResponse{
			Error: "guest store operation failed",
			Code:  "STORE_FAILURE",
		}
	case errors.Is(err, guestimport.ErrTenantMissing):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "NO_COUPLE_SELECTED",
		}
	case errors.Is(err, guestimport.ErrImportNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: err.Error(),
			Code:  "IMPORT_NOT_FOUND",
		}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "guest not found",
			Code:  "GUEST_NOT_FOUND",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL",
		}
	}
}

// badRequest writes a 400 with the given message, for malformed input the
// handler spots itself.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	slog.Warn("bad request",
		"path", r.URL.Path,
		"method", r.Method,
		"reason", msg,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: "BAD_REQUEST"})
}

// writeJSON encodes v as JSON with the given status code.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
