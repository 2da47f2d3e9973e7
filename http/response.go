package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/frankcohen/cloudcity"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteText writes a plain text response
func WriteText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

// WriteError writes a plain text error page
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteText(w, code, fmt.Sprintf("%s: %s\n", http.StatusText(code), message))
}

// WriteJSONError writes a JSON error response
func WriteJSONError(w http.ResponseWriter, code int, errCode, message string) {
	if err := WriteJSON(w, code, ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes a plain text error page with the status matching err.
func HandleError(w http.ResponseWriter, err error) {
	code, _ := classify(err)
	logError(code, err)
	WriteError(w, code, err.Error())
}

// HandleJSONError writes a JSON error response with the status matching err.
func HandleJSONError(w http.ResponseWriter, err error) {
	code, errCode := classify(err)
	logError(code, err)
	WriteJSONError(w, code, errCode, err.Error())
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

func classify(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, cloudcity.ErrInvalidPath):
		return http.StatusBadRequest, "invalid_path"
	case errors.Is(err, cloudcity.ErrMalformedRequest):
		return http.StatusBadRequest, "malformed_request"
	case errors.Is(err, cloudcity.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, cloudcity.ErrNotAFile):
		return http.StatusNotFound, "not_a_file"
	case errors.Is(err, cloudcity.ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, cloudcity.ErrIO):
		return http.StatusInternalServerError, "io_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func logError(code int, err error) {
	if code >= http.StatusInternalServerError {
		slog.Error("request error", "status", code, "error", err)
		return
	}
	slog.Warn("request error", "status", code, "error", err)
}
