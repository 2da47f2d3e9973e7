package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frankcohen/cloudcity"
	cchttp "github.com/frankcohen/cloudcity/http"
)

func TestHandleError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid path", cloudcity.ErrInvalidPath, http.StatusBadRequest, "invalid_path"},
		{"malformed", cloudcity.ErrMalformedRequest, http.StatusBadRequest, "malformed_request"},
		{"not found", cloudcity.ErrNotFound, http.StatusNotFound, "not_found"},
		{"not a file", cloudcity.ErrNotAFile, http.StatusNotFound, "not_a_file"},
		{"permission", cloudcity.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{"io", cloudcity.ErrIO, http.StatusInternalServerError, "io_error"},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "too_large"},
		{"unknown", errors.New("some unexpected error"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			cchttp.HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, http.StatusText(tt.wantStatus)+": "+tt.err.Error()+"\n", rec.Body.String())

			rec = httptest.NewRecorder()
			cchttp.HandleJSONError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"error":%q`, tt.wantCode))
		})
	}
}

func TestHandleError_WrappedNotFound(t *testing.T) {
	rec := httptest.NewRecorder()

	wrappedErr := fmt.Errorf("open files/a.txt: %w", cloudcity.ErrNotFound)
	cchttp.HandleError(rec, wrappedErr)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "open files/a.txt")
}

func TestHandleError_MalformedWinsOverIO(t *testing.T) {
	rec := httptest.NewRecorder()

	cchttp.HandleError(rec, fmt.Errorf("%w: %w", cloudcity.ErrMalformedRequest, cloudcity.ErrIO))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleError_TooLargeWinsOverMalformed(t *testing.T) {
	rec := httptest.NewRecorder()

	cchttp.HandleError(rec, fmt.Errorf("%w: read part header: %w", cloudcity.ErrMalformedRequest, &http.MaxBytesError{Limit: 1}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestWriteJSONError_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	cchttp.WriteJSONError(rec, http.StatusBadRequest, "bad_request", "Invalid request")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error":"bad_request"`)
	assert.Contains(t, rec.Body.String(), `"message":"Invalid request"`)
}

func TestWriteText(t *testing.T) {
	rec := httptest.NewRecorder()

	cchttp.WriteText(rec, http.StatusOK, "Uploaded")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Uploaded", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestWriteJSON_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	data := map[string]string{"key": "value"}
	err := cchttp.WriteJSON(rec, http.StatusOK, data)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"key":"value"`)
}
