package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// defaultErrorMessage is used when an error body carries no message.
const defaultErrorMessage = "An error occurred"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status    int
	Message   string
	Code      string            // the backend's short "error" field, e.g. "Validation Failed"
	Details   map[string]string // field-level validation messages, if any
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func newAPIError(resp *http.Response, requestID string) *APIError {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		Message:   defaultErrorMessage,
		RequestID: requestID,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var body errorBody
	if json.Unmarshal(data, &body) != nil {
		return apiErr
	}
	if body.Message != "" {
		apiErr.Message = body.Message
	}
	apiErr.Code = body.Error
	apiErr.Details = body.Details
	return apiErr
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// StatusOf returns the HTTP status carried by err, or 0 if err is not an *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound returns true if the backend answered 404.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// IsUnauthorized returns true if the backend rejected the token.
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsForbidden returns true if the caller's role may not use the endpoint.
func IsForbidden(err error) bool { return StatusOf(err) == http.StatusForbidden }
