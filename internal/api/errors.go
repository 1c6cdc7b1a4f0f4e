package api

import (
	"errors"
	"fmt"
)

// ErrorResponse is the tagged error value a Client returns for transport
// and API failures. Callers discriminate with IsErrorResponse instead of
// inspecting status codes at every call site.
type ErrorResponse struct {
	// Status is the HTTP status code, or 0 for network-level failures.
	Status int

	// Message is a short human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *ErrorResponse) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: %s", e.Message)
}

func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

// IsErrorResponse reports whether err is (or wraps) an API ErrorResponse.
func IsErrorResponse(err error) bool {
	var er *ErrorResponse
	return errors.As(err, &er)
}
