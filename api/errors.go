package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned by api.Client methods when a request fails, either because
// the backend could not be reached, or because it answered with an envelope
// where success is false.
type Error struct {
	// Method is the HTTP request method.
	Method string
	// Path is the HTTP request path.
	Path string
	// Code is the HTTP status of the response, or 0 if no response was received.
	Code int32
	// Message is the text surfaced to the user. It is built from the envelope
	// errors, the envelope message, or a fallback, in that order.
	Message string
	// Errors holds the raw envelope errors, if any were sent.
	Errors []string

	cause error
}

func (e Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %v", e.Code, strings.ToLower(http.StatusText(int(e.Code))))
	}
	return e.Message
}

// Unwrap returns the transport or decoding failure behind the error, if any.
func (e Error) Unwrap() error {
	return e.cause
}

// ErrorStatusCode returns the HTTP status code from an Error in the error
// chain. If err is nil or is not an Error, ErrorStatusCode returns 0.
func ErrorStatusCode(err error) int32 {
	var apiError Error
	if errors.As(err, &apiError) {
		return apiError.Code
	}
	return 0
}

// statusFallback is the message used when a response could not be decoded.
func statusFallback(status int) string {
	return fmt.Sprintf("Error Code: %d", status)
}

const genericFallback = "An unexpected error occurred"
