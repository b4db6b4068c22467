package api

import (
	"encoding/json"
	"strings"
)

// Envelope is the wrapper used by every backend response.
type Envelope[T any] struct {
	Success bool     `json:"success"`
	Data    *T       `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Unwrap returns the data carried by the envelope, or an error describing why
// the request failed. fallback is used when the envelope carries neither
// errors nor a message.
func (e Envelope[T]) Unwrap(fallback string) (*T, error) {
	if e.Success && e.Data != nil {
		return e.Data, nil
	}
	return nil, Error{Message: e.failureMessage(fallback), Errors: e.Errors}
}

func (e Envelope[T]) failureMessage(fallback string) string {
	if len(e.Errors) > 0 {
		return strings.Join(e.Errors, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	if fallback == "" {
		return genericFallback
	}
	return fallback
}

// failureEnvelope is used to decode the body of a non-2xx response. Only the
// fields that explain the failure are read.
type failureEnvelope struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// decodeFailure builds the message for a non-2xx response. A body that does
// not decode, or decodes without a message, falls back to the status code.
func decodeFailure(status int, body []byte) (string, []string) {
	var env failureEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return statusFallback(status), nil
	}
	if len(env.Errors) > 0 {
		return strings.Join(env.Errors, ", "), env.Errors
	}
	if env.Message != "" {
		return env.Message, nil
	}
	return statusFallback(status), nil
}
