package cmd

import (
	"errors"
	"net/http"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/selection"
	"github.com/tatipharma/pharmabi/internal/session"
)

// CLI Errors are user facing errors that are formatted.
// Should be used for communication, rather than a stacktrace.
type Error struct {
	// Short redacted version of OriginalError, required if OriginalError is set
	Cause string

	// OriginalError is the error that bubbled up, used for logging/debugging
	// Only set this if you need it to be printed as part of the user facing 'Message'.
	OriginalError error

	// Human readable message to resolve the error. These should be full sentences.
	Suggestion string
}

// Format is one of the three:
// a) Error: Cause
//
//	OriginalError
//
//	Suggestion
//
// b) Error: Cause
//
//	Suggestion
//
// c) Suggestion
func (e Error) Error() string {
	if e.OriginalError == nil && len(e.Cause) == 0 {
		return e.Suggestion
	}

	output := "Error: " + e.Cause
	if e.OriginalError != nil {
		output += "\n" + e.OriginalError.Error()
	}

	if len(e.Suggestion) > 0 {
		output += "\n\n" + e.Suggestion
	}

	return output
}

func (e Error) Unwrap() error {
	return e.OriginalError
}

// userError turns the errors commands commonly return into an Error with a
// suggestion. Other errors are returned unchanged.
func userError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr Error
	if errors.As(err, &cliErr) {
		return err
	}

	var apiErr api.Error
	switch {
	case errors.Is(err, session.ErrNoSession):
		return Error{Suggestion: err.Error()}
	case errors.Is(err, selection.ErrEmptySelection):
		return Error{Cause: "nothing selected", Suggestion: "Pass customer ids with --ids, or use --all."}
	case errors.Is(err, selection.ErrIncompleteSelection):
		return Error{Cause: "not every matching customer could be loaded", Suggestion: "Retry, or pass --partial to send to the loaded customers only."}
	case errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized:
		return Error{Cause: apiErr.Message, Suggestion: `Your session is no longer valid. Use "pharmabi login" to log in again.`}
	case errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden:
		return unauthorizedError
	case errors.As(err, &apiErr) && apiErr.Code == 0:
		return Error{Cause: apiErr.Message, OriginalError: errors.Unwrap(apiErr), Suggestion: "Check that the server is reachable, or set --server."}
	}
	return err
}

var unauthorizedError = Error{
	Cause:      "missing permissions to run this command",
	Suggestion: "Please make sure your role is allowed to view this data.",
}
