package services

import (
	"fmt"
	"strings"

	"github.com/desertthunder/rdx/internal/shared"
)

// MissingArgumentError reports a required argument that was not supplied.
type MissingArgumentError struct {
	Method   string
	Argument string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: missing required argument %q", e.Method, e.Argument)
}

func (e *MissingArgumentError) Unwrap() error { return shared.ErrMissingArgument }

// InvalidParameterError reports an argument outside its allowed set.
type InvalidParameterError struct {
	Method  string
	Param   string
	Value   string
	Allowed []string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: invalid value %q for %s (allowed: %s)", e.Method, e.Value, e.Param, strings.Join(e.Allowed, ", "))
}

func (e *InvalidParameterError) Unwrap() error { return shared.ErrInvalidArgument }

// NotAuthenticatedError is returned when a procedure that acts for a user is
// called on a session without an access token.
type NotAuthenticatedError struct {
	Method string
}

func (e *NotAuthenticatedError) Error() string {
	return fmt.Sprintf("user is not authenticated, %s cannot be called", e.Method)
}

func (e *NotAuthenticatedError) Unwrap() error { return shared.ErrNotAuthenticated }

// APIError carries the message of an error envelope returned by the API.
type APIError struct {
	Method     string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: API error (HTTP %d)", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }
