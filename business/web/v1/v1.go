// Package v1 represents types used by the web application for v1.
package v1

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/state"
)

// ErrorResponse is the form used for API responses from failures in the API.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RequestError is used to pass an error during the request through the
// application with web specific context.
type RequestError struct {
	Err    error
	Status int
}

// NewRequestError wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewRequestError(err error, status int) error {
	return &RequestError{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *RequestError) Error() string {
	return re.Err.Error()
}

// Unwrap returns the wrapped error.
func (re *RequestError) Unwrap() error {
	return re.Err
}

// IsRequestError checks if an error of type RequestError exists.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// GetRequestError returns a copy of the RequestError pointer.
func GetRequestError(err error) *RequestError {
	var re *RequestError
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

// =============================================================================

// NewLedgerError converts an error returned by the ledger into a request
// error carrying the status for the broken rule. Errors that are not ledger
// rule violations are returned unchanged.
func NewLedgerError(err error) error {
	if errors.Is(err, state.ErrHalted) {
		return NewRequestError(err, http.StatusServiceUnavailable)
	}

	if errors.Is(err, database.ErrNotLonger) {
		return NewRequestError(err, http.StatusConflict)
	}

	if errors.Is(err, database.ErrNotFound) {
		return NewRequestError(err, http.StatusNotFound)
	}

	kind, ok := database.KindOf(err)
	if !ok {
		return err
	}

	return NewRequestError(err, KindStatus(kind))
}

// KindStatus returns the HTTP status used to report a broken ledger rule.
func KindStatus(kind database.Kind) int {
	switch kind {
	case database.KindAuthorization:
		return http.StatusForbidden
	case database.KindDoubleSpend, database.KindReplay:
		return http.StatusConflict
	case database.KindConservation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
