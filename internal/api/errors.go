package api

import (
	"errors"
	"fmt"

	"github.com/smileynet/bingo/internal/bingo"
)

var (
	// ErrTransport wraps failures that never produced an HTTP response.
	ErrTransport = errors.New("api: transport failure")
	// ErrAlreadyClaimed is returned by Claim when someone else holds the ticket.
	ErrAlreadyClaimed = bingo.ErrAlreadyClaimed
)

// StatusError is a non-2xx response from the server.
// Callers can use errors.As to extract it:
//
//	var statusErr *StatusError
//	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound { ... }
type StatusError struct {
	StatusCode int
	// Message is the server's error text, or the raw body when it sent no JSON.
	Message string
	// RequestID is the X-Request-ID the request was sent with.
	RequestID string

	conflict bool
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("api: server returned %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// Unwrap exposes ErrAlreadyClaimed for claim conflicts.
func (e *StatusError) Unwrap() error {
	if e.conflict {
		return ErrAlreadyClaimed
	}
	return nil
}
