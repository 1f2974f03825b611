package api

import (
	"errors"
	"fmt"
)

// NetworkError means no response arrived: the request timed out, was refused,
// or the transport failed before a status code existed.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError means the server responded with a failure status. Detail carries
// the server-supplied message when one was present, else a generic fallback.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Detail)
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

// Detail extracts the user-facing message from an error, falling back to the
// provided default for errors that carry no server detail.
func Detail(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	return fallback
}
