package printify

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable marks a failed read against the catalog or store.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpdateRejected marks a product update that did not succeed.
	ErrUpdateRejected = errors.New("update rejected")
)

// APIError describes a failed call. It unwraps to one of the sentinels above.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error

	kind error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %v: status %d: %s", e.Method, e.Path, e.kind, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, e.kind, e.Err)
}

func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.kind, e.Err}
	}
	return []error{e.kind}
}
