package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoToken is returned when a successful login response carries no token.
var ErrNoToken = errors.New("no token in response")

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsUnauthorized reports whether the server rejected the credential.
// The API answers 401 for a bad token and 403 when the filter chain
// refuses an expired one.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden)
}
