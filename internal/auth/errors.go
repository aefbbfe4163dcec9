package auth

import (
	"errors"
	"fmt"

	"github.com/dvcrn/nmrest/internal/errs"
)

var (
	// ErrMalformedRefreshResponse marks a refresh response that is not the expected JSON shape
	ErrMalformedRefreshResponse = errors.New("malformed refresh response")
	// ErrRefreshStatus marks a refresh response with a non-2xx status code
	ErrRefreshStatus = errors.New("unexpected refresh status")
)

// ConfigurationError is shared with the config and credentials packages
type ConfigurationError = errs.ConfigurationError

// RefreshError reports a failed access token exchange
type RefreshError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *RefreshError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("refresh token exchange with %s failed (status %d): %v", e.URL, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("refresh token exchange with %s failed: %v", e.URL, e.Cause)
}

func (e *RefreshError) Unwrap() error {
	return e.Cause
}

// TransportError reports a failure executing the authenticated request
type TransportError struct {
	URL   string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
