package auth

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound call when no timeout is configured
const DefaultTimeout = 60 * time.Second

// HTTPClient is an interface for making HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient creates an HTTP client with the given timeout, or DefaultTimeout when zero
func NewHTTPClient(timeout time.Duration) HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}
