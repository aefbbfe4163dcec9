package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// PendingRequest is a request built by the caller that the Executor
// authenticates and then runs.
type PendingRequest interface {
	AddHeader(name, value string)
	URL() string
	ExecuteWithBody(ctx context.Context, body []byte) (*http.Response, error)
}

// HTTPRequest is a PendingRequest executed through an HTTPClient.
// With an empty Method it sends POST when a body is given and GET otherwise.
type HTTPRequest struct {
	Method string
	Header http.Header

	url    string
	client HTTPClient
}

// NewHTTPRequest validates rawURL and returns a pending request bound to client.
// A nil client gets NewHTTPClient(0), so DefaultTimeout (60s) applies.
//
// The client's timeout, together with the context passed to Execute, is the
// only bound on the request. The Executor holds its lock for the whole call,
// so a slow request delays every other caller sharing that Executor.
func NewHTTPRequest(method, rawURL string, client HTTPClient) (*HTTPRequest, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid request url %q: scheme and host are required", rawURL)
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &HTTPRequest{
		Method: method,
		Header: make(http.Header),
		url:    rawURL,
		client: client,
	}, nil
}

// AddHeader sets name to value, replacing any earlier value
func (r *HTTPRequest) AddHeader(name, value string) {
	r.Header.Set(name, value)
}

func (r *HTTPRequest) URL() string {
	return r.url
}

// ExecuteWithBody sends the request. A nil body sends no payload.
func (r *HTTPRequest) ExecuteWithBody(ctx context.Context, body []byte) (*http.Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = r.Header.Clone()

	return r.client.Do(req)
}
