package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dvcrn/nmrest/internal/credentials"
	"golang.org/x/oauth2"
)

const (
	// RefreshPath is appended to the base URL to reach the token exchange endpoint
	RefreshPath = "/nmr/refreshtoken"

	maxRefreshBody  = 1 << 20
	maxErrorSnippet = 512
)

// Refresher trades long-lived credentials for a short-lived access token
type Refresher struct {
	url    string
	creds  credentials.Credentials
	client HTTPClient
}

// NewRefresher creates a refresher targeting baseURL + RefreshPath
func NewRefresher(baseURL string, creds credentials.Credentials, client HTTPClient) *Refresher {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Refresher{
		url:    strings.TrimRight(baseURL, "/") + RefreshPath,
		creds:  creds,
		client: client,
	}
}

// URL returns the refresh endpoint
func (r *Refresher) URL() string {
	return r.url
}

// Token performs one refresh exchange. Every failure is a *RefreshError.
func (r *Refresher) Token(ctx context.Context) (*oauth2.Token, error) {
	payload, err := json.Marshal(RefreshRequest{
		SystemToken:  r.creds.SystemToken,
		APIToken:     r.creds.APIToken,
		RefreshToken: r.creds.RefreshToken,
	})
	if err != nil {
		return nil, r.fail(0, fmt.Errorf("failed to marshal refresh request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, r.fail(0, fmt.Errorf("failed to build refresh request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, r.fail(0, fmt.Errorf("failed to make refresh request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRefreshBody))
	if err != nil {
		return nil, r.fail(resp.StatusCode, fmt.Errorf("failed to read refresh response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, r.fail(resp.StatusCode, fmt.Errorf("%w: %s", ErrRefreshStatus, snippet(body)))
	}

	var parsed RefreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, r.fail(resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedRefreshResponse, err))
	}
	if parsed.Data == nil {
		return nil, r.fail(resp.StatusCode, fmt.Errorf("%w: missing data", ErrMalformedRefreshResponse))
	}
	if parsed.Data.AccessToken == nil || *parsed.Data.AccessToken == "" {
		return nil, r.fail(resp.StatusCode, fmt.Errorf("%w: missing data.accessToken", ErrMalformedRefreshResponse))
	}
	if parsed.Data.Expiration == nil {
		return nil, r.fail(resp.StatusCode, fmt.Errorf("%w: missing data.expiration", ErrMalformedRefreshResponse))
	}

	return &oauth2.Token{
		AccessToken: *parsed.Data.AccessToken,
		TokenType:   "Bearer",
		Expiry:      time.Unix(int64(*parsed.Data.Expiration), 0),
	}, nil
}

func (r *Refresher) fail(status int, cause error) *RefreshError {
	return &RefreshError{URL: r.url, StatusCode: status, Cause: cause}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		return s[:maxErrorSnippet] + "..."
	}
	return s
}
