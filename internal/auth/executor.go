package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dvcrn/nmrest/internal/credentials"
	"github.com/dvcrn/nmrest/internal/logger"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// AuthenticationHeader is the header the receiving service reads the bearer token from.
// It is intentionally not "Authorization".
const AuthenticationHeader = "Authentication"

// Option configures an Executor
type Option func(*Executor)

// WithHTTPClient sets the client used for the refresh exchange
func WithHTTPClient(client HTTPClient) Option {
	return func(e *Executor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithClock replaces time.Now for expiry checks
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// Executor authenticates a pending request with a cached access token,
// refreshing the token whenever it is absent or expired, and then runs it.
//
// The mutex covers the whole check, refresh, header and execute sequence,
// so an Executor may be shared between goroutines.
type Executor struct {
	logger    zerolog.Logger
	creds     credentials.Credentials
	req       PendingRequest
	client    HTTPClient
	refresher *Refresher
	now       func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// NewExecutor creates an executor for req. req is kept by reference and
// receives the Authentication header on every Execute.
func NewExecutor(log zerolog.Logger, creds credentials.Credentials, req PendingRequest, baseURL string, opts ...Option) (*Executor, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, &ConfigurationError{Field: "baseURL", Reason: "must be set"}
	}
	if req == nil {
		return nil, &ConfigurationError{Field: "request", Reason: "must not be nil"}
	}

	e := &Executor{
		logger: log,
		creds:  creds,
		req:    req,
		client: NewHTTPClient(0),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.refresher = NewRefresher(baseURL, creds, e.client)

	e.logger.Debug().
		Str("refresh_url", e.refresher.URL()).
		Str("system_token", logger.Mask(creds.SystemToken)).
		Str("api_token", logger.Mask(creds.APIToken)).
		Str("refresh_token", logger.Mask(creds.RefreshToken)).
		Msg("Executor initialized")

	return e, nil
}

// Execute ensures a valid access token, attaches it to the pending request and
// sends the request with body. Refresh failures are returned as *RefreshError
// without sending the request; request failures as *TransportError. The caller
// closes the response body.
func (e *Executor) Execute(ctx context.Context, body []byte) (*http.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tok, err := e.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	e.req.AddHeader(AuthenticationHeader, tok.Type()+" "+tok.AccessToken)

	resp, err := e.req.ExecuteWithBody(ctx, body)
	if err != nil {
		e.logger.Error().Err(err).Str("url", e.req.URL()).Msg("Authenticated request failed")
		return nil, &TransportError{URL: e.req.URL(), Cause: err}
	}

	e.logger.Debug().
		Str("url", e.req.URL()).
		Int("status", resp.StatusCode).
		Msg("Authenticated request completed")
	return resp, nil
}

// Token returns a copy of a valid access token, refreshing first if needed
func (e *Executor) Token(ctx context.Context) (*oauth2.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tok, err := e.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	c := *tok
	return &c, nil
}

// TokenSource adapts the executor's cache to oauth2.TokenSource, bound to ctx
func (e *Executor) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &executorTokenSource{ctx: ctx, e: e}
}

type executorTokenSource struct {
	ctx context.Context
	e   *Executor
}

func (s *executorTokenSource) Token() (*oauth2.Token, error) {
	return s.e.Token(s.ctx)
}

// valid reports whether the cached token expires strictly after now, in whole seconds
func (e *Executor) valid(now time.Time) bool {
	return e.token != nil && e.token.Expiry.Unix() > now.Unix()
}

// ensureToken must be called with e.mu held
func (e *Executor) ensureToken(ctx context.Context) (*oauth2.Token, error) {
	now := e.now()
	if e.valid(now) {
		e.logger.Debug().
			Int64("seconds_until_expiry", e.token.Expiry.Unix()-now.Unix()).
			Msg("Access token is still valid")
		return e.token, nil
	}

	e.logger.Debug().
		Str("refresh_url", e.refresher.URL()).
		Bool("had_token", e.token != nil).
		Msg("Access token missing or expired, refreshing")

	tok, err := e.refresher.Token(ctx)
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("url", e.req.URL()).
			Str("system_token", logger.Mask(e.creds.SystemToken)).
			Str("api_token", logger.Mask(e.creds.APIToken)).
			Str("refresh_token", logger.Mask(e.creds.RefreshToken)).
			Msg("Failed to obtain access token")
		return nil, err
	}

	e.token = tok
	e.logger.Info().
		Int64("expires_at", tok.Expiry.Unix()).
		Int64("seconds_until_expiry", tok.Expiry.Unix()-now.Unix()).
		Msg("Access token refreshed")
	return tok, nil
}
