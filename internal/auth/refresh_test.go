package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresherURL(t *testing.T) {
	assert.Equal(t, "http://svc.local/nmr/refreshtoken", NewRefresher("http://svc.local", testCreds, nil).URL())
	assert.Equal(t, "http://svc.local/nmr/refreshtoken", NewRefresher("http://svc.local/", testCreds, nil).URL())
	assert.Equal(t, "http://svc.local/base/nmr/refreshtoken", NewRefresher("http://svc.local/base", testCreds, nil).URL())
}

func TestRefresherToken(t *testing.T) {
	client := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, `{"data":{"accessToken":"abc","expiration":"1700003600"}}`), nil
	})

	tok, err := NewRefresher("http://svc.local", testCreds, client).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, time.Unix(1700003600, 0), tok.Expiry)
}

func TestRefresherAcceptsAny2xx(t *testing.T) {
	client := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return textResponse(http.StatusCreated, `{"data":{"accessToken":"abc","expiration":1700003600}}`), nil
	})

	_, err := NewRefresher("http://svc.local", testCreds, client).Token(context.Background())
	assert.NoError(t, err)
}

func TestRefresherTransportError(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	client := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, boom
	})

	_, err := NewRefresher("http://svc.local", testCreds, client).Token(context.Background())
	var refreshErr *RefreshError
	require.True(t, errors.As(err, &refreshErr))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "http://svc.local/nmr/refreshtoken", refreshErr.URL)
}

func TestRefresherTruncatesErrorBody(t *testing.T) {
	long := make([]byte, 2*maxErrorSnippet)
	for i := range long {
		long[i] = 'x'
	}
	client := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return textResponse(http.StatusUnauthorized, string(long)), nil
	})

	_, err := NewRefresher("http://svc.local", testCreds, client).Token(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshStatus)
	assert.Contains(t, err.Error(), "status 401")
	assert.Less(t, len(err.Error()), maxErrorSnippet+200)
}

func TestExpirationUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Expiration
		wantErr bool
	}{
		{`1700003600`, 1700003600, false},
		{`"1700003600"`, 1700003600, false},
		{`" 42 "`, 42, false},
		{`1700003600.9`, 1700003600, false},
		{`-5`, -5, false},
		{`"1.5"`, 0, true},
		{`"soon"`, 0, true},
		{`true`, 0, true},
		{`{}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var e Expiration
			err := json.Unmarshal([]byte(tt.in), &e)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, e)
		})
	}
}
