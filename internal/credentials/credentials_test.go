package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvcrn/nmrest/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsMissing(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  []string
	}{
		{"complete", Credentials{"sys", "api", "ref"}, nil},
		{"no system token", Credentials{"", "api", "ref"}, []string{"systemToken"}},
		{"no api token", Credentials{"sys", "", "ref"}, []string{"apiToken"}},
		{"no refresh token", Credentials{"sys", "api", ""}, []string{"refreshToken"}},
		{"whitespace only", Credentials{"  ", "api", "\t"}, []string{"systemToken", "refreshToken"}},
		{"empty", Credentials{}, []string{"systemToken", "apiToken", "refreshToken"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.creds.Missing())
			if tt.want == nil {
				assert.NoError(t, tt.creds.Validate())
			} else {
				err := tt.creds.Validate()
				require.Error(t, err)
				for _, field := range tt.want {
					assert.Contains(t, err.Error(), field)
				}
			}
		})
	}
}

func TestValidateReturnsConfigurationError(t *testing.T) {
	err := Credentials{APIToken: "api1"}.Validate()

	var cfgErr *errs.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "systemToken, refreshToken", cfgErr.Field)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvSystemToken, "sys1")
	t.Setenv(EnvAPIToken, "api1")
	t.Setenv(EnvRefreshToken, "ref1")

	assert.Equal(t, Credentials{SystemToken: "sys1", APIToken: "api1", RefreshToken: "ref1"}, FromEnv())
}

func TestResolve(t *testing.T) {
	t.Run("prefers file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"systemToken":"fs","apiToken":"fa","refreshToken":"fr"}`), 0600))
		t.Setenv(EnvSystemToken, "sys1")
		t.Setenv(EnvAPIToken, "api1")
		t.Setenv(EnvRefreshToken, "ref1")

		creds, err := Resolve(path)
		require.NoError(t, err)
		assert.Equal(t, "fs", creds.SystemToken)
	})

	t.Run("falls back to environment", func(t *testing.T) {
		t.Setenv(EnvSystemToken, "sys1")
		t.Setenv(EnvAPIToken, "api1")
		t.Setenv(EnvRefreshToken, "ref1")

		creds, err := Resolve(filepath.Join(t.TempDir(), "missing.json"))
		require.NoError(t, err)
		assert.Equal(t, Credentials{SystemToken: "sys1", APIToken: "api1", RefreshToken: "ref1"}, creds)
	})

	t.Run("incomplete environment", func(t *testing.T) {
		t.Setenv(EnvSystemToken, "sys1")
		t.Setenv(EnvAPIToken, "")
		t.Setenv(EnvRefreshToken, "ref1")

		_, err := Resolve("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "apiToken")

		var cfgErr *errs.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "apiToken", cfgErr.Field)
	})
}
