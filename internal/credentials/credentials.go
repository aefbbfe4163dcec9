package credentials

import (
	"fmt"
	"os"
	"strings"

	"github.com/dvcrn/nmrest/internal/errs"
)

// Environment variables holding the credential triple
const (
	EnvSystemToken  = "NM_SYSTEM_TOKEN"
	EnvAPIToken     = "NM_API_TOKEN"
	EnvRefreshToken = "NM_REFRESH_TOKEN"
)

// Credentials are the long-lived tokens exchanged for a short-lived access token
type Credentials struct {
	SystemToken  string `json:"systemToken"`
	APIToken     string `json:"apiToken"`
	RefreshToken string `json:"refreshToken"`
}

// Missing returns the JSON names of the fields that are empty
func (c Credentials) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.SystemToken) == "" {
		missing = append(missing, "systemToken")
	}
	if strings.TrimSpace(c.APIToken) == "" {
		missing = append(missing, "apiToken")
	}
	if strings.TrimSpace(c.RefreshToken) == "" {
		missing = append(missing, "refreshToken")
	}
	return missing
}

// Validate returns a *errs.ConfigurationError naming every empty field
func (c Credentials) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return &errs.ConfigurationError{Field: strings.Join(missing, ", "), Reason: "must be set and non-empty"}
	}
	return nil
}

// FromEnv reads credentials from the NM_* environment variables.
// The result is not validated.
func FromEnv() Credentials {
	return Credentials{
		SystemToken:  os.Getenv(EnvSystemToken),
		APIToken:     os.Getenv(EnvAPIToken),
		RefreshToken: os.Getenv(EnvRefreshToken),
	}
}

// Resolve loads credentials from path when the file exists and falls back to the environment
func Resolve(path string) (Credentials, error) {
	if path != "" && FileExists(path) {
		creds, err := LoadFile(path)
		if err != nil {
			return Credentials{}, err
		}
		return creds, nil
	}

	creds := FromEnv()
	if err := creds.Validate(); err != nil {
		return Credentials{}, fmt.Errorf("no credentials file at %q and environment incomplete: %w", path, err)
	}
	return creds, nil
}
