package app

import (
	"fmt"
	"net/http"

	"github.com/dvcrn/nmrest/internal/auth"
	"github.com/dvcrn/nmrest/internal/config"
	"github.com/dvcrn/nmrest/internal/credentials"
	"github.com/rs/zerolog"
)

// Request describes the call a user wants to make
type Request struct {
	Method  string
	URL     string
	Headers http.Header
}

// NewExecutor builds the pending request and an executor sharing one HTTP client
func NewExecutor(cfg *config.Config, creds credentials.Credentials, r Request, log zerolog.Logger) (*auth.Executor, *auth.HTTPRequest, error) {
	client := auth.NewHTTPClient(cfg.Timeout)

	req, err := auth.NewHTTPRequest(r.Method, r.URL, client)
	if err != nil {
		return nil, nil, err
	}
	for name, values := range r.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	executor, err := auth.NewExecutor(log, creds, req, cfg.BaseURL, auth.WithHTTPClient(client))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create executor: %w", err)
	}
	return executor, req, nil
}

// LoadCredentials returns credentials from the keychain when service is set,
// otherwise from the configured file or the environment
func LoadCredentials(cfg *config.Config, keychainService string, log zerolog.Logger) (credentials.Credentials, error) {
	if keychainService != "" {
		return credentials.NewKeychainStoreWithLogger(keychainService, log).Load()
	}

	path := cfg.CredentialsFile
	if path == "" {
		path = credentials.DefaultCredsPath()
	}
	return credentials.Resolve(path)
}

// CredentialsSaver persists credentials; *credentials.KeychainStore satisfies it
type CredentialsSaver interface {
	Save(c credentials.Credentials) error
}

// SaveCredentials stores creds in store when one is given, otherwise as JSON at path
// (DefaultCredsPath when empty). It returns a description of where they were written.
func SaveCredentials(creds credentials.Credentials, path string, store CredentialsSaver, log zerolog.Logger) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}

	if store != nil {
		if err := store.Save(creds); err != nil {
			return "", err
		}
		log.Info().Msg("Credentials saved to keychain")
		return "keychain", nil
	}

	if path == "" {
		path = credentials.DefaultCredsPath()
	}
	if path == "" {
		return "", &auth.ConfigurationError{Field: config.EnvCredentialsFile, Reason: "is not set and no home directory was found"}
	}
	if err := credentials.SaveFile(path, creds); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Msg("Credentials saved")
	return path, nil
}
