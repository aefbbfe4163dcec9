package config

import (
	"os"
	"strings"
	"time"

	"github.com/dvcrn/nmrest/internal/auth"
	"github.com/dvcrn/nmrest/internal/logger"
	"github.com/joho/godotenv"
)

const (
	EnvBaseURL         = "NM_LOCAL_REST_BASE"
	EnvTimeout         = "NM_HTTP_TIMEOUT"
	EnvCredentialsFile = "NM_CREDENTIALS_FILE"
)

// Config is resolved once at startup and not modified afterwards
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	RuntimeEnv      string
	CredentialsFile string
}

// Load reads the optional dotenv files and then the process environment.
// Variables already set in the environment are never overridden by a file.
func Load(envFiles ...string) (*Config, error) {
	if err := LoadEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:         strings.TrimRight(strings.TrimSpace(os.Getenv(EnvBaseURL)), "/"),
		Timeout:         auth.DefaultTimeout,
		RuntimeEnv:      os.Getenv(logger.EnvRuntime),
		CredentialsFile: os.Getenv(EnvCredentialsFile),
	}
	if cfg.RuntimeEnv == "" {
		cfg.RuntimeEnv = "dev"
	}

	if cfg.BaseURL == "" {
		return nil, &auth.ConfigurationError{Field: EnvBaseURL, Reason: "is not set"}
	}

	if raw := strings.TrimSpace(os.Getenv(EnvTimeout)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, &auth.ConfigurationError{Field: EnvTimeout, Reason: "must be a positive duration such as 30s"}
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// LoadEnv loads each existing dotenv file, or ./.env when none are given.
// Missing files are skipped; a file that cannot be parsed is a configuration error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return &auth.ConfigurationError{Field: f, Reason: "is not a valid dotenv file", Cause: err}
		}
	}
	return nil
}
