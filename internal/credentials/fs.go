package credentials

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a JSON credentials file of the form
// {"systemToken": "...", "apiToken": "...", "refreshToken": "..."}
func LoadFile(path string) (Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Credentials{}, fmt.Errorf("credentials file %s: %w", path, err)
	}
	return c, nil
}

// SaveFile writes credentials to path with owner-only permissions, creating parent directories
func SaveFile(path string, c Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := EnsureParentDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}
