package credentials

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultKeychainService is the macOS keychain service name holding the credential JSON
const DefaultKeychainService = "nmrest-credentials"

// runCommand executes an external command and returns its stdout
type runCommand func(name string, args ...string) ([]byte, error)

func execOutput(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// KeychainStore reads and writes the credential triple in the macOS keychain
// through the security(1) tool. The password item holds the same JSON as the
// credentials file.
type KeychainStore struct {
	Service string
	Account string
	logger  *zerolog.Logger
	run     runCommand
}

// NewKeychainStore creates a store for the given service name
func NewKeychainStore(service string) *KeychainStore {
	if service == "" {
		service = DefaultKeychainService
	}
	return &KeychainStore{
		Service: service,
		Account: "nmrest",
		run:     execOutput,
	}
}

// NewKeychainStoreWithLogger creates a keychain store that logs lookups
func NewKeychainStoreWithLogger(service string, logger zerolog.Logger) *KeychainStore {
	k := NewKeychainStore(service)
	k.logger = &logger
	return k
}

// Load returns validated credentials from the keychain
func (k *KeychainStore) Load() (Credentials, error) {
	output, err := k.run("security", "find-generic-password", "-s", k.Service, "-w")
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to retrieve password from Keychain: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(output))), &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse JSON from keychain: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, fmt.Errorf("keychain item %q: %w", k.Service, err)
	}

	if k.logger != nil {
		k.logger.Debug().Str("service", k.Service).Msg("Loaded credentials from keychain")
	}
	return c, nil
}

// Save replaces the keychain item with the given credentials
func (k *KeychainStore) Save(c Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if _, err := k.run("security", "add-generic-password", "-s", k.Service, "-a", k.Account, "-w", string(data), "-U"); err != nil {
		return fmt.Errorf("failed to update keychain: %w", err)
	}
	return nil
}
