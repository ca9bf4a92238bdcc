package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name used in OS keyring storage.
	KeyringService = "interview-prep"
	// KeyringUser is the account name the API key is stored under.
	KeyringUser = "api-key"
)

// Origin tells where a loaded secret came from.
type Origin string

const (
	OriginFile    Origin = "file"
	OriginValue   Origin = "value"
	OriginKeyring Origin = "keyring"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
	// Keyring enables the OS keyring as the last source.
	Keyring bool
}

// Load returns the resolved secret value from the provided source. The order
// is File, Value, then the keyring when enabled. The returned secret is
// always trimmed. An error is returned when no source holds a usable secret.
func Load(src Source) (string, error) {
	secret, _, err := LoadWithOrigin(src)
	return secret, err
}

// LoadWithOrigin is Load that also reports which source won.
func LoadWithOrigin(src Source) (string, Origin, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, OriginFile, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, OriginValue, nil
	}

	if src.Keyring {
		secret, err := keyring.Get(KeyringService, KeyringUser)
		switch {
		case err == nil && strings.TrimSpace(secret) != "":
			return strings.TrimSpace(secret), OriginKeyring, nil
		case err != nil && !errors.Is(err, keyring.ErrNotFound):
			return "", "", fmt.Errorf("reading %s from keyring: %w", name, err)
		}
	}

	return "", "", fmt.Errorf("%s is not configured", name)
}

// Store saves secret in the OS keyring.
func Store(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("refusing to store an empty secret")
	}

	if err := keyring.Set(KeyringService, KeyringUser, secret); err != nil {
		return fmt.Errorf("storing secret in keyring: %w", err)
	}
	return nil
}

// Delete removes the stored secret from the OS keyring.
func Delete() error {
	err := keyring.Delete(KeyringService, KeyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return errors.New("no stored secret found")
	}
	if err != nil {
		return fmt.Errorf("deleting secret from keyring: %w", err)
	}
	return nil
}
