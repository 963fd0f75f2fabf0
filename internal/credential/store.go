// Package credential persists the single API token in the OS keychain.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

// Store loads and saves the one active token.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// KeyringStore keeps the token in the OS keychain under a fixed service/item pair.
// On macOS this is Keychain Access, on Windows the Credential Manager and on
// Linux the Secret Service.
type KeyringStore struct {
	service string
	item    string
	logger  *logrus.Logger
}

// NewKeyringStore creates a keychain-backed store.
func NewKeyringStore(service, item string, logger *logrus.Logger) *KeyringStore {
	return &KeyringStore{service: service, item: item, logger: logger}
}

// Load returns the saved token, or "" when none has been saved.
func (s *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(s.service, s.item)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to read token from keychain")
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	s.logger.Debug("token loaded from keychain")
	return token, nil
}

// Save replaces the saved token.
func (s *KeyringStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(s.service, s.item, token); err != nil {
		s.logger.WithError(err).Error("failed to save token to keychain")
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	s.logger.WithField("service", s.service).Info("token saved to keychain")
	return nil
}

// Clear removes the saved token. Clearing an empty store is not an error.
func (s *KeyringStore) Clear() error {
	err := keyring.Delete(s.service, s.item)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		s.logger.WithError(err).Error("failed to delete token from keychain")
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}
	s.logger.Info("token removed from keychain")
	return nil
}

// Resolve returns the environment token when set, otherwise the stored one.
func Resolve(store Store, envToken string) (string, error) {
	if envToken = strings.TrimSpace(envToken); envToken != "" {
		return envToken, nil
	}
	return store.Load()
}

// overrideStore reports a fixed token from Load and otherwise defers to Store.
type overrideStore struct {
	Store
	token string
}

func (s overrideStore) Load() (string, error) { return s.token, nil }

// WithOverride returns store unchanged when envToken is blank. Otherwise Load
// on the returned Store yields envToken while Save and Clear still reach store.
func WithOverride(store Store, envToken string) Store {
	if envToken = strings.TrimSpace(envToken); envToken != "" {
		return overrideStore{Store: store, token: envToken}
	}
	return store
}

// Mask hides all but the first and last four characters of a token.
func Mask(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", token[:4], token[len(token)-4:])
}
