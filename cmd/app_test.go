package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/naka-gawa/repo-insights/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every keychain access, like a host without a secret service.
type brokenStore struct{}

func (brokenStore) Load() (string, error) { return "", errors.New("secret service unavailable") }
func (brokenStore) Save(string) error     { return errors.New("secret service unavailable") }
func (brokenStore) Clear() error          { return errors.New("secret service unavailable") }

func TestAuthenticatedGateway_KeychainUnavailable(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := &app{cfg: config.Default(), logger: logger, store: brokenStore{}, location: time.UTC}

	gw, err := a.authenticatedGateway()

	require.NoError(t, err)
	assert.NotNil(t, gw)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "Keychain unavailable")
}

func TestAuthenticatedGateway_EnvironmentTokenSkipsKeychain(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := config.Default()
	cfg.EnvToken = "ghp_from_environment"
	a := &app{cfg: cfg, logger: logger, store: brokenStore{}, location: time.UTC}

	gw, err := a.authenticatedGateway()

	require.NoError(t, err)
	assert.NotNil(t, gw)
	assert.Empty(t, hook.AllEntries())
}
