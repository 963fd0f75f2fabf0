package credential

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newTestStore(t *testing.T) *KeyringStore {
	t.Helper()
	keyring.MockInit()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewKeyringStore("repo-insights-test", "github-token", logger)
}

func TestKeyringStore_Lifecycle(t *testing.T) {
	store := newTestStore(t)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "nothing saved yet")

	require.NoError(t, store.Save("  ghp_first  "))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_first", token)

	require.NoError(t, store.Save("ghp_second"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_second", token, "a save replaces the previous token")

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	assert.NoError(t, store.Clear(), "clearing twice is fine")
}

func TestKeyringStore_SaveRejectsBlank(t *testing.T) {
	store := newTestStore(t)
	assert.Error(t, store.Save("   "))
}

func TestResolve(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("stored-token"))

	token, err := Resolve(store, "env-token")
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)

	token, err = Resolve(store, "")
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
}

func TestWithOverride(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("stored-token"))

	assert.Same(t, Store(store), WithOverride(store, "  "))

	overridden := WithOverride(store, "env-token")
	token, err := overridden.Load()
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)

	require.NoError(t, overridden.Save("saved-through-override"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "saved-through-override", token)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(not set)", Mask(""))
	assert.Equal(t, "***", Mask("short"))
	assert.Equal(t, "ghp_...wxyz", Mask("ghp_abcdefghijklmnopqrstuvwxyz"))
}
