package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().API, cfg.API)
	assert.Equal(t, "repo-insights", cfg.Credential.Service)
	assert.Equal(t, "github-token", cfg.Credential.Item)
	assert.Empty(t, cfg.EnvToken)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(`
api:
  base_url: https://ghe.example.com/api/v3/
  web_host: ghe.example.com
  timeout: 5s
analysis:
  timezone: UTC
`), 0o600)
	require.NoError(t, err)

	t.Setenv("REPO_INSIGHTS_API_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("GITHUB_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.API.BaseURL)
	assert.Equal(t, "ghe.example.com", cfg.API.WebHost)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.InDelta(t, 2.5, cfg.API.RequestsPerSecond, 0.0001)
	assert.Equal(t, "env-token", cfg.EnvToken)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REPO_INSIGHTS_API_WEB_HOST", "")
	os.Unsetenv("REPO_INSIGHTS_API_WEB_HOST")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REPO_INSIGHTS_API_WEB_HOST=ghe.internal\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ghe.internal", cfg.API.WebHost)
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0o600))

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load .env")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: "api.base_url"},
		{name: "missing web host", mutate: func(c *Config) { c.API.WebHost = "" }, wantErr: "api.web_host"},
		{name: "negative rate", mutate: func(c *Config) { c.API.RequestsPerSecond = -1 }, wantErr: "requests_per_second"},
		{name: "unknown zone", mutate: func(c *Config) { c.Analysis.TimeZone = "Nowhere/Special" }, wantErr: "analysis.timezone"},
		{name: "missing keychain item", mutate: func(c *Config) { c.Credential.Item = "" }, wantErr: "credential"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLocation_Local(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
