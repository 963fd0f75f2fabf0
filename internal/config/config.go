// Package config loads runtime settings from defaults, an optional YAML file,
// .env files and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config keys,
// e.g. REPO_INSIGHTS_API_BASE_URL for api.base_url.
const EnvPrefix = "REPO_INSIGHTS"

// Config holds all configuration settings.
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Credential CredentialConfig `mapstructure:"credential"`

	// EnvToken is the value of GITHUB_TOKEN, if set. It takes precedence over
	// the stored credential.
	EnvToken string `mapstructure:"-"`
}

// APIConfig describes how to reach the hosting API.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	GraphQLURL string `mapstructure:"graphql_url"`
	// WebHost is the host accepted in repository URLs.
	WebHost string        `mapstructure:"web_host"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RequestsPerSecond paces outgoing requests; zero disables pacing.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// AnalysisConfig controls how projections are computed.
type AnalysisConfig struct {
	// TimeZone is an IANA zone name used to bucket commit timestamps.
	// Empty or "Local" means the process time zone.
	TimeZone string `mapstructure:"timezone"`
}

// CredentialConfig names the keychain entry holding the token.
type CredentialConfig struct {
	Service string `mapstructure:"service"`
	Item    string `mapstructure:"item"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "https://api.github.com/",
			GraphQLURL: "https://api.github.com/graphql",
			WebHost:    "github.com",
			Timeout:    30 * time.Second,
		},
		Analysis: AnalysisConfig{
			TimeZone: "Local",
		},
		Credential: CredentialConfig{
			Service: "repo-insights",
			Item:    "github-token",
		},
	}
}

// Load reads configuration. When path is empty, config.yaml is searched for in
// the working directory and in ~/.repo-insights; a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.graphql_url", cfg.API.GraphQLURL)
	v.SetDefault("api.web_host", cfg.API.WebHost)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.requests_per_second", cfg.API.RequestsPerSecond)
	v.SetDefault("analysis.timezone", cfg.Analysis.TimeZone)
	v.SetDefault("credential.service", cfg.Credential.Service)
	v.SetDefault("credential.item", cfg.Credential.Item)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".repo-insights"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.EnvToken = os.Getenv("GITHUB_TOKEN")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env files without overriding variables already set.
// A missing file is skipped; a file that exists but does not parse is an error.
func loadEnvFiles() error {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url is invalid: %w", err)
	}
	if c.API.WebHost == "" {
		return errors.New("api.web_host is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	if c.API.RequestsPerSecond < 0 {
		return errors.New("api.requests_per_second must not be negative")
	}
	if c.Credential.Service == "" || c.Credential.Item == "" {
		return errors.New("credential.service and credential.item are required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Analysis.TimeZone.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Analysis.TimeZone
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("analysis.timezone %q: %w", tz, err)
	}
	return loc, nil
}
