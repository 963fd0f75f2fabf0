package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/naka-gawa/repo-insights/internal/config"
	"github.com/naka-gawa/repo-insights/internal/credential"
	"github.com/naka-gawa/repo-insights/internal/gateway"
	"github.com/naka-gawa/repo-insights/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	store    credential.Store
	location *time.Location
}

// newApp reads the persistent flags, the configuration and the time zone.
func newApp(cmd *cobra.Command) (*app, error) {
	// Get the verbose flag from the root command to set up the logger.
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := logrus.New()
	logger.SetOutput(io.Discard) // Default: discard all logs.
	if verbose {
		logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		logger.SetLevel(logrus.DebugLevel)
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger.WithField("timezone", loc.String()).Debug("Configuration loaded")

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    credential.NewKeyringStore(cfg.Credential.Service, cfg.Credential.Item, logger),
		location: loc,
	}, nil
}

// newGateway builds a gateway bound to token.
func (a *app) newGateway(token string) (gateway.Fetcher, error) {
	gw, err := gateway.NewGitHubGateway(a.cfg.API, token, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return gw, nil
}

// authenticatedGateway builds a gateway for the token from GITHUB_TOKEN or the
// keychain. An unreadable keychain leaves the gateway unauthenticated, which
// still serves public repositories.
func (a *app) authenticatedGateway() (gateway.Fetcher, error) {
	token, err := credential.Resolve(a.store, a.cfg.EnvToken)
	if err != nil {
		a.logger.WithError(err).Warn("Keychain unavailable, continuing without a token")
		token = ""
	}
	return a.newGateway(token)
}

// newSession creates a session whose stored token is overridden by GITHUB_TOKEN.
func (a *app) newSession() *usecase.Session {
	store := credential.WithOverride(a.store, a.cfg.EnvToken)
	return usecase.NewSession(store, a.newGateway, a.location, a.logger)
}

// writeJSON prints v as a pretty-printed JSON document.
func writeJSON(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
