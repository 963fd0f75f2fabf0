package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/naka-gawa/repo-insights/internal/credential"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the GitHub access token kept in the OS keychain",
}

var tokenSaveCmd = &cobra.Command{
	Use:   "save <token>",
	Short: "Save a token to the keychain and validate it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		session := a.newSession()
		valid, err := session.SaveCredential(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		state := session.State()
		if !state.HasToken {
			return errors.New("token cannot be empty")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Token %s saved to keychain.\n", credential.Mask(args[0]))
		if !valid {
			return errors.New(state.Error)
		}
		fmt.Fprintln(out, color.GreenString("Token is valid."))
		return nil
	},
}

var tokenValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the active token is accepted by GitHub",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		token, err := credential.Resolve(a.store, a.cfg.EnvToken)
		if err != nil {
			return err
		}
		if token == "" {
			return errors.New(`no token found; run "repo-insights token save <token>" or set GITHUB_TOKEN`)
		}

		session := a.newSession()
		if err := session.Restore(cmd.Context()); err != nil {
			return err
		}
		state := session.State()

		out := cmd.OutOrStdout()
		source := "keychain"
		if a.cfg.EnvToken != "" {
			source = "GITHUB_TOKEN"
		}
		fmt.Fprintf(out, "Token %s (from %s)\n", credential.Mask(token), source)
		if state.TokenValid == nil || !*state.TokenValid {
			return errors.New(state.Error)
		}
		fmt.Fprintln(out, color.GreenString("Token is valid."))
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved token from the keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token removed from keychain.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSaveCmd, tokenValidateCmd, tokenClearCmd)
}
