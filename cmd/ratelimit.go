package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Show the remaining REST API quota for the active token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		githubGateway, err := a.authenticatedGateway()
		if err != nil {
			return err
		}
		limit, err := githubGateway.FetchRateLimit(cmd.Context())
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), limit)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatRateLimit(limit, a.location))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateLimitCmd)
	rateLimitCmd.Flags().Bool("json", false, "Output in JSON format")
}
