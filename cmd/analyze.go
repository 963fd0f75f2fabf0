package cmd

import (
	"fmt"

	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/naka-gawa/repo-insights/internal/usecase"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyzes a repository's commit history and outputs as JSON or tables",
	Long: `Retrieves up to the 1000 most recent commits of a branch (the default branch
unless --branch is given) and derives every activity statistic from them.
--from-year and --to-year bound the monthly trend; when only one is given it
is used for both ends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		// Get other flags.
		branch, _ := cmd.Flags().GetString("branch")
		fromYear, _ := cmd.Flags().GetInt("from-year")
		toYear, _ := cmd.Flags().GetInt("to-year")
		format, _ := cmd.Flags().GetString("format")
		if format != "json" && format != "table" {
			return fmt.Errorf("invalid --format %q: use json or table", format)
		}
		yearRange, err := yearRangeFromFlags(fromYear, toYear)
		if err != nil {
			return err
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := a.authenticatedGateway()
		if err != nil {
			return err
		}
		aggregator := usecase.NewAggregator(githubGateway, a.cfg.API.WebHost, a.location, a.logger)

		report, err := aggregator.Analyze(cmd.Context(), args[0], usecase.Options{
			Branch:    branch,
			YearRange: yearRange,
		})
		if err != nil {
			return err
		}

		if format == "table" {
			return renderReport(cmd.OutOrStdout(), report, a.location)
		}
		return writeJSON(cmd.OutOrStdout(), report)
	},
}

// yearRangeFromFlags returns nil when neither year is set.
func yearRangeFromFlags(fromYear, toYear int) (*domain.YearRange, error) {
	if fromYear == 0 && toYear == 0 {
		return nil, nil
	}
	if fromYear == 0 {
		fromYear = toYear
	}
	if toYear == 0 {
		toYear = fromYear
	}
	r := domain.YearRange{Start: fromYear, End: toYear}
	if err := usecase.ValidateYearRange(r); err != nil {
		return nil, err
	}
	return &r, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("branch", "b", "", "Branch to analyze (default: the repository's default branch)")
	analyzeCmd.Flags().Int("from-year", 0, "First year of the monthly trend")
	analyzeCmd.Flags().Int("to-year", 0, "Last year of the monthly trend")
	analyzeCmd.Flags().StringP("format", "f", "json", "Output format: json or table")
}
