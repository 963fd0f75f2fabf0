package cmd

import (
	"errors"

	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/naka-gawa/repo-insights/internal/usecase"
	"github.com/spf13/cobra"
)

// repositoryOverview is the JSON document printed by the repo command.
type repositoryOverview struct {
	Repository     *domain.RepositoryMetadata `json:"repository"`
	Branches       []domain.BranchSummary     `json:"branches"`
	SelectedBranch string                     `json:"selected_branch"`
	Commits        int                        `json:"commits"`
	Partial        bool                       `json:"partial"`
	Truncated      bool                       `json:"truncated"`
	YearRange      domain.YearRange           `json:"year_range"`
}

var repoCmd = &cobra.Command{
	Use:   "repo <url>",
	Short: "Show a repository's metadata and branches as JSON",
	Long: `Loads a repository the way the analyze command does: metadata, branches and
the commits of the default branch (or of --branch), then prints an overview
in JSON format. A valid token is required.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		branch, _ := cmd.Flags().GetString("branch")
		ctx := cmd.Context()

		session := a.newSession()
		if err := session.Restore(ctx); err != nil {
			return err
		}
		if err := session.SubmitRepository(ctx, args[0]); err != nil {
			if errors.Is(err, usecase.ErrTokenRequired) {
				return errors.New(session.State().Error)
			}
			return err
		}
		if branch != "" && branch != session.State().SelectedBranch {
			if err := session.ChangeBranch(ctx, branch); err != nil {
				return err
			}
		}

		state := session.State()
		overview := repositoryOverview{
			Repository:     state.Repository,
			Branches:       state.Branches,
			SelectedBranch: state.SelectedBranch,
			YearRange:      state.YearRange,
		}
		if state.History != nil {
			overview.Commits = len(state.History.Commits)
			overview.Partial = state.History.Partial
			overview.Truncated = state.History.Truncated
		}
		return writeJSON(cmd.OutOrStdout(), overview)
	},
}

func init() {
	rootCmd.AddCommand(repoCmd)
	repoCmd.Flags().StringP("branch", "b", "", "Branch to load instead of the default branch")
}
