// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/naka-gawa/repo-insights/internal/gateway"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// recentCommitsShown is how many of the newest commits a Report lists.
const recentCommitsShown = 20

// Options selects what Analyze reports on.
type Options struct {
	// Branch defaults to the repository's default branch.
	Branch string
	// YearRange bounds the monthly trend; nil means every year with commits.
	YearRange *domain.YearRange
}

// Aggregator is the use case for analyzing one repository.
// It orchestrates the fetching of data and the computation of every projection.
type Aggregator struct {
	fetcher  gateway.Fetcher
	commits  *CommitFetcher
	webHost  string
	location *time.Location
	logger   *logrus.Logger
}

// NewAggregator creates a new Aggregator instance. webHost is the host
// accepted in repository URLs and loc the zone used to bucket timestamps.
func NewAggregator(fetcher gateway.Fetcher, webHost string, loc *time.Location, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		commits:  NewCommitFetcher(fetcher, logger),
		webHost:  webHost,
		location: zoneOrLocal(loc),
		logger:   logger,
	}
}

// Analyze fetches the repository's metadata and branches concurrently, then the
// selected branch's history, and derives every projection from it.
func (a *Aggregator) Analyze(ctx context.Context, rawURL string, opts Options) (*domain.Report, error) {
	a.logger.Info("Usecase: Starting repository analysis...")

	ref, err := gateway.ParseRepositoryURL(rawURL, a.webHost)
	if err != nil {
		return nil, err
	}

	var repo *domain.RepositoryMetadata
	var branches []domain.BranchSummary
	var branchErr error

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		repo, err = a.fetcher.FetchRepository(egCtx, rawURL)
		return err
	})
	// A missing repository also fails the branch listing; the repository
	// error is the one worth reporting, so the branch error waits its turn.
	eg.Go(func() error {
		branches, branchErr = a.fetcher.FetchBranches(egCtx, ref.Owner, ref.Name)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if branchErr != nil {
		return nil, branchErr
	}
	a.logger.WithField("branches", len(branches)).Info("Usecase: Repository metadata fetched.")

	branch, err := chooseBranch(branches, repo.DefaultBranch, opts.Branch)
	if err != nil {
		return nil, err
	}

	history := &domain.CommitHistory{Commits: []domain.CommitRecord{}}
	if branch != "" {
		history = a.commits.FetchAllCommits(ctx, repo.Owner.Login, repo.Name, branch)
	}

	report := BuildReport(repo, branches, branch, history, opts.YearRange, a.location)
	a.logger.Info("Usecase: Analysis complete.")
	return report, nil
}

// chooseBranch returns requested when it names a known branch, otherwise the
// default branch when present, otherwise the first branch. It returns "" when
// the repository has no branches.
func chooseBranch(branches []domain.BranchSummary, defaultBranch, requested string) (string, error) {
	if requested != "" {
		for _, b := range branches {
			if b.Name == requested {
				return requested, nil
			}
		}
		return "", fmt.Errorf("branch %q not found", requested)
	}
	for _, b := range branches {
		if b.Name == defaultBranch {
			return b.Name, nil
		}
	}
	if len(branches) > 0 {
		return branches[0].Name, nil
	}
	return "", nil
}

// BuildReport derives every projection from a retrieved history. A nil
// yearRange selects every year present in the history.
func BuildReport(repo *domain.RepositoryMetadata, branches []domain.BranchSummary, branch string, history *domain.CommitHistory, yearRange *domain.YearRange, loc *time.Location) *domain.Report {
	commits := history.Commits
	years := AvailableYears(commits, loc)

	var selected domain.YearRange
	if yearRange != nil {
		selected = *yearRange
	} else if r, ok := DefaultYearRange(commits, loc); ok {
		selected = r
	}

	monthly := []domain.MonthlyCount{}
	if yearRange != nil || len(commits) > 0 {
		monthly = MonthlyTrend(commits, selected, loc)
	}

	recent := commits
	if len(recent) > recentCommitsShown {
		recent = recent[:recentCommitsShown]
	}

	info := domain.HistoryInfo{
		Commits:       len(commits),
		PagesFetched:  history.PagesFetched,
		Partial:       history.Partial,
		Truncated:     history.Truncated,
		TotalOnBranch: history.TotalOnBranch,
	}
	if history.StopReason != nil {
		info.StopReason = history.StopReason.Message()
	}

	return &domain.Report{
		Repository:     repo,
		Branch:         branch,
		Branches:       branches,
		History:        info,
		Summary:        Summarize(commits, loc),
		Daily:          DailyCounts(commits, loc),
		Hourly:         HourlyCounts(commits, loc),
		Weekdays:       WeekdayCounts(commits, loc),
		AvailableYears: years,
		YearRange:      selected,
		Monthly:        monthly,
		Contributors:   RankContributors(commits, TopContributors),
		MessageLengths: MessageLengths(commits, loc),
		Heatmap:        ActivityHeatmap(commits, loc),
		RecentCommits:  recent,
	}
}
