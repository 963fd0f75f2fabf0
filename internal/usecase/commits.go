package usecase

import (
	"context"
	"errors"

	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/naka-gawa/repo-insights/internal/gateway"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MaxCommitPages caps commit retrieval at the most recent
// MaxCommitPages*gateway.CommitsPerPage commits of a branch.
const MaxCommitPages = 10

// CommitFetcher drives paginated retrieval of a branch's commit history.
type CommitFetcher struct {
	fetcher gateway.Fetcher
	logger  *logrus.Logger
}

// NewCommitFetcher creates a new CommitFetcher instance.
func NewCommitFetcher(fetcher gateway.Fetcher, logger *logrus.Logger) *CommitFetcher {
	return &CommitFetcher{fetcher: fetcher, logger: logger}
}

// FetchAllCommits requests pages 1..MaxCommitPages and concatenates them in
// server order, stopping at the first empty page. A failed page ends the loop
// without an error: whatever was gathered is returned and the failure is
// recorded in the history's Partial and StopReason fields.
func (f *CommitFetcher) FetchAllCommits(ctx context.Context, owner, repo, branch string) *domain.CommitHistory {
	log := f.logger.WithFields(logrus.Fields{"repo": owner + "/" + repo, "branch": branch})
	history := &domain.CommitHistory{Commits: []domain.CommitRecord{}}

	// The branch size only feeds the Truncated flag, so it is looked up
	// alongside the pages and its failures are ignored.
	var total int
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		n, err := f.fetcher.FetchHistorySize(egCtx, owner, repo, branch)
		if err != nil {
			log.WithError(err).Debug("History size unavailable")
			return nil
		}
		total = n
		return nil
	})

	hitCeiling := false
	eg.Go(func() error {
		for page := 1; page <= MaxCommitPages; page++ {
			commits, err := f.fetcher.FetchCommitPage(egCtx, owner, repo, branch, page)
			if err != nil {
				log.WithError(err).WithField("page", page).Warn("Stopping commit retrieval after failed page")
				history.Partial = true
				var apiErr *domain.Error
				if !errors.As(err, &apiErr) {
					apiErr = &domain.Error{Kind: domain.KindNetwork, Op: "fetch commits", Err: err}
				}
				history.StopReason = apiErr
				return nil
			}
			history.PagesFetched++
			if len(commits) == 0 {
				return nil
			}
			history.Commits = append(history.Commits, commits...)
			if page == MaxCommitPages {
				hitCeiling = true
			}
		}
		return nil
	})
	_ = eg.Wait()

	history.TotalOnBranch = total
	if total > 0 {
		history.Truncated = total > len(history.Commits)
	} else {
		history.Truncated = hitCeiling
	}
	log.WithFields(logrus.Fields{
		"commits":   len(history.Commits),
		"pages":     history.PagesFetched,
		"partial":   history.Partial,
		"truncated": history.Truncated,
	}).Debug("Commit retrieval finished")
	return history
}
