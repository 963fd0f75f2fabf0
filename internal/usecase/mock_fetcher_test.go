package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ValidateCredential(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockFetcher) FetchRepository(ctx context.Context, rawURL string) (*domain.RepositoryMetadata, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepositoryMetadata), args.Error(1)
}

func (m *mockFetcher) FetchBranches(ctx context.Context, owner, repo string) ([]domain.BranchSummary, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BranchSummary), args.Error(1)
}

func (m *mockFetcher) FetchCommitPage(ctx context.Context, owner, repo, branch string, page int) ([]domain.CommitRecord, error) {
	args := m.Called(ctx, owner, repo, branch, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommitRecord), args.Error(1)
}

func (m *mockFetcher) FetchHistorySize(ctx context.Context, owner, repo, branch string) (int, error) {
	args := m.Called(ctx, owner, repo, branch)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchRateLimit(ctx context.Context) (*domain.RateLimit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimit), args.Error(1)
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// commitAt builds a commit authored by name at an RFC 3339 timestamp.
func commitAt(name, timestamp string) domain.CommitRecord {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		panic(err)
	}
	return domain.CommitRecord{
		SHA:       fmt.Sprintf("%s-%s", name, timestamp),
		Author:    domain.Identity{Name: name, Email: name + "@example.com", Date: ts},
		Committer: domain.Identity{Name: name, Email: name + "@example.com", Date: ts},
		Message:   "change by " + name,
	}
}

// commitPage builds n commits with SHAs "<prefix>-0".."<prefix>-(n-1)".
func commitPage(prefix string, n int) []domain.CommitRecord {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	page := make([]domain.CommitRecord, n)
	for i := range page {
		page[i] = domain.CommitRecord{
			SHA:    fmt.Sprintf("%s-%d", prefix, i),
			Author: domain.Identity{Name: "dev", Date: base.Add(-time.Duration(i) * time.Hour)},
		}
	}
	return page
}

func shas(commits []domain.CommitRecord) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.SHA
	}
	return out
}
