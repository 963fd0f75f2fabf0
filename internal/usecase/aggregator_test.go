package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const widgetsURL = "https://github.com/acme/widgets"

// TestAggregator_Analyze tests the main orchestration logic of the Analyze method.
func TestAggregator_Analyze(t *testing.T) {
	// --- Arrange ---
	m := new(mockFetcher)
	commits := []domain.CommitRecord{
		commitAt("Alice", "2024-01-01T10:00:00Z"),
		commitAt("Bob", "2024-01-01T14:00:00Z"),
		commitAt("Alice", "2023-12-30T09:00:00Z"),
	}
	m.On("FetchRepository", mock.Anything, widgetsURL).Return(widgetsRepo("widgets", "main"), nil).Once()
	m.On("FetchBranches", mock.Anything, "acme", "widgets").
		Return([]domain.BranchSummary{{Name: "main", HeadSHA: "abc"}, {Name: "dev"}}, nil).Once()
	expectHistory(m, "widgets", "main", commits)

	aggregator := NewAggregator(m, "github.com", time.UTC, discardLogger())

	// --- Act ---
	report, err := aggregator.Analyze(context.Background(), widgetsURL, Options{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "main", report.Branch)
	assert.Len(t, report.Branches, 2)
	assert.Equal(t, domain.HistoryInfo{Commits: 3, PagesFetched: 2, TotalOnBranch: 3}, report.History)
	assert.Equal(t, 3, report.Summary.TotalCommits)
	assert.Equal(t, []domain.DailyCount{
		{Date: "2023-12-30", Count: 1},
		{Date: "2024-01-01", Count: 2},
	}, report.Daily)
	assert.Len(t, report.Hourly, 24)
	assert.Len(t, report.Weekdays, 7)
	assert.Equal(t, []int{2023, 2024}, report.AvailableYears)
	assert.Equal(t, domain.YearRange{Start: 2023, End: 2024}, report.YearRange)
	assert.Len(t, report.Monthly, 24)
	assert.Equal(t, []domain.Contributor{{Name: "Alice", Commits: 2}, {Name: "Bob", Commits: 1}}, report.Contributors)
	assert.Len(t, report.MessageLengths, 3)
	assert.NotEmpty(t, report.Heatmap)
	assert.Equal(t, shas(commits), shas(report.RecentCommits))
	m.AssertExpectations(t)
}

func TestAggregator_AnalyzeRequestedBranchAndYears(t *testing.T) {
	m := new(mockFetcher)
	m.On("FetchRepository", mock.Anything, widgetsURL).Return(widgetsRepo("widgets", "main"), nil).Once()
	m.On("FetchBranches", mock.Anything, "acme", "widgets").
		Return([]domain.BranchSummary{{Name: "main"}, {Name: "dev"}}, nil).Once()
	expectHistory(m, "widgets", "dev", commitPage("dev", 30))

	aggregator := NewAggregator(m, "github.com", time.UTC, discardLogger())
	report, err := aggregator.Analyze(context.Background(), widgetsURL, Options{
		Branch:    "dev",
		YearRange: &domain.YearRange{Start: 2022, End: 2022},
	})

	require.NoError(t, err)
	assert.Equal(t, "dev", report.Branch)
	require.Len(t, report.Monthly, 12)
	for _, month := range report.Monthly {
		assert.Zero(t, month.Count, month.Label)
	}
	assert.Len(t, report.RecentCommits, recentCommitsShown)
}

func TestAggregator_AnalyzeUnknownBranch(t *testing.T) {
	m := new(mockFetcher)
	m.On("FetchRepository", mock.Anything, widgetsURL).Return(widgetsRepo("widgets", "main"), nil).Once()
	m.On("FetchBranches", mock.Anything, "acme", "widgets").Return([]domain.BranchSummary{{Name: "main"}}, nil).Once()

	aggregator := NewAggregator(m, "github.com", time.UTC, discardLogger())
	_, err := aggregator.Analyze(context.Background(), widgetsURL, Options{Branch: "gone"})

	assert.EqualError(t, err, `branch "gone" not found`)
	m.AssertNotCalled(t, "FetchCommitPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_AnalyzeReportsRepositoryErrorFirst(t *testing.T) {
	m := new(mockFetcher)
	m.On("FetchRepository", mock.Anything, widgetsURL).
		Return(nil, &domain.Error{Kind: domain.KindNotFound, StatusCode: 404, StatusText: "Not Found"}).Once()
	m.On("FetchBranches", mock.Anything, "acme", "widgets").
		Return(nil, &domain.Error{Kind: domain.KindUpstream, StatusCode: 404, StatusText: "Not Found"}).Maybe()

	aggregator := NewAggregator(m, "github.com", time.UTC, discardLogger())
	_, err := aggregator.Analyze(context.Background(), widgetsURL, Options{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAggregator_AnalyzeInvalidURL(t *testing.T) {
	m := new(mockFetcher)
	aggregator := NewAggregator(m, "github.com", time.UTC, discardLogger())

	_, err := aggregator.Analyze(context.Background(), "https://gitlab.com/acme/widgets", Options{})

	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	m.AssertNotCalled(t, "FetchRepository", mock.Anything, mock.Anything)
}

func TestAggregator_AnalyzeEmptyRepository(t *testing.T) {
	m := new(mockFetcher)
	m.On("FetchRepository", mock.Anything, widgetsURL).Return(widgetsRepo("widgets", "main"), nil).Once()
	m.On("FetchBranches", mock.Anything, "acme", "widgets").Return([]domain.BranchSummary{}, nil).Once()

	aggregator := NewAggregator(m, "github.com", time.UTC, discardLogger())
	report, err := aggregator.Analyze(context.Background(), widgetsURL, Options{})

	require.NoError(t, err)
	assert.Empty(t, report.Branch)
	assert.Empty(t, report.Daily)
	assert.Empty(t, report.Monthly)
	assert.Len(t, report.Hourly, 24)
}

func TestChooseBranch(t *testing.T) {
	branches := []domain.BranchSummary{{Name: "main"}, {Name: "trunk"}}
	testCases := []struct {
		name          string
		defaultBranch string
		requested     string
		want          string
		wantErr       bool
	}{
		{name: "default present", defaultBranch: "trunk", want: "trunk"},
		{name: "default missing", defaultBranch: "develop", want: "main"},
		{name: "requested present", defaultBranch: "trunk", requested: "main", want: "main"},
		{name: "requested missing", defaultBranch: "trunk", requested: "nope", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := chooseBranch(branches, tc.defaultBranch, tc.requested)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
