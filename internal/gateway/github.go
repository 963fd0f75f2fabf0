// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-insights/internal/config"
	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// AcceptMediaType is the versioned media type sent with every REST request.
	AcceptMediaType = "application/vnd.github.v3+json"

	// CommitsPerPage is the fixed page size of commit listings.
	CommitsPerPage = 100

	// branchesPerRequest bounds the single branch listing request.
	branchesPerRequest = 100
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// ValidateCredential reports whether the configured token is accepted.
	ValidateCredential(ctx context.Context) bool
	FetchRepository(ctx context.Context, rawURL string) (*domain.RepositoryMetadata, error)
	FetchBranches(ctx context.Context, owner, repo string) ([]domain.BranchSummary, error)
	FetchCommitPage(ctx context.Context, owner, repo, branch string, page int) ([]domain.CommitRecord, error)
	// FetchHistorySize returns the number of commits reachable from branch.
	FetchHistorySize(ctx context.Context, owner, repo, branch string) (int, error)
	FetchRateLimit(ctx context.Context) (*domain.RateLimit, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// Each instance owns its credential; instances never share state.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	webHost       string
	hasToken      bool
	logger        *logrus.Logger
}

// historySizeQuery counts the commits reachable from a branch head.
type historySizeQuery struct {
	Repository struct {
		Ref struct {
			Target struct {
				Commit struct {
					History struct {
						TotalCount int
					}
				} `graphql:"... on Commit"`
			}
		} `graphql:"ref(qualifiedName: $qualifiedName)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway creates a gateway for one token. An empty token produces an
// unauthenticated client that sends no Authorization header.
func NewGitHubGateway(cfg config.APIConfig, token string, logger *logrus.Logger) (*GitHubGateway, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.RequestsPerSecond > 0 {
		transport = &pacedTransport{
			base:    transport,
			limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		}
	}
	token = strings.TrimSpace(token)
	if token != "" {
		transport = &oauth2.Transport{
			Base:   transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	httpClient := &http.Client{Transport: transport, Timeout: cfg.Timeout}

	restClient := github.NewClient(httpClient)
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(ensureTrailingSlash(cfg.BaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to parse API base URL: %w", err)
		}
		restClient.BaseURL = baseURL
	}

	graphqlURL := cfg.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = "https://api.github.com/graphql"
	}

	webHost := cfg.WebHost
	if webHost == "" {
		webHost = DefaultWebHost
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewEnterpriseClient(graphqlURL, httpClient),
		webHost:       webHost,
		hasToken:      token != "",
		logger:        logger,
	}, nil
}

// ValidateCredential calls the authenticated-user endpoint. Any failure,
// including a missing token, yields false.
func (g *GitHubGateway) ValidateCredential(ctx context.Context) bool {
	if !g.hasToken {
		return false
	}
	user, _, err := g.restClient.Users.Get(ctx, "")
	if err != nil {
		g.logger.WithError(err).Debug("Token validation failed")
		return false
	}
	g.logger.WithField("login", user.GetLogin()).Debug("Token validated")
	return true
}

// FetchRepository parses rawURL and fetches the repository's metadata.
func (g *GitHubGateway) FetchRepository(ctx context.Context, rawURL string) (*domain.RepositoryMetadata, error) {
	ref, err := ParseRepositoryURL(rawURL, g.webHost)
	if err != nil {
		return nil, err
	}
	g.logger.WithField("repo", ref.String()).Debug("Fetching repository metadata")

	repo, resp, err := g.restClient.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, classify("fetch repository", resp, err, true)
	}
	return &domain.RepositoryMetadata{
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		Owner: domain.Account{
			Login:     repo.GetOwner().GetLogin(),
			AvatarURL: repo.GetOwner().GetAvatarURL(),
		},
		Description:   repo.GetDescription(),
		HTMLURL:       repo.GetHTMLURL(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// FetchBranches lists the repository's branches with a single request.
func (g *GitHubGateway) FetchBranches(ctx context.Context, owner, repo string) ([]domain.BranchSummary, error) {
	g.logger.WithField("repo", owner+"/"+repo).Debug("Fetching branches")
	opts := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: branchesPerRequest}}
	branches, resp, err := g.restClient.Repositories.ListBranches(ctx, owner, repo, opts)
	if err != nil {
		return nil, classify("fetch branches", resp, err, false)
	}
	result := make([]domain.BranchSummary, 0, len(branches))
	for _, b := range branches {
		result = append(result, domain.BranchSummary{
			Name:    b.GetName(),
			HeadSHA: b.GetCommit().GetSHA(),
		})
	}
	return result, nil
}

// FetchCommitPage fetches one page of the branch's commit listing (1-based).
func (g *GitHubGateway) FetchCommitPage(ctx context.Context, owner, repo, branch string, page int) ([]domain.CommitRecord, error) {
	g.logger.WithFields(logrus.Fields{
		"repo":   owner + "/" + repo,
		"branch": branch,
		"page":   page,
	}).Debug("Fetching commit page")
	opts := &github.CommitsListOptions{
		SHA:         branch,
		ListOptions: github.ListOptions{Page: page, PerPage: CommitsPerPage},
	}
	commits, resp, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return nil, classify("fetch commits", resp, err, false)
	}
	result := make([]domain.CommitRecord, 0, len(commits))
	for _, c := range commits {
		result = append(result, toCommitRecord(c))
	}
	return result, nil
}

// FetchHistorySize asks the GraphQL API how many commits the branch holds.
func (g *GitHubGateway) FetchHistorySize(ctx context.Context, owner, repo, branch string) (int, error) {
	if !g.hasToken {
		return 0, &domain.Error{Kind: domain.KindUnauthorized, Op: "fetch history size", Err: errors.New("GraphQL API requires a token")}
	}
	var q historySizeQuery
	variables := map[string]interface{}{
		"owner":         githubv4.String(owner),
		"name":          githubv4.String(repo),
		"qualifiedName": githubv4.String("refs/heads/" + branch),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for history size: %w", err)
	}
	return q.Repository.Ref.Target.Commit.History.TotalCount, nil
}

// FetchRateLimit returns the caller's core request quota.
func (g *GitHubGateway) FetchRateLimit(ctx context.Context) (*domain.RateLimit, error) {
	limits, resp, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return nil, classify("fetch rate limit", resp, err, false)
	}
	core := limits.GetCore()
	if core == nil {
		return nil, &domain.Error{Kind: domain.KindUpstream, Op: "fetch rate limit", StatusText: "missing core rate limit"}
	}
	return &domain.RateLimit{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}

func toCommitRecord(c *github.RepositoryCommit) domain.CommitRecord {
	detail := c.GetCommit()
	record := domain.CommitRecord{
		SHA: c.GetSHA(),
		Author: domain.Identity{
			Name:  detail.GetAuthor().GetName(),
			Email: detail.GetAuthor().GetEmail(),
			Date:  detail.GetAuthor().GetDate().Time,
		},
		Committer: domain.Identity{
			Name:  detail.GetCommitter().GetName(),
			Email: detail.GetCommitter().GetEmail(),
			Date:  detail.GetCommitter().GetDate().Time,
		},
		Message: detail.GetMessage(),
		HTMLURL: c.GetHTMLURL(),
	}
	if account := c.GetAuthor(); account != nil {
		record.Account = &domain.Account{
			Login:     account.GetLogin(),
			AvatarURL: account.GetAvatarURL(),
		}
	}
	return record
}

// classify maps a go-github failure onto the error taxonomy. A 404 becomes
// KindNotFound only when notFound is set; otherwise it is an upstream error.
func classify(op string, resp *github.Response, err error, notFound bool) error {
	if err == nil {
		return nil
	}
	if resp == nil || resp.Response == nil {
		return &domain.Error{Kind: domain.KindNetwork, Op: op, Err: err}
	}
	code := resp.StatusCode
	e := &domain.Error{
		Kind:       domain.KindUpstream,
		Op:         op,
		StatusCode: code,
		StatusText: http.StatusText(code),
		Err:        err,
	}
	switch {
	case code == http.StatusUnauthorized:
		e.Kind = domain.KindUnauthorized
	case code == http.StatusNotFound && notFound:
		e.Kind = domain.KindNotFound
	}
	return e
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// pacedTransport spaces requests out according to a token bucket.
type pacedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *pacedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}
