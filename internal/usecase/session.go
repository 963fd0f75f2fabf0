package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/naka-gawa/repo-insights/internal/credential"
	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/naka-gawa/repo-insights/internal/gateway"
	"github.com/sirupsen/logrus"
)

var (
	// ErrStaleResult is returned when a newer request for the same resource
	// started before this one finished; its result was discarded.
	ErrStaleResult = errors.New("result superseded by a newer request")
	// ErrTokenRequired is returned when a repository is submitted before a valid token is saved.
	ErrTokenRequired = errors.New("a valid token is required")
	// ErrInvalidYearRange is returned for a year range that ValidateYearRange rejects.
	ErrInvalidYearRange = errors.New("invalid year range")
)

const (
	msgTokenRequired = "Please provide a valid GitHub token first"
	msgTokenInvalid  = "Invalid token or insufficient permissions"
)

// GatewayFactory builds a gateway bound to one token.
type GatewayFactory func(token string) (gateway.Fetcher, error)

// State is a snapshot of a Session.
type State struct {
	HasToken bool `json:"has_token"`
	// TokenValid is nil until a token has been validated.
	TokenValid     *bool                      `json:"token_valid"`
	Repository     *domain.RepositoryMetadata `json:"repository,omitempty"`
	Branches       []domain.BranchSummary     `json:"branches"`
	SelectedBranch string                     `json:"selected_branch"`
	History        *domain.CommitHistory      `json:"history,omitempty"`
	YearRange      domain.YearRange           `json:"year_range"`
	Error          string                     `json:"error,omitempty"`
}

// generation hands out monotonically increasing request tokens for one
// logical resource. Only the result of the latest token may be applied.
type generation struct {
	n atomic.Uint64
}

func (g *generation) next() uint64           { return g.n.Add(1) }
func (g *generation) current(id uint64) bool { return g.n.Load() == id }

// Session holds the state of one interactive analysis: the credential, the
// selected repository and branch, the retrieved commits and the year range.
// Each user action runs one request sequence; results that a newer action has
// superseded are discarded instead of overwriting fresher state.
type Session struct {
	store      credential.Store
	newGateway GatewayFactory
	location   *time.Location
	logger     *logrus.Logger

	credentialGen generation
	repositoryGen generation
	commitsGen    generation

	mu    sync.Mutex
	gw    gateway.Fetcher
	state State
	// loadedRepo is the repository generation that produced state.Repository.
	loadedRepo uint64
}

// NewSession creates a session. No request is made until Restore or
// SaveCredential is called.
func NewSession(store credential.Store, newGateway GatewayFactory, loc *time.Location, logger *logrus.Logger) *Session {
	return &Session{
		store:      store,
		newGateway: newGateway,
		location:   zoneOrLocal(loc),
		logger:     logger,
		state:      State{Branches: []domain.BranchSummary{}},
	}
}

// Restore reads the saved token once and validates it when present.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	_, err = s.useToken(ctx, token)
	return err
}

// SaveCredential persists token, then validates it. A blank token is ignored.
func (s *Session) SaveCredential(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	if err := s.store.Save(token); err != nil {
		s.setError(err.Error())
		return false, err
	}
	return s.useToken(ctx, token)
}

func (s *Session) useToken(ctx context.Context, token string) (bool, error) {
	id := s.credentialGen.next()

	gw, err := s.newGateway(token)
	if err != nil {
		s.setError(err.Error())
		return false, err
	}
	valid := gw.ValidateCredential(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.credentialGen.current(id) {
		return false, ErrStaleResult
	}
	s.gw = gw
	s.state.HasToken = true
	s.state.TokenValid = &valid
	if valid {
		s.state.Error = ""
	} else {
		s.state.Error = msgTokenInvalid
	}
	s.logger.WithField("valid", valid).Info("Session: token validated")
	return valid, nil
}

// SubmitRepository loads a repository's metadata, its branches and the commits
// of its default branch (or the first branch when the default is absent).
func (s *Session) SubmitRepository(ctx context.Context, rawURL string) error {
	s.mu.Lock()
	gw := s.gw
	valid := s.state.TokenValid != nil && *s.state.TokenValid
	if !valid {
		s.state.Error = msgTokenRequired
		s.mu.Unlock()
		return ErrTokenRequired
	}
	s.state.Error = ""
	s.mu.Unlock()

	repoID := s.repositoryGen.next()
	commitsID := s.commitsGen.next()

	repo, err := gw.FetchRepository(ctx, rawURL)
	if err != nil {
		// The repository already on display stays usable.
		s.apply(&s.repositoryGen, repoID, func(*State) { s.loadedRepo = repoID })
		return s.fail(&s.repositoryGen, repoID, err)
	}
	if !s.apply(&s.repositoryGen, repoID, func(st *State) {
		s.loadedRepo = repoID
		st.Repository = repo
		st.Branches = []domain.BranchSummary{}
		st.SelectedBranch = ""
		st.History = nil
	}) {
		return ErrStaleResult
	}

	branches, err := gw.FetchBranches(ctx, repo.Owner.Login, repo.Name)
	if err != nil {
		return s.fail(&s.repositoryGen, repoID, err)
	}
	branch, _ := chooseBranch(branches, repo.DefaultBranch, "")
	if !s.apply(&s.repositoryGen, repoID, func(st *State) {
		st.Branches = branches
		st.SelectedBranch = branch
	}) {
		return ErrStaleResult
	}
	if branch == "" {
		return nil
	}

	history := NewCommitFetcher(gw, s.logger).FetchAllCommits(ctx, repo.Owner.Login, repo.Name, branch)
	if !s.applyHistory(repoID, commitsID, func(st *State) {
		s.setHistory(st, history)
	}) {
		return ErrStaleResult
	}
	return nil
}

// ChangeBranch reloads commits for another branch of the current repository.
// It does nothing when no repository is loaded. The selected branch changes
// only when the branch's commits are applied.
func (s *Session) ChangeBranch(ctx context.Context, name string) error {
	s.mu.Lock()
	repo := s.state.Repository
	gw := s.gw
	repoID := s.loadedRepo
	s.mu.Unlock()
	if repo == nil {
		return nil
	}
	// A repository submitted after this one was loaded supersedes it.
	if !s.currentRepository(repoID) {
		return ErrStaleResult
	}

	commitsID := s.commitsGen.next()

	history := NewCommitFetcher(gw, s.logger).FetchAllCommits(ctx, repo.Owner.Login, repo.Name, name)
	if !s.applyHistory(repoID, commitsID, func(st *State) {
		st.SelectedBranch = name
		s.setHistory(st, history)
	}) {
		return ErrStaleResult
	}
	return nil
}

// SetYearRange bounds the monthly trend.
func (s *Session) SetYearRange(start, end int) error {
	r := domain.YearRange{Start: start, End: end}
	if err := ValidateYearRange(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.YearRange = r
	return nil
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Branches = append([]domain.BranchSummary(nil), s.state.Branches...)
	return st
}

// Report derives every projection from the loaded commits and the selected
// year range. ok is false until commits have been loaded.
func (s *Session) Report() (report *domain.Report, ok bool) {
	st := s.State()
	if st.Repository == nil || st.History == nil {
		return nil, false
	}
	yr := st.YearRange
	return BuildReport(st.Repository, st.Branches, st.SelectedBranch, st.History, &yr, s.location), true
}

// setHistory stores a new history and resets the year range to its span.
// Callers hold s.mu.
func (s *Session) setHistory(st *State, history *domain.CommitHistory) {
	st.History = history
	if r, ok := DefaultYearRange(history.Commits, s.location); ok {
		st.YearRange = r
	} else {
		now := time.Now().In(s.location).Year()
		st.YearRange = domain.YearRange{Start: now, End: now}
	}
}

// apply runs update under the lock if id is still the current generation.
func (s *Session) apply(g *generation, id uint64, update func(st *State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !g.current(id) {
		s.logger.Debug("Session: discarding stale result")
		return false
	}
	update(&s.state)
	return true
}

// applyHistory is apply for commit results, which also go stale when their
// repository has been superseded.
func (s *Session) applyHistory(repoID, commitsID uint64, update func(st *State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.repositoryGen.current(repoID) || !s.commitsGen.current(commitsID) {
		s.logger.Debug("Session: discarding stale commits")
		return false
	}
	update(&s.state)
	return true
}

func (s *Session) currentRepository(id uint64) bool {
	return s.repositoryGen.current(id)
}

// fail records err as the session's error message unless the request is stale.
func (s *Session) fail(g *generation, id uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !g.current(id) {
		return ErrStaleResult
	}
	s.state.Error = domain.UserMessage(err)
	s.logger.WithError(err).Warn("Session: request failed")
	return err
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = msg
}
