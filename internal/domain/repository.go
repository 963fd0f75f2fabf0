// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// RepositoryReference identifies a repository by owner login and repository name.
type RepositoryReference struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the reference in owner/name form.
func (r RepositoryReference) String() string {
	return r.Owner + "/" + r.Name
}

// Account is a hosted account (user or organization).
type Account struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// RepositoryMetadata describes a repository. It is replaced wholesale when
// another repository is selected.
type RepositoryMetadata struct {
	Name          string  `json:"name"`
	FullName      string  `json:"full_name"`
	Owner         Account `json:"owner"`
	Description   string  `json:"description"`
	HTMLURL       string  `json:"html_url"`
	DefaultBranch string  `json:"default_branch"`
}

// Reference returns the owner/name pair of the repository.
func (m *RepositoryMetadata) Reference() RepositoryReference {
	return RepositoryReference{Owner: m.Owner.Login, Name: m.Name}
}

// BranchSummary is a branch name and the SHA of its head commit.
type BranchSummary struct {
	Name    string `json:"name"`
	HeadSHA string `json:"head_sha"`
}

// RateLimit is the core request quota of the authenticated caller.
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}
