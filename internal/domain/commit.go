package domain

import "time"

// Identity is the name/email/timestamp triple recorded for a commit's author or committer.
type Identity struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// CommitRecord is one commit as returned by the hosting API.
// Account is nil when the author email does not map to a known account.
type CommitRecord struct {
	SHA       string   `json:"sha"`
	Author    Identity `json:"author"`
	Committer Identity `json:"committer"`
	Message   string   `json:"message"`
	Account   *Account `json:"account,omitempty"`
	HTMLURL   string   `json:"html_url"`
}

// AvatarURL returns the linked account's avatar, or "" when there is no linked account.
func (c CommitRecord) AvatarURL() string {
	if c.Account == nil {
		return ""
	}
	return c.Account.AvatarURL
}

// CommitHistory is the result of a bounded, best-effort commit retrieval.
//
// Partial reports that the retrieval stopped because a page request failed;
// StopReason then holds that failure. Truncated reports that older history
// exists beyond what was retrieved. TotalOnBranch is zero when the branch
// size could not be determined.
type CommitHistory struct {
	Commits       []CommitRecord `json:"commits"`
	PagesFetched  int            `json:"pages_fetched"`
	Partial       bool           `json:"partial"`
	StopReason    *Error         `json:"-"`
	Truncated     bool           `json:"truncated"`
	TotalOnBranch int            `json:"total_on_branch,omitempty"`
}
