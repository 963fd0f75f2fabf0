package gateway

import (
	"fmt"
	"regexp"

	"github.com/naka-gawa/repo-insights/internal/domain"
)

// DefaultWebHost is the host accepted in repository URLs unless configured otherwise.
const DefaultWebHost = "github.com"

// repoURLPatterns returns the accepted repository URL shapes for host, most
// specific first: an anchored owner/repo path with optional ".git" and
// trailing slash, then any URL that starts with an owner/repo path.
func repoURLPatterns(host string) []*regexp.Regexp {
	h := regexp.QuoteMeta(host)
	return []*regexp.Regexp{
		regexp.MustCompile(h + `/([^/]+)/([^/]+?)(?:\.git)?/?$`),
		regexp.MustCompile(h + `/([^/]+)/([^/]+)`),
	}
}

// ParseRepositoryURL extracts the owner and repository name from a repository URL.
// It fails with a KindInvalidReference error when no accepted shape matches.
func ParseRepositoryURL(rawURL, host string) (domain.RepositoryReference, error) {
	if host == "" {
		host = DefaultWebHost
	}
	for _, pattern := range repoURLPatterns(host) {
		m := pattern.FindStringSubmatch(rawURL)
		if m == nil || m[1] == "" || m[2] == "" {
			continue
		}
		return domain.RepositoryReference{Owner: m[1], Name: m[2]}, nil
	}
	return domain.RepositoryReference{}, &domain.Error{
		Kind: domain.KindInvalidReference,
		Op:   "parse repository url",
		Err:  fmt.Errorf("%q is not a %s repository URL", rawURL, host),
	}
}
