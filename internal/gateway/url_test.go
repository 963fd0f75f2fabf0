package gateway

import (
	"errors"
	"testing"

	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepositoryURL(t *testing.T) {
	testCases := []struct {
		name      string
		url       string
		host      string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{name: "plain https", url: "https://github.com/octo/hello", wantOwner: "octo", wantRepo: "hello"},
		{name: "trailing .git", url: "https://github.com/octo/hello.git", wantOwner: "octo", wantRepo: "hello"},
		{name: "trailing slash", url: "https://github.com/octo/hello/", wantOwner: "octo", wantRepo: "hello"},
		{name: ".git and slash", url: "https://github.com/octo/hello.git/", wantOwner: "octo", wantRepo: "hello"},
		{name: "no scheme", url: "github.com/octo/hello", wantOwner: "octo", wantRepo: "hello"},
		{name: "dotted repo name", url: "https://github.com/octo/hello.world", wantOwner: "octo", wantRepo: "hello.world"},
		{name: "deep link falls back to prefix", url: "https://github.com/octo/hello/tree/main", wantOwner: "octo", wantRepo: "hello"},
		{name: "enterprise host", url: "https://ghe.example.com/team/svc.git", host: "ghe.example.com", wantOwner: "team", wantRepo: "svc"},
		{name: "owner only", url: "https://github.com/octo", wantErr: true},
		{name: "owner with slash", url: "https://github.com/octo/", wantErr: true},
		{name: "other host", url: "https://gitlab.com/octo/hello", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := ParseRepositoryURL(tc.url, tc.host)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidReference))
				assert.Equal(t, domain.KindInvalidReference, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantOwner, ref.Owner)
			assert.Equal(t, tc.wantRepo, ref.Name)
		})
	}
}
