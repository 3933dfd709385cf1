package sitegraph_test

import (
	"net/url"
	"testing"

	"github.com/fwojciec/sitegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips fragment", "https://example.com/page#a", "https://example.com/page"},
		{"strips trailing slash", "https://example.com/page/", "https://example.com/page"},
		{"empty path becomes root", "https://example.com", "https://example.com/"},
		{"root stays root", "https://example.com/", "https://example.com/"},
		{"root fragment", "https://example.com/#top", "https://example.com/"},
		{"keeps query", "https://example.com/a/?q=1#x", "https://example.com/a?q=1"},
		{"keeps port", "http://example.com:8080/docs/", "http://example.com:8080/docs"},
		{"repeated trailing slashes", "https://example.com/a//", "https://example.com/a"},
		{"only slashes", "https://example.com//", "https://example.com/"},
		{"keeps encoded trailing slash", "https://example.com/a%2F", "https://example.com/a%2F"},
		{"strips slash after encoded slash", "https://example.com/a%2F/", "https://example.com/a%2F"},
		{"keeps encoded characters", "https://example.com/a%20b/", "https://example.com/a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := sitegraph.Normalize(mustParse(t, tt.in)).String()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com",
		"https://example.com/",
		"https://example.com/page#a",
		"https://example.com/page/",
		"https://example.com/a//",
		"https://example.com/a%2Fb/",
		"https://example.com/a%2F",
		"https://example.com/a%2F//",
		"https://example.com/x?y=1#z",
		"http://EXAMPLE.com:80/Path/",
	}

	for _, in := range inputs {
		once := sitegraph.Normalize(mustParse(t, in))
		twice := sitegraph.Normalize(mustParse(t, once.String()))
		assert.Equal(t, once.String(), twice.String(), "input %q", in)
	}
}

func TestNormalize_Equivalence(t *testing.T) {
	t.Parallel()

	a := sitegraph.Normalize(mustParse(t, "https://example.com/page#a")).String()
	b := sitegraph.Normalize(mustParse(t, "https://example.com/page/")).String()
	c := sitegraph.Normalize(mustParse(t, "https://example.com/page")).String()

	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
}

func TestNormalize_EncodedSlashIsDistinct(t *testing.T) {
	t.Parallel()

	encoded := sitegraph.Normalize(mustParse(t, "https://example.com/a%2F")).String()
	plain := sitegraph.Normalize(mustParse(t, "https://example.com/a/")).String()

	assert.NotEqual(t, encoded, plain)
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	u := mustParse(t, "https://example.com/page/#frag")
	_ = sitegraph.Normalize(u)

	assert.Equal(t, "/page/", u.Path)
	assert.Equal(t, "frag", u.Fragment)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	t.Run("normalizes absolute URL", func(t *testing.T) {
		t.Parallel()
		got, err := sitegraph.NormalizeURL("  https://example.com/docs/#intro ")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/docs", got)
	})

	t.Run("rejects relative URL", func(t *testing.T) {
		t.Parallel()
		_, err := sitegraph.NormalizeURL("/docs")
		require.Error(t, err)
		assert.Equal(t, sitegraph.EINVALID, sitegraph.ErrorCode(err))
	})

	t.Run("rejects non-HTTP scheme", func(t *testing.T) {
		t.Parallel()
		_, err := sitegraph.NormalizeURL("ftp://example.com/")
		require.Error(t, err)
		assert.Equal(t, sitegraph.EINVALID, sitegraph.ErrorCode(err))
	})

	t.Run("rejects unparseable URL", func(t *testing.T) {
		t.Parallel()
		_, err := sitegraph.NormalizeURL("http://[::1")
		require.Error(t, err)
		assert.Equal(t, sitegraph.EINVALID, sitegraph.ErrorCode(err))
	})
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://example.com/docs/guide")

	tests := []struct {
		name string
		href string
		want string
		ok   bool
	}{
		{"relative path", "intro/", "https://example.com/docs/intro", true},
		{"absolute path", "/about#team", "https://example.com/about", true},
		{"parent path", "../blog", "https://example.com/blog", true},
		{"absolute URL", "https://sub.example.com/x/", "https://sub.example.com/x", true},
		{"protocol relative", "//other.com/y", "https://other.com/y", true},
		{"query only", "?page=2", "https://example.com/docs/guide?page=2", true},
		{"trims whitespace", "  /contact \n", "https://example.com/contact", true},
		{"mailto", "mailto:me@example.com", "", false},
		{"javascript", "javascript:void(0)", "", false},
		{"javascript uppercase", "JavaScript:alert(1)", "", false},
		{"tel", "tel:+123", "", false},
		{"bare fragment", "#section", "", false},
		{"empty", "   ", "", false},
		{"malformed", "http://[::1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := sitegraph.ResolveURL(base, tt.href)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestInScope(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://example.com")

	tests := []struct {
		target string
		want   bool
	}{
		{"https://example.com/x", true},
		{"https://www.example.com/x", true},
		{"https://sub.example.com/x", true},
		{"http://example.com/x", true},
		{"https://EXAMPLE.com/x", true},
		{"https://example.com:8443/x", true},
		{"https://other.com/x", false},
		{"https://example.org/x", false},
		{"https://notexample.com/x", false},
		{"ftp://example.com/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sitegraph.InScope(mustParse(t, tt.target), base))
		})
	}
}

// The scope rule admits subdomains but not superdomains. This asymmetry is
// pinned behavior.
func TestInScope_NoSuperdomainMatch(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://www.example.com")

	assert.False(t, sitegraph.InScope(mustParse(t, "https://example.com/x"), base))
	assert.True(t, sitegraph.InScope(mustParse(t, "https://www.example.com/x"), base))
	assert.True(t, sitegraph.InScope(mustParse(t, "https://a.www.example.com/x"), base))
}
