package sitegraph_test

import (
	"testing"

	"github.com/fwojciec/sitegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFilter_Match(t *testing.T) {
	t.Parallel()

	t.Run("nil filter matches everything", func(t *testing.T) {
		t.Parallel()
		var f *sitegraph.URLFilter
		assert.True(t, f.Match("https://example.com/anything"))
	})

	t.Run("include restricts to matching URLs", func(t *testing.T) {
		t.Parallel()
		f, err := sitegraph.NewURLFilter([]string{`/docs/`}, nil)
		require.NoError(t, err)

		assert.True(t, f.Match("https://example.com/docs/intro"))
		assert.False(t, f.Match("https://example.com/blog/post"))
	})

	t.Run("exclude wins over include", func(t *testing.T) {
		t.Parallel()
		f, err := sitegraph.NewURLFilter([]string{`/docs/`}, []string{`/docs/old/`})
		require.NoError(t, err)

		assert.True(t, f.Match("https://example.com/docs/new/a"))
		assert.False(t, f.Match("https://example.com/docs/old/a"))
	})

	t.Run("exclude alone", func(t *testing.T) {
		t.Parallel()
		f, err := sitegraph.NewURLFilter(nil, []string{`\.pdf$`})
		require.NoError(t, err)

		assert.True(t, f.Match("https://example.com/a"))
		assert.False(t, f.Match("https://example.com/a.pdf"))
	})
}

func TestNewURLFilter_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := sitegraph.NewURLFilter([]string{`(`}, nil)

	require.Error(t, err)
	assert.Equal(t, sitegraph.EINVALID, sitegraph.ErrorCode(err))
	assert.Contains(t, sitegraph.ErrorMessage(err), "include")
}
