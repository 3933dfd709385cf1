//go:build integration

package http_test

import (
	"context"
	"testing"
	"time"

	sghttp "github.com/fwojciec/sitegraph/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_Integration_HtmxDocs(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := sghttp.NewSitemapService(nil)

	// htmx.org declares its sitemap in robots.txt.
	urls, err := svc.DiscoverURLs(ctx, "https://htmx.org")
	require.NoError(t, err)
	assert.NotEmpty(t, urls)

	for _, u := range urls {
		assert.Contains(t, u, "htmx.org")
	}
}
