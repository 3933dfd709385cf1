package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/sitegraph"
	"github.com/fwojciec/sitegraph/mock"
	sgslog "github.com/fwojciec/sitegraph/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDebugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with status, bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*sitegraph.Response, error) {
				return &sitegraph.Response{URL: url, StatusCode: 200, ContentType: "text/html", Body: "<html>content</html>"}, nil
			},
		}

		fetcher := sgslog.NewLoggingFetcher(inner, newDebugLogger(&buf))
		resp, err := fetcher.Fetch(context.Background(), "https://example.com/docs")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", resp.Body)
		output := buf.String()
		assert.Contains(t, output, "msg=fetch")
		assert.Contains(t, output, "url=https://example.com/docs")
		assert.Contains(t, output, "status=200")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
		assert.NotContains(t, output, "final_url")
	})

	t.Run("logs final URL after redirect", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*sitegraph.Response, error) {
				return &sitegraph.Response{URL: "https://example.com/new", StatusCode: 200}, nil
			},
		}

		fetcher := sgslog.NewLoggingFetcher(inner, newDebugLogger(&buf))
		_, err := fetcher.Fetch(context.Background(), "https://example.com/old")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "final_url=https://example.com/new")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*sitegraph.Response, error) {
				return nil, errors.New("network error")
			},
		}

		fetcher := sgslog.NewLoggingFetcher(inner, newDebugLogger(&buf))
		_, err := fetcher.Fetch(context.Background(), "https://example.com/docs")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "msg=fetch")
		assert.Contains(t, output, "err=\"network error\"")
	})

	t.Run("stays quiet above debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*sitegraph.Response, error) {
				return &sitegraph.Response{URL: url, StatusCode: 200}, nil
			},
		}

		_, err := sgslog.NewLoggingFetcher(inner, logger).Fetch(context.Background(), "https://example.com/")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("delegates to inner fetcher", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		closeCalled := false
		inner := &mock.Fetcher{
			CloseFn: func() error {
				closeCalled = true
				return nil
			},
		}

		fetcher := sgslog.NewLoggingFetcher(inner, newDebugLogger(&buf))
		err := fetcher.Close()

		require.NoError(t, err)
		assert.True(t, closeCalled)
	})
}

func TestLoggingLinkExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.LinkExtractor{
		ExtractLinksFn: func(html string) ([]string, error) {
			return []string{"/a", "/b", "/c"}, nil
		},
	}

	links, err := sgslog.NewLoggingLinkExtractor(inner, newDebugLogger(&buf)).ExtractLinks("<html></html>")

	require.NoError(t, err)
	assert.Len(t, links, 3)
	output := buf.String()
	assert.Contains(t, output, "msg=\"extract links\"")
	assert.Contains(t, output, "bytes=13")
	assert.Contains(t, output, "count=3")
}
