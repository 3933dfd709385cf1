package mock

import (
	"context"

	"github.com/fwojciec/sitegraph"
)

var _ sitegraph.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of sitegraph.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*sitegraph.Response, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*sitegraph.Response, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ sitegraph.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of sitegraph.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string) ([]string, error) {
	return e.ExtractLinksFn(html)
}
