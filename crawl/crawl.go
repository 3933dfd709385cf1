// Package crawl provides the concurrent crawl engine. A fixed pool of
// workers drains a shared bounded Frontier, fetches each page, extracts its
// links, records edges, and feeds newly discovered in-scope URLs back into
// the same Frontier until no work remains.
package crawl

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sitegraph"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the worker count used by the CLI when none is given.
const DefaultWorkers = 10

// Crawler crawls a single site. Fetcher, Extractor and Edges are required;
// the remaining fields are optional.
type Crawler struct {
	Fetcher   sitegraph.Fetcher
	Extractor sitegraph.LinkExtractor
	Edges     sitegraph.EdgeSink

	// Visited is the dedup store. Defaults to an exact VisitedSet.
	Visited sitegraph.VisitedSet

	// Sitemaps, when set, seeds the crawl with the site's sitemap URLs.
	Sitemaps sitegraph.SitemapService

	// Filter restricts discovered URLs beyond the host scope.
	Filter *sitegraph.URLFilter

	// Workers is the number of concurrent workers. Must be at least 1.
	Workers int

	// QueueSize is the frontier capacity. Defaults to DefaultQueueSize.
	QueueSize int

	// Progress, if set, receives an event for every processed URL.
	// Calls are serialized.
	Progress ProgressFunc

	progressMu sync.Mutex
}

// Result summarizes a crawl.
type Result struct {
	// Fetched counts HTML pages fetched and parsed.
	Fetched int
	// Skipped counts successful responses that were not HTML.
	Skipped int
	// Failed counts URLs abandoned because of a fetch or parse failure.
	Failed int
	// Visited counts URLs admitted to the frontier.
	Visited int
	// Edges counts edges handed to the EdgeSink.
	Edges int

	Duration time.Duration
}

// ProgressEvent reports the outcome of processing one URL.
type ProgressEvent struct {
	Type       ProgressType
	URL        string
	StatusCode int
	Links      int
	Queued     int
	Error      error
	Duration   time.Duration
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressFetched ProgressType = iota
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

// String returns the progress type name.
func (t ProgressType) String() string {
	switch t {
	case ProgressFetched:
		return "fetched"
	case ProgressSkipped:
		return "skipped"
	case ProgressFailed:
		return "failed"
	case ProgressFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// counters accumulates Result fields across workers.
type counters struct {
	fetched atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
	edges   atomic.Int64
}

// Crawl crawls every page reachable from seedURL within its host scope and
// returns once all workers have exited.
//
// An invalid seed URL or worker count returns EINVALID before any work
// starts. Per-URL failures never fail the crawl; they are reported through
// Progress and counted in Result. If ctx is canceled, in-flight fetches are
// aborted, workers exit, and Crawl returns the partial Result along with an
// error wrapping ctx.Err().
func (c *Crawler) Crawl(ctx context.Context, seedURL string) (*Result, error) {
	if c.Workers < 1 {
		return nil, sitegraph.Errorf(sitegraph.EINVALID, "worker count must be at least 1, got %d", c.Workers)
	}
	seed, err := sitegraph.ParseAbsoluteURL(seedURL)
	if err != nil {
		return nil, err
	}
	seed = sitegraph.Normalize(seed)

	begin := time.Now()

	frontier := NewFrontier(c.QueueSize,
		WithVisitedSet(c.Visited),
		WithConsumers(c.Workers),
	)
	stop := context.AfterFunc(ctx, frontier.Close)
	defer stop()

	// Hold the frontier open until every seed is queued.
	release, _ := frontier.Hold()

	// Workers return a non-nil error only when the crawl is canceled.
	var n counters
	g, workCtx := errgroup.WithContext(ctx)
	for i := 0; i < c.Workers; i++ {
		g.Go(func() error {
			return c.work(workCtx, frontier, seed, &n)
		})
	}

	c.seed(workCtx, frontier, seed)
	release()

	waitErr := g.Wait()

	result := &Result{
		Fetched:  int(n.fetched.Load()),
		Skipped:  int(n.skipped.Load()),
		Failed:   int(n.failed.Load()),
		Visited:  frontier.Visited(),
		Edges:    int(n.edges.Load()),
		Duration: time.Since(begin),
	}

	c.report(ProgressEvent{
		Type:     ProgressFinished,
		URL:      seed.String(),
		Error:    ctx.Err(),
		Duration: result.Duration,
	})

	if err := cmp.Or(waitErr, ctx.Err()); err != nil {
		return result, fmt.Errorf("crawl canceled: %w", err)
	}
	return result, nil
}

// seed enqueues the seed URL and, if configured, the site's sitemap URLs.
// Sitemap failures only cost the extra seeds.
func (c *Crawler) seed(ctx context.Context, frontier *Frontier, seed *url.URL) {
	frontier.enqueue(ctx, seed.String(), false)

	if c.Sitemaps == nil {
		return
	}
	urls, err := c.Sitemaps.DiscoverURLs(ctx, seed.String())
	if err != nil {
		c.report(ProgressEvent{Type: ProgressFailed, URL: seed.String(), Error: fmt.Errorf("sitemap discovery: %w", err)})
		return
	}
	for _, raw := range urls {
		u, ok := sitegraph.ResolveURL(seed, raw)
		if !ok || !c.admissible(u, seed) {
			continue
		}
		if frontier.enqueue(ctx, u.String(), false) == sitegraph.Rejected {
			return
		}
	}
}

// work runs one worker's loop until the frontier closes. It returns
// ctx.Err() if the crawl was canceled and nil once all work is done.
func (c *Crawler) work(ctx context.Context, frontier *Frontier, seed *url.URL, n *counters) error {
	for {
		pageURL, ok := frontier.Dequeue(ctx)
		if !ok {
			return ctx.Err()
		}
		c.process(ctx, frontier, seed, pageURL, n)
		frontier.Complete()
	}
}

// process fetches one page and enqueues the in-scope links it contains.
func (c *Crawler) process(ctx context.Context, frontier *Frontier, seed *url.URL, pageURL string, n *counters) {
	if ctx.Err() != nil {
		return
	}
	begin := time.Now()

	resp, err := c.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		n.failed.Add(1)
		c.report(ProgressEvent{Type: ProgressFailed, URL: pageURL, Error: err, Duration: time.Since(begin)})
		return
	}
	if !resp.OK() {
		n.failed.Add(1)
		c.report(ProgressEvent{
			Type:       ProgressFailed,
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Error:      fmt.Errorf("unexpected status %d", resp.StatusCode),
			Duration:   time.Since(begin),
		})
		return
	}
	if !resp.IsHTML() {
		n.skipped.Add(1)
		c.report(ProgressEvent{Type: ProgressSkipped, URL: pageURL, StatusCode: resp.StatusCode, Duration: time.Since(begin)})
		return
	}

	hrefs, err := c.Extractor.ExtractLinks(resp.Body)
	if err != nil {
		n.failed.Add(1)
		c.report(ProgressEvent{
			Type:       ProgressFailed,
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Error:      fmt.Errorf("extract links: %w", err),
			Duration:   time.Since(begin),
		})
		return
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		n.failed.Add(1)
		c.report(ProgressEvent{Type: ProgressFailed, URL: pageURL, Error: err, Duration: time.Since(begin)})
		return
	}
	if resp.URL != "" {
		if final, err := url.Parse(resp.URL); err == nil {
			base = final
		}
	}

	links, queued := 0, 0
	for _, href := range hrefs {
		target, ok := sitegraph.ResolveURL(base, href)
		if !ok || !c.admissible(target, seed) {
			continue
		}
		targetURL := target.String()
		c.Edges.RecordEdge(pageURL, targetURL)
		n.edges.Add(1)
		links++

		if frontier.Enqueue(ctx, targetURL) == sitegraph.Admitted {
			queued++
		}
	}

	n.fetched.Add(1)
	c.report(ProgressEvent{
		Type:       ProgressFetched,
		URL:        pageURL,
		StatusCode: resp.StatusCode,
		Links:      links,
		Queued:     queued,
		Duration:   time.Since(begin),
	})
}

// admissible reports whether u is in the crawl's scope and passes Filter.
func (c *Crawler) admissible(u, seed *url.URL) bool {
	return sitegraph.InScope(u, seed) && c.Filter.Match(u.String())
}

func (c *Crawler) report(event ProgressEvent) {
	if c.Progress == nil {
		return
	}
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	c.Progress(event)
}
