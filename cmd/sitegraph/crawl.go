package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/sitegraph"
	"github.com/fwojciec/sitegraph/bloom"
	"github.com/fwojciec/sitegraph/crawl"
	"github.com/fwojciec/sitegraph/goquery"
	sghttp "github.com/fwojciec/sitegraph/http"
	"github.com/fwojciec/sitegraph/prometheus"
	sgslog "github.com/fwojciec/sitegraph/slog"
	"github.com/google/uuid"
)

// runCrawl wires the crawler from cli, runs it, and exports the result.
// A canceled crawl still exports what it found and then returns an error
// wrapping context.Canceled.
func (m *Main) runCrawl(cli *CLI, deps *Dependencies) error {
	ctx := deps.Ctx
	logger := deps.Logger

	seed, err := sitegraph.NormalizeURL(cli.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitegraph.ErrorMessage(err))
		return err
	}
	filter, err := sitegraph.NewURLFilter(cli.Include, cli.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitegraph.ErrorMessage(err))
		return err
	}

	exporters, err := m.exporters(cli, seed, deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitegraph.ErrorMessage(err))
		return err
	}

	var metrics *prometheus.Metrics
	if cli.MetricsAddr != "" {
		metrics, err = prometheus.NewMetrics()
		if err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
		stop, err := serveMetrics(cli.MetricsAddr, metrics, deps)
		if err != nil {
			return err
		}
		defer stop()
	}

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = sghttp.NewFetcher(
			sghttp.WithTimeout(cli.Timeout),
			sghttp.WithMaxBodySize(cli.MaxBody),
			sghttp.WithUserAgent(cli.UserAgent),
		)
	}
	defer fetcher.Close()

	graph := sitegraph.NewGraph()
	crawler := &crawl.Crawler{
		Fetcher:   sgslog.NewLoggingFetcher(fetcher, logger),
		Extractor: sgslog.NewLoggingLinkExtractor(goquery.NewLinkExtractor(), logger),
		Edges:     graph,
		Visited:   newVisitedSet(cli),
		Filter:    filter,
		Workers:   cli.Workers,
		QueueSize: cli.QueueSize,
		Progress:  progressFunc(deps, metrics),
	}
	if cli.Sitemap {
		sitemaps := sghttp.NewSitemapService(nil, sghttp.WithSitemapUserAgent(cli.UserAgent))
		crawler.Sitemaps = sgslog.NewLoggingSitemapService(sitemaps, logger)
	}

	startedAt := time.Now().UTC()
	result, crawlErr := crawler.Crawl(ctx, seed)
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitegraph.ErrorMessage(crawlErr))
		return crawlErr
	}

	r := &sitegraph.Report{
		ID:         uuid.NewString(),
		Seed:       seed,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(result.Duration),
		Fetched:    result.Fetched,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
		Visited:    result.Visited,
		Canceled:   crawlErr != nil,
		Edges:      graph.Edges(),
	}

	// Exports run even after an interrupt so partial results are kept.
	exportCtx := context.WithoutCancel(ctx)
	var errs []error
	for _, e := range exporters {
		if err := e.Export(exportCtx, r); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s export: %s\n", e.format, sitegraph.ErrorMessage(err))
			errs = append(errs, fmt.Errorf("%s export: %w", e.format, err))
			continue
		}
		if e.path != "" {
			fmt.Fprintf(deps.Stderr, "Wrote %s\n", e.path)
		}
	}

	if crawlErr != nil {
		fmt.Fprintf(deps.Stderr, "Interrupted: %s\n", crawl.FormatSummary(result))
		return crawlErr
	}
	fmt.Fprintln(deps.Stderr, crawl.FormatSummary(result))
	return errors.Join(errs...)
}

// progressFunc reports failures on stderr and feeds metrics when enabled.
func progressFunc(deps *Dependencies, metrics *prometheus.Metrics) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		if metrics != nil {
			metrics.Observe(e)
		}
		switch e.Type {
		case crawl.ProgressFailed:
			deps.Logger.Warn("page failed", "url", e.URL, "status", e.StatusCode, "error", e.Error)
		case crawl.ProgressFetched:
			deps.Logger.Debug("page crawled",
				"path", crawl.TruncateURL(e.URL, 60),
				"links", e.Links,
				"queued", e.Queued,
				"duration", crawl.FormatDuration(e.Duration))
		}
	}
}

// newVisitedSet selects the dedup store named by --dedup.
func newVisitedSet(cli *CLI) sitegraph.VisitedSet {
	if cli.Dedup == "bloom" {
		return bloom.NewVisitedSet(cli.BloomCapacity, cli.BloomFPRate)
	}
	return crawl.NewVisitedSet()
}

// serveMetrics starts the metrics endpoint and returns a func that stops it.
func serveMetrics(addr string, metrics *prometheus.Metrics, deps *Dependencies) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("metrics server", "error", err)
		}
	}()
	deps.Logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
