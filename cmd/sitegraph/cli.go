package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitegraph"
	"github.com/fwojciec/sitegraph/crawl"
	sghttp "github.com/fwojciec/sitegraph/http"
)

// Export formats accepted by --format.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatSitemap  = "sitemap"
	FormatSQLite   = "sqlite"
)

var formats = []string{FormatText, FormatJSON, FormatCSV, FormatHTML, FormatMarkdown, FormatSitemap, FormatSQLite}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL string `arg:"" help:"Seed URL. Only pages on its host and subdomains are crawled."`

	Workers   int           `short:"w" default:"${workers}" env:"SITEGRAPH_WORKERS" help:"Number of concurrent workers"`
	QueueSize int           `default:"${queue_size}" env:"SITEGRAPH_QUEUE_SIZE" help:"Frontier capacity"`
	Timeout   time.Duration `short:"t" default:"${timeout}" env:"SITEGRAPH_TIMEOUT" help:"Fetch timeout per page"`
	MaxBody   int64         `default:"${max_body}" env:"SITEGRAPH_MAX_BODY" help:"Maximum bytes read from a response body"`
	UserAgent string        `default:"${user_agent}" env:"SITEGRAPH_USER_AGENT" help:"User-Agent header sent with every request"`

	Sitemap bool     `env:"SITEGRAPH_SITEMAP" help:"Seed the crawl with URLs from the site's sitemap"`
	Include []string `short:"I" env:"SITEGRAPH_INCLUDE" help:"Only follow URLs matching this regex (repeatable)"`
	Exclude []string `short:"X" env:"SITEGRAPH_EXCLUDE" help:"Never follow URLs matching this regex (repeatable)"`

	Dedup         string  `default:"exact" enum:"exact,bloom" env:"SITEGRAPH_DEDUP" help:"Visited set implementation (exact, bloom)"`
	BloomCapacity uint    `default:"1000000" env:"SITEGRAPH_BLOOM_CAPACITY" help:"Expected URL count for the bloom visited set"`
	BloomFPRate   float64 `name:"bloom-fp-rate" default:"0.001" env:"SITEGRAPH_BLOOM_FP_RATE" help:"False positive rate for the bloom visited set"`

	Format      []string `short:"f" env:"SITEGRAPH_FORMAT" help:"Output formats: text, json, csv, html, markdown, sitemap, sqlite (repeatable, default text)"`
	Output      string   `short:"o" default:"." type:"path" env:"SITEGRAPH_OUTPUT" help:"Directory for file outputs"`
	MetricsAddr string   `env:"SITEGRAPH_METRICS_ADDR" help:"Serve Prometheus metrics on this address while crawling"`
	Verbose     bool     `short:"v" env:"SITEGRAPH_VERBOSE" help:"Log every fetch"`
}

// Validate rejects bad configuration before any crawling starts.
func (c *CLI) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("--queue-size must be at least 1, got %d", c.QueueSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxBody <= 0 {
		return fmt.Errorf("--max-body must be positive, got %d", c.MaxBody)
	}
	if c.BloomFPRate <= 0 || c.BloomFPRate >= 1 {
		return fmt.Errorf("--bloom-fp-rate must be between 0 and 1, got %g", c.BloomFPRate)
	}
	for _, f := range c.Format {
		if !slices.Contains(formats, f) {
			return fmt.Errorf("unknown format %q (valid: %v)", f, formats)
		}
	}
	if _, err := sitegraph.NewURLFilter(c.Include, c.Exclude); err != nil {
		return fmt.Errorf("%s", sitegraph.ErrorMessage(err))
	}
	if _, err := sitegraph.NormalizeURL(c.URL); err != nil {
		return fmt.Errorf("%s", sitegraph.ErrorMessage(err))
	}
	return nil
}

// Formats returns the requested export formats, text if none were given.
func (c *CLI) Formats() []string {
	if len(c.Format) == 0 {
		return []string{FormatText}
	}
	return c.Format
}

// Dependencies holds the services and writers shared by the crawl run.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// newLogger creates a text logger on w. Verbose lowers the level to Debug.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// vars are the interpolation variables used in CLI struct tags.
var vars = kong.Vars{
	"workers":    strconv.Itoa(crawl.DefaultWorkers),
	"queue_size": strconv.Itoa(crawl.DefaultQueueSize),
	"timeout":    sghttp.DefaultFetchTimeout.String(),
	"max_body":   strconv.Itoa(sghttp.DefaultMaxBodySize),
	"user_agent": sghttp.DefaultUserAgent,
}
