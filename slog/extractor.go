package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/sitegraph"
)

// Ensure LoggingLinkExtractor implements sitegraph.LinkExtractor.
var _ sitegraph.LinkExtractor = (*LoggingLinkExtractor)(nil)

// LoggingLinkExtractor wraps a LinkExtractor with debug logging.
type LoggingLinkExtractor struct {
	next   sitegraph.LinkExtractor
	logger *slog.Logger
}

// NewLoggingLinkExtractor creates a new LoggingLinkExtractor.
func NewLoggingLinkExtractor(next sitegraph.LinkExtractor, logger *slog.Logger) *LoggingLinkExtractor {
	return &LoggingLinkExtractor{next: next, logger: logger}
}

// ExtractLinks delegates to the wrapped extractor and logs how many hrefs
// were found.
func (e *LoggingLinkExtractor) ExtractLinks(html string) (links []string, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("extract links",
			"bytes", len(html),
			"count", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractLinks(html)
}
