package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitegraph"
)

// Ensure LoggingExporter implements sitegraph.Exporter.
var _ sitegraph.Exporter = (*LoggingExporter)(nil)

// LoggingExporter wraps an Exporter with logging. Format names the output
// in log records.
type LoggingExporter struct {
	next   sitegraph.Exporter
	format string
	logger *slog.Logger
}

// NewLoggingExporter creates a new LoggingExporter.
func NewLoggingExporter(next sitegraph.Exporter, format string, logger *slog.Logger) *LoggingExporter {
	return &LoggingExporter{next: next, format: format, logger: logger}
}

// Export delegates to the wrapped exporter and logs the operation.
func (e *LoggingExporter) Export(ctx context.Context, r *sitegraph.Report) (err error) {
	defer func(begin time.Time) {
		e.logger.InfoContext(ctx, "export",
			"format", e.format,
			"edges", len(r.Edges),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Export(ctx, r)
}
