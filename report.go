package sitegraph

import (
	"context"
	"time"
)

// Report is the finished output of one crawl, handed to exporters.
type Report struct {
	ID         string
	Seed       string
	StartedAt  time.Time
	FinishedAt time.Time

	// Fetched counts HTML pages fetched successfully, Skipped counts
	// non-HTML responses and Failed counts fetch or parse failures.
	// Visited counts every URL admitted to the crawl.
	Fetched int
	Skipped int
	Failed  int
	Visited int

	// Canceled is set when the crawl was interrupted before completion.
	Canceled bool

	// Edges are sorted by source, then target.
	Edges []Edge
}

// Duration returns how long the crawl ran.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Exporter writes a Report to some destination.
type Exporter interface {
	Export(ctx context.Context, r *Report) error
}
