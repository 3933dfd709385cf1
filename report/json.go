package report

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/fwojciec/sitegraph"
)

// Ensure JSONExporter implements sitegraph.Exporter at compile time.
var _ sitegraph.Exporter = (*JSONExporter)(nil)

// JSONExporter writes the report as an indented JSON document.
type JSONExporter struct {
	w io.Writer
}

// NewJSONExporter creates a JSONExporter writing to w.
func NewJSONExporter(w io.Writer) *JSONExporter {
	return &JSONExporter{w: w}
}

// jsonReport is the wire shape of a JSON export.
type jsonReport struct {
	ID         string                `json:"id,omitempty"`
	Seed       string                `json:"seed"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Canceled   bool                  `json:"canceled"`
	Stats      jsonStats             `json:"stats"`
	Pages      []string              `json:"pages"`
	Links      []sitegraph.EdgeGroup `json:"links"`
}

type jsonStats struct {
	Fetched int `json:"fetched"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Visited int `json:"visited"`
	Edges   int `json:"edges"`
}

// Export encodes r. Links are grouped by source page.
func (e *JSONExporter) Export(_ context.Context, r *sitegraph.Report) error {
	edges := sortedEdges(r)
	out := jsonReport{
		ID:         r.ID,
		Seed:       r.Seed,
		StartedAt:  r.StartedAt.UTC(),
		FinishedAt: r.FinishedAt.UTC(),
		Canceled:   r.Canceled,
		Stats: jsonStats{
			Fetched: r.Fetched,
			Skipped: r.Skipped,
			Failed:  r.Failed,
			Visited: r.Visited,
			Edges:   len(edges),
		},
		Pages: sitegraph.Pages(edges),
		Links: sitegraph.GroupEdges(edges),
	}
	if out.Links == nil {
		out.Links = []sitegraph.EdgeGroup{}
	}

	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
