package report

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/fwojciec/sitegraph"
)

// Ensure CSVExporter implements sitegraph.Exporter at compile time.
var _ sitegraph.Exporter = (*CSVExporter)(nil)

// CSVExporter writes one source,target row per edge after a header row.
type CSVExporter struct {
	w io.Writer
}

// NewCSVExporter creates a CSVExporter writing to w.
func NewCSVExporter(w io.Writer) *CSVExporter {
	return &CSVExporter{w: w}
}

// Export writes the edge list.
func (e *CSVExporter) Export(_ context.Context, r *sitegraph.Report) error {
	cw := csv.NewWriter(e.w)
	if err := cw.Write([]string{"source", "target"}); err != nil {
		return err
	}
	for _, edge := range sortedEdges(r) {
		if err := cw.Write([]string{edge.Source, edge.Target}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
