package report

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/sitegraph"
)

// Ensure TextExporter implements sitegraph.Exporter at compile time.
var _ sitegraph.Exporter = (*TextExporter)(nil)

// TextExporter prints the link graph grouped by source page:
//
//	https://example.com/
//	  -> https://example.com/about
//	  -> https://example.com/blog
type TextExporter struct {
	w io.Writer
}

// NewTextExporter creates a TextExporter writing to w.
func NewTextExporter(w io.Writer) *TextExporter {
	return &TextExporter{w: w}
}

// Export writes the grouped graph followed by a blank line between groups.
func (e *TextExporter) Export(_ context.Context, r *sitegraph.Report) error {
	groups := sitegraph.GroupEdges(sortedEdges(r))
	if len(groups) == 0 {
		_, err := fmt.Fprintf(e.w, "No links found from %s\n", r.Seed)
		return err
	}
	for i, g := range groups {
		if i > 0 {
			if _, err := fmt.Fprintln(e.w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(e.w, g.Source); err != nil {
			return err
		}
		for _, target := range g.Targets {
			if _, err := fmt.Fprintf(e.w, "  -> %s\n", target); err != nil {
				return err
			}
		}
	}
	return nil
}
