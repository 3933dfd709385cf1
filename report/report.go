// Package report renders crawl reports as console text, JSON, CSV and HTML.
// Every exporter writes deterministic output: edges are sorted by source and
// target before rendering.
package report

import (
	"github.com/fwojciec/sitegraph"
)

// sortedEdges returns a sorted copy of the report's edges.
func sortedEdges(r *sitegraph.Report) []sitegraph.Edge {
	edges := make([]sitegraph.Edge, len(r.Edges))
	copy(edges, r.Edges)
	sitegraph.SortEdges(edges)
	return edges
}
