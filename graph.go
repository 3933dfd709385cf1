package sitegraph

import (
	"sort"
	"sync"
)

// Edge is a link observed on Source pointing at Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// EdgeSink accumulates edges discovered during a crawl.
// RecordEdge is called concurrently from every worker.
type EdgeSink interface {
	RecordEdge(source, target string)
}

// Ensure Graph implements EdgeSink at compile time.
var _ EdgeSink = (*Graph)(nil)

// Graph is an in-memory EdgeSink. It is safe for concurrent use.
// Repeated links from the same source to the same target are kept once.
type Graph struct {
	mu    sync.Mutex
	edges map[Edge]struct{}
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[Edge]struct{})}
}

// RecordEdge adds the edge source → target.
func (g *Graph) RecordEdge(source, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[Edge{Source: source, Target: target}] = struct{}{}
}

// Len returns the number of distinct edges.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}

// Edges returns all edges sorted by source, then target.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	edges := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		edges = append(edges, e)
	}
	g.mu.Unlock()

	SortEdges(edges)
	return edges
}

// SortEdges sorts edges by source, then target.
func SortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
}

// EdgeGroup holds every target linked from one source page.
type EdgeGroup struct {
	Source  string   `json:"source"`
	Targets []string `json:"targets"`
}

// GroupEdges groups sorted edges by source. The input must already be
// sorted with SortEdges; groups and targets keep that order.
func GroupEdges(edges []Edge) []EdgeGroup {
	var groups []EdgeGroup
	for _, e := range edges {
		if n := len(groups); n > 0 && groups[n-1].Source == e.Source {
			groups[n-1].Targets = append(groups[n-1].Targets, e.Target)
			continue
		}
		groups = append(groups, EdgeGroup{Source: e.Source, Targets: []string{e.Target}})
	}
	return groups
}

// Pages returns every distinct URL appearing in edges, sorted.
func Pages(edges []Edge) []string {
	seen := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		seen[e.Source] = struct{}{}
		seen[e.Target] = struct{}{}
	}
	pages := make([]string, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	return pages
}
