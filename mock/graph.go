package mock

import "github.com/fwojciec/sitegraph"

var _ sitegraph.EdgeSink = (*EdgeSink)(nil)

// EdgeSink is a mock implementation of sitegraph.EdgeSink.
type EdgeSink struct {
	RecordEdgeFn func(source, target string)
}

func (s *EdgeSink) RecordEdge(source, target string) {
	s.RecordEdgeFn(source, target)
}

var _ sitegraph.VisitedSet = (*VisitedSet)(nil)

// VisitedSet is a mock implementation of sitegraph.VisitedSet.
type VisitedSet struct {
	AddFn func(url string) bool
	LenFn func() int
}

func (v *VisitedSet) Add(url string) bool {
	return v.AddFn(url)
}

func (v *VisitedSet) Len() int {
	return v.LenFn()
}
