package crawl

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitegraph"
)

// visitedShards is the number of independently locked partitions of a
// VisitedSet. Must be a power of two.
const visitedShards = 32

// Compile-time interface verification.
var _ sitegraph.VisitedSet = (*VisitedSet)(nil)

// VisitedSet is an exact, concurrency-safe set of URLs. URLs are spread
// across shards by xxhash so that workers admitting unrelated URLs rarely
// contend on the same lock.
type VisitedSet struct {
	shards [visitedShards]visitedShard
}

type visitedShard struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet returns an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	v := &VisitedSet{}
	for i := range v.shards {
		v.shards[i].urls = make(map[string]struct{})
	}
	return v
}

// Add inserts url and reports whether it was newly inserted.
func (v *VisitedSet) Add(url string) bool {
	s := v.shard(url)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

// Contains reports whether url is in the set.
func (v *VisitedSet) Contains(url string) bool {
	s := v.shard(url)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.urls[url]
	return ok
}

// Len returns the number of URLs in the set.
func (v *VisitedSet) Len() int {
	n := 0
	for i := range v.shards {
		s := &v.shards[i]
		s.mu.Lock()
		n += len(s.urls)
		s.mu.Unlock()
	}
	return n
}

func (v *VisitedSet) shard(url string) *visitedShard {
	return &v.shards[xxhash.Sum64String(url)&(visitedShards-1)]
}
