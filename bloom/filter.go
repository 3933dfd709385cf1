// Package bloom provides URL deduplication using Bloom filters.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/sitegraph"
)

// Compile-time interface verification.
var _ sitegraph.VisitedSet = (*VisitedSet)(nil)

// VisitedSet is an approximate, memory-bounded set of URLs backed by a Bloom
// filter. A false positive makes Add report a URL that was never seen as
// already visited, so the crawl may miss pages but never fetches one twice.
type VisitedSet struct {
	mu    sync.Mutex
	f     *bloom.BloomFilter
	count int
}

// NewVisitedSet creates a set sized for n expected URLs with the given false
// positive rate.
func NewVisitedSet(n uint, fpRate float64) *VisitedSet {
	return &VisitedSet{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add inserts url and reports whether it was newly inserted.
func (v *VisitedSet) Add(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.f.TestAndAddString(url) {
		return false
	}
	v.count++
	return true
}

// Contains reports whether url might be in the set.
// False positives are possible; false negatives are not.
func (v *VisitedSet) Contains(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.f.TestString(url)
}

// Len returns the number of URLs Add accepted.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.count
}

// EstimatedCount returns the filter's own estimate of its cardinality.
func (v *VisitedSet) EstimatedCount() uint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return uint(v.f.ApproximatedSize())
}
