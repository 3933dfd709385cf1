package sitegraph

import "context"

// Admission is the outcome of offering a URL to a Frontier.
type Admission int

// Admission outcomes. Duplicate and Rejected are normal, silent results.
const (
	// Admitted means the URL was new and is now queued.
	Admitted Admission = iota
	// Duplicate means the URL had already been admitted before.
	Duplicate
	// Rejected means the frontier closed before the URL could be queued.
	Rejected
)

// String returns the admission name.
func (a Admission) String() string {
	switch a {
	case Admitted:
		return "admitted"
	case Duplicate:
		return "duplicate"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// VisitedSet records every URL ever admitted to a frontier.
// Implementations must be safe for concurrent use.
type VisitedSet interface {
	// Add inserts url and reports whether it was newly inserted.
	// The test and the insert are a single atomic step: for concurrent
	// calls carrying the same url exactly one returns true.
	Add(url string) bool

	// Len returns the number of URLs in the set.
	Len() int
}

// Frontier is a bounded queue of normalized URLs awaiting a fetch, paired
// with the bookkeeping that decides when a crawl is complete.
type Frontier interface {
	// Enqueue admits url unless it has been seen before. It blocks while
	// the queue is full.
	Enqueue(ctx context.Context, url string) Admission

	// Dequeue blocks until a URL is available. The bool result is false
	// once the frontier is closed.
	Dequeue(ctx context.Context) (string, bool)

	// Complete reports that processing of a dequeued URL has finished,
	// successfully or not.
	Complete()

	// Close closes the frontier. Blocked callers unblock.
	Close()

	// Done is closed when the frontier closes.
	Done() <-chan struct{}

	// Len returns the number of URLs waiting in the queue.
	Len() int
}
