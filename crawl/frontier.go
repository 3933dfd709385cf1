package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/sitegraph"
)

// DefaultQueueSize is the default capacity of a Frontier.
const DefaultQueueSize = 1000

// Compile-time interface verification.
var _ sitegraph.Frontier = (*Frontier)(nil)

// Frontier is a bounded FIFO queue of normalized URLs with exactly-once
// admission. Producers block while the queue is full. A Tracker decides
// when the queue closes: once nothing is queued and no worker is
// processing a URL.
//
// Frontier is safe for concurrent use by multiple goroutines.
type Frontier struct {
	visited sitegraph.VisitedSet
	tracker *Tracker
	queue   chan string

	// mu guards the stall guard state below.
	mu        sync.Mutex
	consumers int
	blocked   int
	overflow  []string
}

// FrontierOption configures a Frontier.
type FrontierOption func(*Frontier)

// WithVisitedSet sets the dedup store. Defaults to an exact VisitedSet.
func WithVisitedSet(v sitegraph.VisitedSet) FrontierOption {
	return func(f *Frontier) {
		f.visited = v
	}
}

// WithConsumers declares how many workers drain the frontier. When every
// one of them would block enqueueing into a full queue, the last producer
// parks its URL in an overflow list instead, since nobody would be left to
// make room. Zero disables the guard.
func WithConsumers(n int) FrontierOption {
	return func(f *Frontier) {
		f.consumers = n
	}
}

// NewFrontier creates a Frontier holding at most size queued URLs.
// A non-positive size selects DefaultQueueSize.
func NewFrontier(size int, opts ...FrontierOption) *Frontier {
	if size <= 0 {
		size = DefaultQueueSize
	}
	f := &Frontier{
		tracker: NewTracker(),
		queue:   make(chan string, size),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.visited == nil {
		f.visited = NewVisitedSet()
	}
	return f
}

// Enqueue offers url to the frontier on behalf of a consumer. It returns
// Duplicate if url was admitted before, and otherwise blocks until there is
// room in the queue. If the frontier closes or ctx is canceled first, the
// registration is withdrawn and Enqueue returns Rejected.
func (f *Frontier) Enqueue(ctx context.Context, url string) sitegraph.Admission {
	return f.enqueue(ctx, url, true)
}

// enqueue admits url. Only consumers take part in the stall guard; any other
// producer always blocks on a full queue.
func (f *Frontier) enqueue(ctx context.Context, url string, consumer bool) sitegraph.Admission {
	if !f.visited.Add(url) {
		return sitegraph.Duplicate
	}
	if !f.tracker.Register() {
		return sitegraph.Rejected
	}

	select {
	case f.queue <- url:
		return sitegraph.Admitted
	default:
	}

	if consumer {
		f.mu.Lock()
		if f.consumers > 0 && f.blocked+1 >= f.consumers {
			f.overflow = append(f.overflow, url)
			f.mu.Unlock()
			return sitegraph.Admitted
		}
		f.blocked++
		f.mu.Unlock()

		defer func() {
			f.mu.Lock()
			f.blocked--
			f.mu.Unlock()
		}()
	}

	select {
	case f.queue <- url:
		return sitegraph.Admitted
	case <-f.tracker.Done():
	case <-ctx.Done():
	}
	f.tracker.Unregister()
	return sitegraph.Rejected
}

// Dequeue blocks until a URL is available and marks it active. The bool
// result is false once the frontier is closed or ctx is canceled. Every
// URL returned must be followed by a call to Complete.
func (f *Frontier) Dequeue(ctx context.Context) (string, bool) {
	select {
	case <-f.tracker.Done():
		return "", false
	case <-ctx.Done():
		return "", false
	default:
	}

	if url, ok := f.popOverflow(); ok {
		f.tracker.Start()
		return url, true
	}

	select {
	case url := <-f.queue:
		f.tracker.Start()
		f.refill()
		return url, true
	case <-f.tracker.Done():
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

// Complete reports that processing of a dequeued URL has finished.
// The frontier closes if this was the last outstanding work.
func (f *Frontier) Complete() {
	f.tracker.Finish()
}

// Hold registers active work on behalf of a caller that is not processing a
// dequeued URL, such as an orchestrator still seeding the queue. The
// frontier cannot close until release is called. Hold returns false if the
// frontier is already closed.
func (f *Frontier) Hold() (release func(), ok bool) {
	if !f.tracker.Acquire() {
		return func() {}, false
	}
	var once sync.Once
	return func() { once.Do(f.tracker.Finish) }, true
}

// Close closes the frontier. Blocked Enqueue calls return Rejected and
// blocked Dequeue calls return false.
func (f *Frontier) Close() {
	f.tracker.Close()
}

// Done returns a channel that is closed when the frontier closes.
func (f *Frontier) Done() <-chan struct{} {
	return f.tracker.Done()
}

// Len returns the number of URLs waiting to be dequeued.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) + len(f.overflow)
}

// Visited returns the number of URLs ever admitted.
func (f *Frontier) Visited() int {
	return f.visited.Len()
}

// refill moves parked URLs into free queue slots so idle workers can pick
// them up.
func (f *Frontier) refill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.overflow) > 0 {
		select {
		case f.queue <- f.overflow[0]:
			f.overflow = f.overflow[1:]
		default:
			return
		}
	}
}

func (f *Frontier) popOverflow() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.overflow) == 0 {
		return "", false
	}
	url := f.overflow[0]
	f.overflow = f.overflow[1:]
	return url, true
}
