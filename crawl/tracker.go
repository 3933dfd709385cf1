package crawl

import "sync"

// Tracker detects crawl termination. It counts URLs sitting in the queue
// (queued) and URLs a worker is processing (active), and closes when both
// reach zero. Every transition happens under one mutex, so the decision to
// close can never interleave with a registration.
type Tracker struct {
	mu     sync.Mutex
	queued int
	active int
	closed bool
	done   chan struct{}
}

// NewTracker returns an open Tracker with no work registered.
func NewTracker() *Tracker {
	return &Tracker{done: make(chan struct{})}
}

// Register records one URL about to enter the queue.
// It returns false, registering nothing, if the tracker is closed.
func (t *Tracker) Register() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.queued++
	return true
}

// Unregister withdraws a registration whose URL never reached a worker.
func (t *Tracker) Unregister() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.queued > 0 {
		t.queued--
	}
	t.closeIfIdle()
}

// Start moves one URL from queued to active.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.queued > 0 {
		t.queued--
	}
	t.active++
}

// Acquire registers active work that did not come from the queue.
// It returns false if the tracker is closed.
func (t *Tracker) Acquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.active++
	return true
}

// Finish records the end of one active unit and closes the tracker if no
// work remains.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active > 0 {
		t.active--
	}
	t.closeIfIdle()
}

// Close closes the tracker regardless of outstanding work.
// It is safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.close()
}

// Done returns a channel that is closed when the tracker closes.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Counts returns a snapshot of the queued and active counters.
func (t *Tracker) Counts() (queued, active int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queued, t.active
}

// closeIfIdle must be called with mu held.
func (t *Tracker) closeIfIdle() {
	if t.queued == 0 && t.active == 0 {
		t.close()
	}
}

// close must be called with mu held.
func (t *Tracker) close() {
	if t.closed {
		return
	}
	t.closed = true
	close(t.done)
}
