package terms

import "sync/atomic"

// Limit is a cooperative cancellation handle shared between the term
// manager, tactics, and the SAT core. Long-running work polls Cancelled
// and gives up with an "unknown" answer once it returns true.
//
// Cancel may be called from any goroutine; everything else about the
// solver stack is single-threaded.
type Limit struct {
	cancelled atomic.Bool
}

// NewLimit returns a fresh, uncancelled limit.
func NewLimit() *Limit { return &Limit{} }

// Cancel requests that all work polling this limit stop.
func (l *Limit) Cancel() { l.cancelled.Store(true) }

// Reset re-arms the limit after a cancellation.
func (l *Limit) Reset() { l.cancelled.Store(false) }

// Cancelled reports whether Cancel has been called.
func (l *Limit) Cancelled() bool {
	if l == nil {
		return false
	}
	return l.cancelled.Load()
}
