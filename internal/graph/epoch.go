package graph

import (
	"sync"
	"sync/atomic"
)

// EpochTracker implements the MVCC scheme spec.md §4.1 calls for: writers
// bump a global epoch, readers record which epoch they're observing, and
// the minimum reader epoch marks the point below which old committed
// values are safe to discard. Grounded on original_source's
// epoch_tracker.rs, simplified from its cache-padded per-thread-slot array
// to a small map keyed by an opaque reader token — Go's GOMAXPROCS-sized
// goroutine pools don't need the fixed MAX_THREADS slab the Rust version
// used to dodge allocation inside the read path.
type EpochTracker struct {
	current atomic.Uint64
	mu      sync.Mutex
	readers map[uint64]uint64 // reader token -> epoch being observed
	nextTok atomic.Uint64
}

func NewEpochTracker() *EpochTracker {
	return &EpochTracker{readers: make(map[uint64]uint64)}
}

// Current returns the current write epoch.
func (e *EpochTracker) Current() uint64 { return e.current.Load() }

// Advance bumps the epoch after a committed write batch and returns the
// new value.
func (e *EpochTracker) Advance() uint64 { return e.current.Add(1) }

// BeginRead registers a reader pinned to the current epoch and returns a
// token to pass to EndRead. Pinning prevents SafeEpoch from advancing past
// a snapshot still in use.
func (e *EpochTracker) BeginRead() uint64 {
	tok := e.nextTok.Add(1)
	epoch := e.current.Load()
	e.mu.Lock()
	e.readers[tok] = epoch
	e.mu.Unlock()
	return tok
}

// EndRead releases a reader token obtained from BeginRead.
func (e *EpochTracker) EndRead(tok uint64) {
	e.mu.Lock()
	delete(e.readers, tok)
	e.mu.Unlock()
}

// SafeEpoch returns the minimum epoch any active reader still observes, or
// the current epoch if there are no active readers.
func (e *EpochTracker) SafeEpoch() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	min := e.current.Load()
	for _, epoch := range e.readers {
		if epoch < min {
			min = epoch
		}
	}
	return min
}
