package ledger

import (
	"sync"

	"github.com/wippyai/ffi-omnibus/errors"
)

// Kind names the sort of value an allocation carries.
type Kind string

const (
	KindText  Kind = "text"
	KindStore Kind = "store"
)

// Allocation is one outward transfer awaiting release.
type Allocation struct {
	Kind Kind
	Size uint32
}

// Stats counts ledger traffic since creation.
type Stats struct {
	Acquired uint64
	Released uint64
}

// ReleasedWindow is how many recent releases a ledger remembers to tell a
// double release apart from a release of something never acquired.
const ReleasedWindow = 4096

// Ledger tracks live allocations keyed by address or handle.
// Safe for concurrent use; one ledger serves every caller of a boundary.
type Ledger[K comparable] struct {
	live     map[K]Allocation
	released map[K]int // key -> slot in ring
	ring     []K
	next     int
	kinds    map[Kind]struct{}
	metrics  *Metrics
	boundary string
	stats    Stats
	mu       sync.Mutex
}

// New creates a ledger for the named boundary. metrics may be nil.
func New[K comparable](boundary string, metrics *Metrics) *Ledger[K] {
	return &Ledger[K]{
		live:     make(map[K]Allocation),
		released: make(map[K]int),
		kinds:    make(map[Kind]struct{}),
		metrics:  metrics,
		boundary: boundary,
	}
}

// Boundary returns the boundary name the ledger was created for.
func (l *Ledger[K]) Boundary() string {
	return l.boundary
}

// SetMetrics replaces the metrics sink and seeds its live gauges with the
// allocations outstanding now. nil disables metrics.
func (l *Ledger[K]) SetMetrics(m *Metrics) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metrics = m

	counts := make(map[Kind]int, len(l.kinds))
	for kind := range l.kinds {
		counts[kind] = 0
	}
	for _, a := range l.live {
		counts[a.Kind]++
	}
	for kind, n := range counts {
		m.SetLive(kind, n)
	}
}

// Acquire records a new outward allocation. Reusing a key that is still live
// means the allocator handed out the same address twice and fails fast.
func (l *Ledger[K]) Acquire(key K, kind Kind, size uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.live[key]; ok {
		errors.Violate(errors.New(errors.PhaseTransfer, errors.KindAllocation).
			Op("acquire").
			Value(key).
			Detail("allocation %v is already live", key).
			Build())
	}
	delete(l.released, key)
	l.live[key] = Allocation{Kind: kind, Size: size}
	l.kinds[kind] = struct{}{}
	l.stats.Acquired++
	l.metrics.acquired(kind)
}

// Release removes a live allocation and returns it so the caller can free the
// memory. A key released before, or never acquired, fails fast.
func (l *Ledger[K]) Release(op string, key K) Allocation {
	l.mu.Lock()
	defer l.mu.Unlock()

	alloc, ok := l.live[key]
	if !ok {
		if _, seen := l.released[key]; seen {
			errors.Violate(errors.DoubleRelease(op, key))
		}
		errors.Violate(errors.UnknownAllocation(op, key))
	}
	delete(l.live, key)
	l.remember(key)
	l.stats.Released++
	l.metrics.released(alloc.Kind)
	return alloc
}

// remember records key as released, evicting the oldest release once the
// window is full. Callers hold mu.
func (l *Ledger[K]) remember(key K) {
	if len(l.ring) < ReleasedWindow {
		l.ring = append(l.ring, key)
		l.released[key] = len(l.ring) - 1
		return
	}

	// A slot is stale when its key was acquired and released again since.
	old := l.ring[l.next]
	if slot, ok := l.released[old]; ok && slot == l.next {
		delete(l.released, old)
	}
	l.ring[l.next] = key
	l.released[key] = l.next
	l.next = (l.next + 1) % ReleasedWindow
}

// Check fails fast unless key is live. Accessors call it before touching the
// value behind a handle.
func (l *Ledger[K]) Check(op string, key K) Allocation {
	l.mu.Lock()
	defer l.mu.Unlock()

	alloc, ok := l.live[key]
	if !ok {
		errors.Violate(errors.InvalidHandle(op, key))
	}
	return alloc
}

// Live returns the number of outstanding allocations.
func (l *Ledger[K]) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// LiveKind returns the number of outstanding allocations of one kind.
func (l *Ledger[K]) LiveKind(kind Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, a := range l.live {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Remembered returns how many released keys the ledger still recognizes.
func (l *Ledger[K]) Remembered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.released)
}

// Stats returns acquire and release totals.
func (l *Ledger[K]) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
