package resource

import (
	"errors"
	"math"
	"slices"
	"sync"
)

var (
	ErrClosed    = errors.New("resource table closed")
	ErrExhausted = errors.New("resource table out of handles")
)

// Table maps handles to values of one type.
// The table itself is safe for concurrent use; the values are not guarded.
type Table[T any] struct {
	entries   map[Handle]T
	freeList  []Handle
	observers []Observer
	next      Handle
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	reuse     bool
	closed    bool
}

// NewTable creates an empty table that reissues freed handles.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		entries:  make(map[Handle]T),
		freeList: make([]Handle, 0, 4),
		reuse:    true,
	}
}

// NewSequentialTable creates an empty table whose handles increase and are
// never reissued, so a stale handle can never name a newer value.
func NewSequentialTable[T any]() *Table[T] {
	return &Table[T]{
		entries: make(map[Handle]T),
	}
}

// Insert stores a value and returns its handle, or 0 once the table is closed
// or out of handles.
func (t *Table[T]) Insert(value T) Handle {
	h, err := t.insert(value)
	if err != nil {
		return 0
	}

	t.notify(Event{Type: EventCreated, Handle: h, Value: value})
	return h
}

func (t *Table[T]) insert(value T) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	var h Handle
	if t.reuse && len(t.freeList) > 0 {
		h = t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
	} else {
		if t.next == math.MaxUint32 {
			return 0, ErrExhausted
		}
		t.next++
		h = t.next
	}

	t.entries[h] = value
	return h, nil
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(h Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.entries[h]
	return v, ok
}

// Remove drops a value and returns (value, true) if the handle was live.
func (t *Table[T]) Remove(h Handle) (T, bool) {
	value, ok := t.remove(h)
	if !ok {
		return value, false
	}

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDropped, Handle: h, Value: value})
	return value, true
}

func (t *Table[T]) remove(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	value, ok := t.entries[h]
	if !ok {
		return value, false
	}

	delete(t.entries, h)
	if t.reuse {
		t.freeList = append(t.freeList, h)
	}
	return value, true
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Each iterates over live handles in ascending order until fn returns false.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	handles := make([]Handle, 0, len(t.entries))
	for h := range t.entries {
		handles = append(handles, h)
	}
	slices.Sort(handles)

	for _, h := range handles {
		if !fn(h, t.entries[h]) {
			return
		}
	}
}

// Clear removes every live handle.
func (t *Table[T]) Clear() {
	// Collect handles first to avoid holding the lock during Remove
	var handles []Handle
	t.Each(func(h Handle, _ T) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close removes every live handle and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.Clear()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.freeList = nil
	return nil
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
