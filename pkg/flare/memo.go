package flare

import (
	"sync"
	"sync/atomic"
)

// Memo is a cached computation that automatically tracks its
// dependencies. When any dependency changes, the memo is invalidated.
//
// While nothing subscribes to a memo it is fully lazy: the value
// computes on the first Get() and, after invalidation, on the next
// read. If multiple signals change before a read, the memo only
// recomputes once. Once a computation subscribes, invalidation
// recomputes in place so propagation stops when the new value equals
// the old one.
//
// Memos can also be subscribed to, behaving like signals themselves.
// This allows building chains of derived values.
type Memo[T any] struct {
	base signalBase

	// compute is the function that computes the memo's value.
	compute func() T

	// value is the cached computed value.
	value T

	// valueMu protects value access.
	valueMu sync.RWMutex

	// valid indicates whether the cached value is current.
	// When false, the next Get() will recompute.
	valid atomic.Bool

	// sources are the signals/memos this memo currently depends on.
	sources   []*signalBase
	sourcesMu sync.Mutex

	// equal is the equality function for determining value changes.
	equal func(T, T) bool

	// computing prevents infinite recursion in circular dependencies.
	computing atomic.Bool
}

// NewMemo creates a new memo with the given computation function.
// The computation is not run immediately; it runs lazily on first Get().
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		base: signalBase{
			id: nextID(),
		},
		compute: compute,
	}
}

// Get returns the memo's value, recomputing if necessary.
// Creates a dependency on this memo for the current listener.
func (m *Memo[T]) Get() T {
	if listener := getCurrentListener(); listener != nil {
		m.base.subscribe(listener)

		if d, ok := listener.(dependent); ok {
			d.addSource(&m.base)
		}
	}

	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// Peek returns the memo's value without subscribing.
// Still triggers recomputation if the cached value is stale.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}
	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// MarkDirty invalidates the memo. With no subscribers the memo stays
// stale until the next read. With subscribers it recomputes in place
// and propagates only when the value changed under the memo's equality,
// so an unchanged result does not re-run downstream computations.
// Implements the Listener interface.
func (m *Memo[T]) MarkDirty() {
	// CAS for idempotent invalidation
	if !m.valid.CompareAndSwap(true, false) {
		return
	}
	if !m.base.hasSubscribers() {
		return
	}

	m.valueMu.RLock()
	old := m.value
	m.valueMu.RUnlock()

	m.recompute()

	m.valueMu.RLock()
	changed := !m.equals(old, m.value)
	m.valueMu.RUnlock()

	if changed {
		m.base.notifySubscribers()
	}
}

// ID returns the unique identifier for this memo.
// Implements the Listener interface.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// addSource adds a source dependency.
// Implements the dependent interface.
func (m *Memo[T]) addSource(source *signalBase) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()

	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

// WithEquals configures the memo with a custom equality function.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// recompute runs the computation under tracking and updates the cache.
// The prior dependency set is dropped first so conditional reads can
// shrink it.
func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		// Already computing; a circular read observes the stale value.
		return
	}
	defer m.computing.Store(false)

	m.sourcesMu.Lock()
	for _, source := range m.sources {
		source.unsubscribe(m)
	}
	m.sources = m.sources[:0]
	m.sourcesMu.Unlock()

	old := setCurrentListener(m)
	newValue := m.compute()
	setCurrentListener(old)

	m.valueMu.Lock()
	m.value = newValue
	m.valueMu.Unlock()

	m.valid.Store(true)
}

// equals checks if two values are equal.
func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}

var _ dependent = (*Memo[int])(nil)
