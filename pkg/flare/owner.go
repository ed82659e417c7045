package flare

import (
	"sync"
	"sync/atomic"
)

// disposable is any primitive an Owner tears down on Dispose.
// Signals, effects, and watchers implement it.
type disposable interface {
	dispose()
}

// Owner represents a scope that owns reactive primitives.
// When an Owner is disposed, all signals, effects, watchers, and child
// owners it contains are also disposed. This ensures proper cleanup and
// prevents leaked subscriptions.
//
// Owners form a hierarchy: child scopes are created with the parent as
// argument, and context values provided on an ancestor are visible to
// all descendants.
type Owner struct {
	id uint64

	// parent is the parent Owner in the hierarchy.
	// nil for a root Owner.
	parent *Owner

	// children are child Owners (sub-scopes).
	children   []*Owner
	childrenMu sync.Mutex

	// disposables are the primitives owned by this scope, in creation
	// order.
	disposables   []disposable
	disposablesMu sync.Mutex

	// cleanups are manual cleanup functions registered via OnCleanup.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// values stores context values for this scope.
	values   map[any]any
	valuesMu sync.RWMutex

	// disposed indicates whether this Owner has been disposed.
	disposed atomic.Bool
}

// NewOwner creates a new Owner with the given parent.
// The new Owner is automatically registered as a child of the parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(o)
	}

	return o
}

// Root creates a root Owner, runs fn with it as the current owner, and
// returns a dispose function for the whole scope.
//
//	dispose := flare.Root(func() {
//	    count := flare.NewSignal(0)
//	    flare.CreateEffect(func() flare.Cleanup { ... })
//	})
//	defer dispose()
func Root(fn func()) (dispose func()) {
	o := NewOwner(nil)
	WithOwner(o, fn)
	return o.Dispose
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil if this is a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// addChild registers a child Owner.
func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

// removeChild removes a child Owner from this Owner's children.
func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// registerDisposable adds a primitive to this Owner.
// It will be disposed when this Owner is disposed.
func (o *Owner) registerDisposable(d disposable) {
	if o.disposed.Load() {
		// Scope already torn down; dispose immediately.
		d.dispose()
		return
	}

	o.disposablesMu.Lock()
	defer o.disposablesMu.Unlock()
	o.disposables = append(o.disposables, d)
}

// OnCleanup registers a cleanup function to run when this Owner is disposed.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		// Already disposed, run cleanup immediately
		fn()
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// Dispose disposes this Owner and all its children, primitives, and
// cleanups. Children are disposed first, in reverse creation order; then
// owned primitives, then cleanups, also in reverse order. After disposal
// the Owner cannot be reused. Idempotent.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.disposablesMu.Lock()
	disposables := o.disposables
	o.disposables = nil
	o.disposablesMu.Unlock()

	for i := len(disposables) - 1; i >= 0; i-- {
		disposables[i].dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// MemoryUsage estimates the bytes retained by this Owner and its
// children. Coarse by design; used by the devtools stats endpoint.
func (o *Owner) MemoryUsage() int64 {
	if o == nil {
		return 0
	}

	var size int64 = 192 // Base struct + mutex overhead

	o.disposablesMu.Lock()
	size += int64(24 + len(o.disposables)*16)
	o.disposablesMu.Unlock()

	o.cleanupsMu.Lock()
	size += int64(24 + len(o.cleanups)*8)
	o.cleanupsMu.Unlock()

	o.valuesMu.RLock()
	size += int64(48 + len(o.values)*64)
	o.valuesMu.RUnlock()

	o.childrenMu.Lock()
	children := append([]*Owner(nil), o.children...)
	o.childrenMu.Unlock()

	size += int64(24 + len(children)*8)
	for _, child := range children {
		size += child.MemoryUsage()
	}

	return size
}
