package flare

import (
	"sync"
	"sync/atomic"
)

// watcher observes a derived value and delivers (new, previous) pairs to
// a callback. It tracks the source like an effect but is independently
// cancelable: Created → Watching → Stopped, with Stopped terminal.
type watcher[T any] struct {
	id uint64

	// source is evaluated under tracking to register dependencies.
	source func() T

	// callback receives the new value and a pointer to the previous
	// value (nil when there is none). Runs untracked.
	callback func(value T, prev *T)

	// prev is the last value delivered or observed.
	prev    T
	hasPrev bool

	// pending indicates the watcher is scheduled for re-evaluation.
	pending atomic.Bool

	// stopped is checked both at scheduling and at delivery time, so a
	// change already in flight in the current batch never reaches a
	// stopped callback.
	stopped atomic.Bool

	// sources are the signals/memos the watcher currently depends on.
	sources   []*signalBase
	sourcesMu sync.Mutex
}

// MarkDirty implements the Listener interface.
func (w *watcher[T]) MarkDirty() {
	if w.stopped.Load() {
		return
	}
	if w.pending.CompareAndSwap(false, true) {
		schedule(w)
	}
}

// ID implements the Listener interface.
func (w *watcher[T]) ID() uint64 {
	return w.id
}

// addSource implements the dependent interface.
func (w *watcher[T]) addSource(source *signalBase) {
	w.sourcesMu.Lock()
	defer w.sourcesMu.Unlock()

	for _, s := range w.sources {
		if s == source {
			return
		}
	}
	w.sources = append(w.sources, source)
}

// track re-evaluates the source under tracking, rebuilding the
// dependency set from scratch.
func (w *watcher[T]) track() T {
	w.sourcesMu.Lock()
	for _, source := range w.sources {
		source.unsubscribe(w)
	}
	w.sources = w.sources[:0]
	w.sourcesMu.Unlock()

	old := setCurrentListener(w)
	defer setCurrentListener(old)
	return w.source()
}

// run re-evaluates the source and delivers to the callback.
// Called by the scheduler when a dependency changed.
func (w *watcher[T]) run() {
	w.pending.Store(false)
	if w.stopped.Load() {
		return
	}

	value := w.track()

	// Stop may have been called by the source evaluation itself.
	if w.stopped.Load() {
		return
	}

	var prev *T
	if w.hasPrev {
		p := w.prev
		prev = &p
	}
	w.prev = value
	w.hasPrev = true

	if rec := getRecorder(); rec != nil {
		rec.WatchFire()
	}

	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	w.callback(value, prev)
}

// Stop cancels the watcher. Idempotent: after the first call returns, no
// further dependency change invokes the callback.
func (w *watcher[T]) Stop() {
	if w.stopped.Swap(true) {
		return
	}

	w.sourcesMu.Lock()
	for _, source := range w.sources {
		source.unsubscribe(w)
	}
	w.sources = nil
	w.sourcesMu.Unlock()
}

// dispose implements the disposable interface for owner teardown.
func (w *watcher[T]) dispose() {
	w.Stop()
}

// Watch observes the value produced by source and calls callback with
// the new and previous value whenever a tracked dependency changes.
//
// The source is evaluated once, eagerly, to establish dependencies; the
// callback does not run for that initial evaluation unless immediate is
// true, in which case it is called with a nil previous value.
//
// The returned stop function is idempotent and independent of the signal
// graph: stopping a watcher affects no other computation. If an Owner is
// active, the watcher is also stopped when the owner is disposed.
//
// Example:
//
//	count := NewSignal(0)
//	stop := Watch(
//	    func() int { return count.Get() },
//	    func(v int, prev *int) { fmt.Println(v, prev) },
//	    false,
//	)
//	count.Set(1) // callback: 1, &0
//	stop()
//	count.Set(2) // nothing happens
func Watch[T any](source func() T, callback func(value T, prev *T), immediate bool) (stop func()) {
	w := &watcher[T]{
		id:       nextID(),
		source:   source,
		callback: callback,
	}

	if owner := getCurrentOwner(); owner != nil {
		owner.registerDisposable(w)
	}

	value := w.track()
	w.prev = value
	w.hasPrev = true

	if immediate {
		if rec := getRecorder(); rec != nil {
			rec.WatchFire()
		}
		old := setCurrentListener(nil)
		w.callback(value, nil)
		setCurrentListener(old)
	}

	return w.Stop
}

var _ runnable = (*watcher[int])(nil)
var _ dependent = (*watcher[int])(nil)
