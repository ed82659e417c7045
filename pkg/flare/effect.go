package flare

import (
	"sync"
	"sync/atomic"
	"time"
)

// Effect represents a reactive side effect that runs when its
// dependencies change. Effects are created with CreateEffect and are
// automatically tracked for dependencies during their execution.
//
// Effects run immediately when created and re-run whenever any signal or
// memo they read during execution changes. They can return a Cleanup
// function that is called before the effect re-runs or when it is
// disposed.
//
// An effect that panics during a run is marked failed: the panic
// propagates to the caller of the triggering write, and the effect is
// excluded from scheduling until Reset is called.
type Effect struct {
	id uint64

	// fn is the effect function to run.
	fn func() Cleanup

	// cleanup is the cleanup function from the last run.
	cleanup Cleanup

	// sources are the signals/memos this effect currently depends on.
	// Replaced, not merged, on each re-run so stale edges are dropped.
	sources   []*signalBase
	sourcesMu sync.Mutex

	// owner is the Owner that owns this effect.
	owner *Owner

	// pending indicates the effect is scheduled for re-run.
	pending atomic.Bool

	// disposed indicates the effect has been disposed.
	disposed atomic.Bool

	// failed indicates the last run panicked. Failed effects are not
	// scheduled until Reset.
	failed atomic.Bool

	// name is an optional label for debugging and tracing.
	name string
}

// MarkDirty marks the effect as needing to re-run.
// Implements the Listener interface.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() || e.failed.Load() {
		return
	}

	// CAS ensures we only schedule once per round
	if e.pending.CompareAndSwap(false, true) {
		schedule(e)
	}
}

// ID returns the unique identifier for this effect.
// Implements the Listener interface.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the label set with EffectName, or "".
func (e *Effect) Name() string {
	return e.name
}

// run executes the effect function under dependency tracking.
// Called on creation and by the scheduler when dependencies change.
func (e *Effect) run() {
	if e.disposed.Load() || e.failed.Load() {
		e.pending.Store(false)
		return
	}

	e.pending.Store(false)

	// Run cleanup from previous run
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.clearSources()

	start := time.Now()
	oldListener := setCurrentListener(e)
	defer func() {
		setCurrentListener(oldListener)
		if rec := getRecorder(); rec != nil {
			rec.EffectRun(time.Since(start))
		}
		if r := recover(); r != nil {
			// Leave the effect out of future scheduling; the panic
			// surfaces at the caller of the triggering write.
			e.failed.Store(true)
			panic(r)
		}
	}()

	e.cleanup = e.fn()
}

// clearSources unsubscribes from all current sources so the dependency
// set can be rebuilt from scratch.
func (e *Effect) clearSources() {
	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()
}

// addSource adds a source dependency.
// Called by signals when they are read during effect execution.
func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

// Failed reports whether the effect's last run panicked.
func (e *Effect) Failed() bool {
	return e.failed.Load()
}

// Reset re-arms a failed effect and runs it immediately to rebuild its
// dependency set. No-op if the effect is disposed or not failed.
func (e *Effect) Reset() {
	if e.disposed.Load() {
		return
	}
	if e.failed.CompareAndSwap(true, false) {
		e.pending.Store(true)
		schedule(e)
		flushIfIdle()
	}
}

// IsDisposed reports whether the effect has been disposed.
func (e *Effect) IsDisposed() bool {
	return e.disposed.Load()
}

// Dispose stops the effect permanently: its cleanup runs, it
// unsubscribes from all sources, and no further notification reaches it.
func (e *Effect) Dispose() {
	e.dispose()
}

// dispose cleans up the effect and unsubscribes from all sources.
func (e *Effect) dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

// EffectOption is an option for configuring an Effect.
type EffectOption interface {
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// EffectName sets a label for the effect.
// The name appears in debug logging and inspector entries.
func EffectName(name string) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.name = name
	})
}

// CreateEffect creates and runs a new effect within the current owner
// context. The effect function runs immediately and re-runs when any
// signal or memo it reads changes. If the function returns a Cleanup,
// it is called before the effect re-runs or when the effect is disposed.
//
// Example:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
func CreateEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
	}

	for _, opt := range opts {
		opt.applyEffect(e)
	}

	if owner := getCurrentOwner(); owner != nil {
		e.owner = owner
		owner.registerDisposable(e)
	}

	// Initial run goes through the scheduler so that writes performed
	// inside the body defer to the next round instead of recursing.
	e.pending.Store(true)
	schedule(e)
	flushIfIdle()

	return e
}

// OnMount runs fn once, when the effect is created.
// This is equivalent to CreateEffect with no reactive dependencies.
func OnMount(fn func()) {
	CreateEffect(func() Cleanup {
		Untracked(fn)
		return nil
	})
}

// OnUnmount registers a function to run when the current owner is
// disposed.
func OnUnmount(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}

// OnUpdate creates an effect that skips the callback on the first run.
// Use this to react only to changes, not the initial value.
//
// The deps function is called on every run to establish dependencies;
// the callback only runs on subsequent changes.
//
// Example:
//
//	OnUpdate(
//	    func() { _ = count.Get() },           // deps: read signals to track
//	    func() { fmt.Println("Updated!") },   // callback: only on changes
//	)
func OnUpdate(deps func(), callback func()) *Effect {
	first := true
	return CreateEffect(func() Cleanup {
		deps() // Always call to track dependencies
		if first {
			first = false
			return nil
		}
		callback()
		return nil
	})
}
