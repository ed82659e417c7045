package flare

import (
	"fmt"
	"runtime"
	"sync"
)

// TrackingContext holds the reactive state for a goroutine.
// Each goroutine has its own tracking context so that evaluation on one
// goroutine never attributes dependencies to a computation on another.
type TrackingContext struct {
	// currentOwner is the Owner that will own newly created signals,
	// effects, and watchers. nil means primitives are unowned.
	currentOwner *Owner

	// currentListener is what's currently tracking dependencies.
	// When a signal is read, it subscribes this listener.
	// nil means no tracking (reads don't create subscriptions).
	currentListener Listener

	// batchDepth tracks nested Batch() calls.
	// When > 0, signal updates queue notifications instead of firing immediately.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when the outermost
	// batch completes. Deduplicated by ID before notification.
	pendingUpdates []Listener

	// dirty is the scheduler queue: runnables marked during the current
	// flush (or by the write that starts one).
	dirty []runnable

	// flushing is true while the scheduler is draining the dirty queue.
	// Marks made while flushing join the queue and run in a later round
	// instead of recursing.
	flushing bool
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the runtime stack header. Implementation detail; never
// exposed.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current
// goroutine, creating one if needed.
func getTrackingContext() *TrackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*TrackingContext)
	}

	ctx := &TrackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// getCurrentListener returns the current listener being tracked.
// Returns nil if no tracking is active.
func getCurrentListener() Listener {
	return getTrackingContext().currentListener
}

// setCurrentListener sets the current listener for dependency tracking.
// Returns the previous listener so it can be restored.
func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	return old
}

// getCurrentOwner returns the current owner for the goroutine.
// Returns nil if no owner context is set.
func getCurrentOwner() *Owner {
	return getTrackingContext().currentOwner
}

// setCurrentOwner sets the current owner for primitive creation.
// Returns the previous owner so it can be restored.
func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	return old
}

// queuePendingUpdate adds a listener to the pending updates queue.
// Called during batch mode when a signal is updated.
func queuePendingUpdate(l Listener) {
	ctx := getTrackingContext()
	ctx.pendingUpdates = append(ctx.pendingUpdates, l)
}

// schedule appends a runnable to the scheduler queue. The caller (an
// effect or watcher MarkDirty) has already claimed the runnable's
// pending flag, so the queue never holds duplicates within a round.
func schedule(r runnable) {
	ctx := getTrackingContext()
	ctx.dirty = append(ctx.dirty, r)
}

// flushIfIdle drains the scheduler queue unless a flush is already in
// progress, in which case the queued work runs in a later round of the
// active flush.
func flushIfIdle() {
	ctx := getTrackingContext()
	if ctx.flushing || ctx.batchDepth > 0 {
		return
	}
	flushDirty(ctx)
}

// propagate runs mark (which flips dirty flags and may recompute memos,
// but never runs effects or watchers) and then drains the scheduler.
// While a flush or an outer
// propagate is active, cascading marks join the ambient pass: every
// listener is marked before any computation runs, so a dependent
// reachable through several paths still runs once.
func propagate(mark func()) {
	ctx := getTrackingContext()
	if ctx.flushing {
		mark()
		return
	}
	ctx.flushing = true
	mark()
	ctx.flushing = false
	flushDirty(ctx)
}

// flushDirty runs queued computations in rounds until the queue is
// empty. Computations dirtied by round N run in round N+1, so a write
// performed during a computation's own run never recurses. Exceeding
// MaxUpdateRounds aborts with a panic wrapping ErrCycleDetected.
func flushDirty(ctx *TrackingContext) {
	ctx.flushing = true
	defer func() {
		ctx.flushing = false
		if r := recover(); r != nil {
			// Drop queued work so the next write starts clean; values
			// already written stay applied.
			ctx.dirty = nil
			panic(r)
		}
	}()

	rounds := 0
	for len(ctx.dirty) > 0 {
		rounds++
		if rounds > MaxUpdateRounds {
			n := len(ctx.dirty)
			ctx.dirty = nil
			if rec := getRecorder(); rec != nil {
				rec.CycleAborted()
			}
			panic(fmt.Errorf("%w: %d computations still dirty after %d rounds",
				ErrCycleDetected, n, MaxUpdateRounds))
		}

		round := ctx.dirty
		ctx.dirty = nil

		// A panicking computation must not starve the rest of its
		// round. The first panic is re-raised once the round is done;
		// cascades queued for later rounds are dropped by the deferred
		// cleanup above.
		var failure any
		for _, r := range round {
			func() {
				defer func() {
					if p := recover(); p != nil && failure == nil {
						failure = p
					}
				}()
				r.run()
			}()
		}
		if failure != nil {
			panic(failure)
		}
	}
}

// WithOwner runs a function with the specified owner as the current owner.
// This is used when spawning goroutines that need to create signals or
// effects that belong to a specific scope.
//
// Example:
//
//	go func() {
//	    WithOwner(parentOwner, func() {
//	        // Signals created here belong to parentOwner
//	        signal := NewSignal(0)
//	    })
//	}()
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// WithListener runs a function with the specified listener for tracking.
// This is used internally to set up dependency tracking during evaluation.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// cleanupGoroutineContext removes the tracking context for the current
// goroutine. Optional; contexts are lightweight and overwritten on reuse.
func cleanupGoroutineContext() {
	trackingContexts.Delete(getGoroutineID())
}
