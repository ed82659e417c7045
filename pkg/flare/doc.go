// Package flare is a fine-grained reactive signal runtime.
//
// Dependencies are tracked automatically at runtime: reading a signal
// while a computation (effect, memo, or watcher) is evaluating subscribes
// that computation to the signal's changes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (re-runs dependents before returning)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
//	value := doubled.Get()  // Recomputes only if dependencies changed
//
// CreateEffect runs side effects when dependencies change:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { /* cleanup */ }
//	})
//
// Watch observes a derived value and delivers both the new and previous
// value to a callback, with an independent stop handle:
//
//	stop := Watch(func() int { return count.Get() },
//	    func(v int, prev *int) { fmt.Println(v, prev) }, false)
//	defer stop()
//
// # Batching
//
// Multiple signal updates can be batched so that dependents run exactly
// once, after all writes are applied:
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	    c.Set(3)
//	})  // Each dependent runs once, observing all three new values
//
// # Execution Model
//
// Propagation is synchronous and single-threaded per goroutine: a write
// outside a batch re-runs every dependent computation before Set returns.
// Writes performed during a computation's own run are deferred to the
// next scheduler round; unbounded mutual re-triggering aborts with
// ErrCycleDetected after MaxUpdateRounds rounds.
//
// The tracking context is per-goroutine, so spawning goroutines requires
// explicit context propagation via WithOwner.
package flare
