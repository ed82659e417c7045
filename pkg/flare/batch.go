package flare

import "log/slog"

// Batch groups multiple signal updates into a single notification phase.
// All signal updates within the batch function are collected,
// deduplicated by listener identity, and every affected computation runs
// exactly once when the outermost batch completes, observing all the new
// values (glitch-free propagation).
//
// Batches can be nested. Notifications only fire when the outermost
// batch completes.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	    age.Set(30)
//	})
//	// Dependents run once with all three changes
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			processPendingUpdates(ctx)
			// Also drains work scheduled directly during the batch,
			// such as the initial run of an effect created inside it.
			flushIfIdle()
		}
	}()

	fn()
}

// processPendingUpdates deduplicates pending listeners, marks them all
// dirty, and then drains the scheduler in one pass. Marking everything
// before running anything preserves dirty-order and at-most-once
// execution regardless of how many writes touched each listener.
func processPendingUpdates(ctx *TrackingContext) {
	updates := ctx.pendingUpdates
	ctx.pendingUpdates = nil
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	unique := make([]Listener, 0, len(updates))

	for _, listener := range updates {
		id := listener.ID()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, listener)
		}
	}

	if rec := getRecorder(); rec != nil {
		rec.BatchFlush(len(unique))
	}

	propagate(func() {
		for _, listener := range unique {
			listener.MarkDirty()
		}
	})
}

// Untracked runs a function without tracking signal reads as dependencies.
//
// Example:
//
//	Untracked(func() {
//	    // Reading count here won't subscribe the current computation
//	    value := count.Get()
//	    fmt.Println("Current value:", value)
//	})
//
// For single signal reads, signal.Peek() is cheaper and clearer.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// UntrackedGet reads a signal's value without creating a dependency.
// This is a convenience function equivalent to signal.Peek().
func UntrackedGet[T any](s *Signal[T]) T {
	return s.Peek()
}

// Tx runs fn as a transaction, grouping all signal updates.
// This is an alias for Batch() for callers that prefer transaction
// terminology.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed runs fn as a named transaction for debugging and tracing.
// The transaction name is logged in debug mode.
//
// Example:
//
//	TxNamed("profile-update", func() {
//	    user.Set(newUser)
//	    profile.Set(newProfile)
//	})
func TxNamed(name string, fn func()) {
	if DebugMode {
		slog.Debug("tx start", "name", name)
		defer slog.Debug("tx end", "name", name)
	}
	Batch(fn)
}
