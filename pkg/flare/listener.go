package flare

// Listener is anything that can be notified when a dependency changes.
// This interface is implemented by effects, memos, and watchers.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	// For memos, this invalidates the cached value.
	// For effects and watchers, this schedules a re-run.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// runnable is a listener whose notification requires executing user code.
// Effects and watchers are runnable; memos invalidate in place.
type runnable interface {
	Listener
	run()
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()
