package flare

import (
	"sync/atomic"
	"time"
)

// Recorder receives instrumentation callbacks from the runtime's hot
// paths. Implementations must be cheap and must not touch signals.
// pkg/observe provides a Prometheus-backed implementation; pkg/devtools
// streams the same events to inspector clients.
type Recorder interface {
	// SignalWrite is called once per value-changing write.
	SignalWrite()

	// EffectRun is called after each effect execution with its duration.
	EffectRun(d time.Duration)

	// BatchFlush is called when a batch closes, with the number of
	// distinct listeners notified.
	BatchFlush(size int)

	// CycleAborted is called when propagation exceeds MaxUpdateRounds.
	CycleAborted()

	// WatchFire is called each time a watcher delivers to its callback.
	WatchFire()
}

// recorder holds the active Recorder, if any. Stored behind an atomic
// pointer so the hot paths pay a single load when instrumentation is off.
var recorder atomic.Pointer[Recorder]

// SetRecorder installs the runtime-wide recorder. Pass nil to disable.
// Typically called once at startup:
//
//	flare.SetRecorder(observe.Metrics())
func SetRecorder(r Recorder) {
	if r == nil {
		recorder.Store(nil)
		return
	}
	recorder.Store(&r)
}

// getRecorder returns the active recorder or nil.
func getRecorder() Recorder {
	p := recorder.Load()
	if p == nil {
		return nil
	}
	return *p
}

// multiRecorder fans events out to several recorders.
type multiRecorder []Recorder

func (m multiRecorder) SignalWrite() {
	for _, r := range m {
		r.SignalWrite()
	}
}

func (m multiRecorder) EffectRun(d time.Duration) {
	for _, r := range m {
		r.EffectRun(d)
	}
}

func (m multiRecorder) BatchFlush(size int) {
	for _, r := range m {
		r.BatchFlush(size)
	}
}

func (m multiRecorder) CycleAborted() {
	for _, r := range m {
		r.CycleAborted()
	}
}

func (m multiRecorder) WatchFire() {
	for _, r := range m {
		r.WatchFire()
	}
}

// MultiRecorder combines several recorders into one. nil entries are
// skipped. Returns nil when nothing remains.
func MultiRecorder(recorders ...Recorder) Recorder {
	var out multiRecorder
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
