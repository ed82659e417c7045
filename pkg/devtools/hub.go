// Package devtools serves a runtime inspector over HTTP.
//
// The Hub is a flare.Recorder that counts runtime events and streams
// them to connected WebSocket clients. Server mounts the hub behind a
// small JSON API plus a Prometheus scrape endpoint:
//
//	hub := devtools.NewHub()
//	flare.SetRecorder(hub)
//
//	srv := devtools.NewServer(hub, devtools.WithAddr(":9229"))
//	go srv.Start(ctx)
package devtools

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flare-dev/flare/pkg/flare"
)

// EventType identifies a runtime event streamed to inspector clients.
type EventType string

const (
	EventSignalWrite EventType = "signal_write"
	EventEffectRun   EventType = "effect_run"
	EventBatchFlush  EventType = "batch_flush"
	EventCycleAbort  EventType = "cycle_abort"
	EventWatchFire   EventType = "watch_fire"
)

// Event is a single runtime event as sent over the WebSocket stream.
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`

	// DurationMS is set for effect_run events.
	DurationMS float64 `json:"duration_ms,omitempty"`

	// Size is set for batch_flush events.
	Size int `json:"size,omitempty"`
}

// Stats is a point-in-time counter snapshot served by /api/stats.
type Stats struct {
	SignalWrites uint64 `json:"signal_writes"`
	EffectRuns   uint64 `json:"effect_runs"`
	BatchFlushes uint64 `json:"batch_flushes"`
	CycleAborts  uint64 `json:"cycle_aborts"`
	WatchFires   uint64 `json:"watch_fires"`
	Clients      int    `json:"clients"`
}

// clientBuffer is the per-client event queue depth. Slow clients drop
// events rather than block the runtime.
const clientBuffer = 256

// Hub counts runtime events and fans them out to subscribers.
type Hub struct {
	signalWrites atomic.Uint64
	effectRuns   atomic.Uint64
	batchFlushes atomic.Uint64
	cycleAborts  atomic.Uint64
	watchFires   atomic.Uint64

	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[chan []byte]struct{}),
	}
}

var _ flare.Recorder = (*Hub)(nil)

// SignalWrite implements flare.Recorder.
func (h *Hub) SignalWrite() {
	h.signalWrites.Add(1)
	h.broadcast(Event{Type: EventSignalWrite, At: time.Now()})
}

// EffectRun implements flare.Recorder.
func (h *Hub) EffectRun(d time.Duration) {
	h.effectRuns.Add(1)
	h.broadcast(Event{
		Type:       EventEffectRun,
		At:         time.Now(),
		DurationMS: float64(d.Microseconds()) / 1000,
	})
}

// BatchFlush implements flare.Recorder.
func (h *Hub) BatchFlush(size int) {
	h.batchFlushes.Add(1)
	h.broadcast(Event{Type: EventBatchFlush, At: time.Now(), Size: size})
}

// CycleAborted implements flare.Recorder.
func (h *Hub) CycleAborted() {
	h.cycleAborts.Add(1)
	h.broadcast(Event{Type: EventCycleAbort, At: time.Now()})
}

// WatchFire implements flare.Recorder.
func (h *Hub) WatchFire() {
	h.watchFires.Add(1)
	h.broadcast(Event{Type: EventWatchFire, At: time.Now()})
}

// Stats returns the current counter values.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	clients := len(h.clients)
	h.mu.RUnlock()

	return Stats{
		SignalWrites: h.signalWrites.Load(),
		EffectRuns:   h.effectRuns.Load(),
		BatchFlushes: h.batchFlushes.Load(),
		CycleAborts:  h.cycleAborts.Load(),
		WatchFires:   h.watchFires.Load(),
		Clients:      clients,
	}
}

// subscribe registers a new event stream and returns its channel plus
// an unsubscribe function.
func (h *Hub) subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	once := sync.Once{}
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// broadcast sends an event to every subscriber. Events for clients
// with a full buffer are dropped.
func (h *Hub) broadcast(ev Event) {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}

	msg, err := json.Marshal(ev)
	if err != nil {
		h.mu.RUnlock()
		return
	}

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
	h.mu.RUnlock()
}
