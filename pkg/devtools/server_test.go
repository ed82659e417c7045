package devtools

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flare-dev/flare/pkg/flare"
	"github.com/flare-dev/flare/pkg/persist"
)

func TestServerStatsEndpoint(t *testing.T) {
	hub := NewHub()
	hub.SignalWrite()
	hub.EffectRun(time.Millisecond)

	srv := NewServer(hub)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.SignalWrites != 1 || stats.EffectRuns != 1 {
		t.Fatalf("stats=%+v, want 1 write and 1 run", stats)
	}
}

func TestServerSignalsEndpoint(t *testing.T) {
	reg := persist.NewRegistry()
	theme := flare.NewSignal("dark", flare.PersistKey("theme"))
	if err := reg.Register(theme); err != nil {
		t.Fatalf("register: %v", err)
	}

	srv := NewServer(NewHub(), WithSignalRegistry(reg))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/signals")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var values map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&values); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := values["theme"]; got != "dark" {
		t.Fatalf("theme=%v, want dark", got)
	}
}

func TestServerSignalsEndpointWithoutRegistry(t *testing.T) {
	srv := NewServer(NewHub())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/signals")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var values map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&values); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("values=%v, want empty object", values)
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "devtools_test_total",
		Help: "test counter",
	})
	reg.MustRegister(counter)
	counter.Inc()

	srv := NewServer(NewHub(), WithGatherer(reg))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), "devtools_test_total 1") {
		t.Fatalf("expected scrape output to contain test counter, got:\n%s", body)
	}
}

func TestServerWebSocketStream(t *testing.T) {
	hub := NewHub()
	srv := NewServer(hub)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the subscription to land before emitting.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Stats().Clients == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BatchFlush(7)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != EventBatchFlush || ev.Size != 7 {
		t.Fatalf("event=%+v, want batch_flush size 7", ev)
	}
}
