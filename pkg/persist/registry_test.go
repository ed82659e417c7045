package persist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/flare-dev/flare/pkg/flare"
)

type editorPrefs struct {
	Theme    string `json:"theme"`
	FontSize int    `json:"font_size"`
}

func TestRegistryRegisterValidation(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(flare.NewSignal(0)); !errors.Is(err, ErrNoPersistKey) {
		t.Fatalf("expected ErrNoPersistKey, got %v", err)
	}

	busy := flare.NewSignal(false, flare.Transient(), flare.PersistKey("busy"))
	if err := reg.Register(busy); !errors.Is(err, ErrTransientSignal) {
		t.Fatalf("expected ErrTransientSignal, got %v", err)
	}

	a := flare.NewSignal(1, flare.PersistKey("count"))
	b := flare.NewSignal(2, flare.PersistKey("count"))
	if err := reg.Register(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register(b); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	if reg.Len() != 1 {
		t.Fatalf("expected 1 registered signal, got %d", reg.Len())
	}
}

func TestRegistrySnapshotRestoreRoundTrip(t *testing.T) {
	reg := NewRegistry()

	count := flare.NewSignal(42, flare.PersistKey("count"))
	name := flare.NewSignal("ada", flare.PersistKey("name"))
	prefs := flare.NewSignal(editorPrefs{Theme: "dark", FontSize: 14}, flare.PersistKey("prefs"))

	for _, sig := range []flare.PersistableSignal{count, name, prefs} {
		if err := reg.Register(sig); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	data, err := reg.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	count.Set(0)
	name.Set("")
	prefs.Set(editorPrefs{})

	if err := reg.Restore(data); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if got := count.Peek(); got != 42 {
		t.Fatalf("count=%d, want 42", got)
	}
	if got := name.Peek(); got != "ada" {
		t.Fatalf("name=%q, want %q", got, "ada")
	}
	if got := prefs.Peek(); got != (editorPrefs{Theme: "dark", FontSize: 14}) {
		t.Fatalf("prefs=%+v, want restored struct", got)
	}
}

func TestRegistryRestoreBatchesWrites(t *testing.T) {
	reg := NewRegistry()

	first := flare.NewSignal(1, flare.PersistKey("first"))
	second := flare.NewSignal(2, flare.PersistKey("second"))
	if err := reg.Register(first); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(second); err != nil {
		t.Fatalf("register: %v", err)
	}

	data, err := reg.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	first.Set(10)
	second.Set(20)

	runs := 0
	flare.CreateEffect(func() flare.Cleanup {
		_ = first.Get() + second.Get()
		runs++
		return nil
	})
	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	if err := reg.Restore(data); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if runs != 2 {
		t.Fatalf("expected one run for the whole restore, got %d total", runs)
	}
}

func TestRegistryRestoreSkipsUnknownKeys(t *testing.T) {
	reg := NewRegistry()
	count := flare.NewSignal(5, flare.PersistKey("count"))
	if err := reg.Register(count); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := reg.Restore([]byte(`{"count": 9, "vanished": "x"}`)); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := count.Peek(); got != 9 {
		t.Fatalf("count=%d, want 9", got)
	}
}

func TestRegistryRestoreTypeMismatch(t *testing.T) {
	reg := NewRegistry()
	count := flare.NewSignal(5, flare.PersistKey("count"))
	if err := reg.Register(count); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := reg.Restore([]byte(`{"count": "not a number"}`))
	if err == nil {
		t.Fatal("expected restore error for mismatched value type")
	}
	if !strings.Contains(err.Error(), `"count"`) {
		t.Fatalf("expected error to name the failing key, got %v", err)
	}
	if got := count.Peek(); got != 5 {
		t.Fatalf("count=%d, want unchanged 5", got)
	}
}

func TestRegistrySaveToLoadFrom(t *testing.T) {
	reg := NewRegistry()
	theme := flare.NewSignal("light", flare.PersistKey("theme"))
	if err := reg.Register(theme); err != nil {
		t.Fatalf("register: %v", err)
	}

	store := NewMemoryStore()
	ctx := context.Background()

	if err := reg.SaveTo(ctx, store, "session-1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	theme.Set("dark")
	if err := reg.LoadFrom(ctx, store, "session-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := theme.Peek(); got != "light" {
		t.Fatalf("theme=%q, want %q", got, "light")
	}

	if err := reg.LoadFrom(ctx, store, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistryKeysSorted(t *testing.T) {
	reg := NewRegistry()
	for _, key := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Register(flare.NewSignal(0, flare.PersistKey(key))); err != nil {
			t.Fatalf("register %q: %v", key, err)
		}
	}

	keys := reg.Keys()
	want := []string{"alpha", "mid", "zeta"}
	if len(keys) != len(want) {
		t.Fatalf("keys=%v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys=%v, want %v", keys, want)
		}
	}
}
