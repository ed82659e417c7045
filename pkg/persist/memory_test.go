package persist

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreSaveLoadDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Load(ctx, "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Save(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("load=%s, want stored payload", got)
	}
	if store.Len() != 1 {
		t.Fatalf("len=%d, want 1", store.Len())
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete of missing key should be nil, got %v", err)
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	buf := []byte("original")
	if err := store.Save(ctx, "k", buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	buf[0] = 'X'

	got, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("stored data mutated through caller slice: %s", got)
	}

	got[0] = 'Y'
	again, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(again) != "original" {
		t.Fatalf("stored data mutated through loaded slice: %s", again)
	}
}
