package flare

import "testing"

func TestMemoBasic(t *testing.T) {
	count := NewSignal(2)
	computes := 0

	doubled := NewMemo(func() int {
		computes++
		return count.Get() * 2
	})

	// Lazy: no compute until first read
	if computes != 0 {
		t.Fatalf("memo computed eagerly: computes = %d", computes)
	}

	if got := doubled.Get(); got != 4 {
		t.Errorf("memo value = %d, want 4", got)
	}
	if computes != 1 {
		t.Errorf("computes = %d, want 1", computes)
	}

	// Cached: repeated reads don't recompute
	_ = doubled.Get()
	_ = doubled.Peek()
	if computes != 1 {
		t.Errorf("cached reads recomputed: computes = %d", computes)
	}
}

func TestMemoInvalidation(t *testing.T) {
	count := NewSignal(1)
	computes := 0

	doubled := NewMemo(func() int {
		computes++
		return count.Get() * 2
	})

	if got := doubled.Get(); got != 2 {
		t.Fatalf("memo value = %d, want 2", got)
	}

	count.Set(5)

	// Recompute happens on the next read, not at write time
	if computes != 1 {
		t.Errorf("memo recomputed at write time: computes = %d", computes)
	}
	if got := doubled.Get(); got != 10 {
		t.Errorf("memo value = %d, want 10", got)
	}
	if computes != 2 {
		t.Errorf("computes = %d, want 2", computes)
	}
}

func TestMemoSingleRecomputeForMultipleWrites(t *testing.T) {
	count := NewSignal(0)
	computes := 0

	m := NewMemo(func() int {
		computes++
		return count.Get()
	})
	_ = m.Get()

	count.Set(1)
	count.Set(2)
	count.Set(3)

	if got := m.Get(); got != 3 {
		t.Errorf("memo value = %d, want 3", got)
	}
	if computes != 2 {
		t.Errorf("computes = %d, want 2 (initial + one lazy recompute)", computes)
	}
}

func TestMemoChain(t *testing.T) {
	count := NewSignal(1)
	doubled := NewMemo(func() int { return count.Get() * 2 })
	quadrupled := NewMemo(func() int { return doubled.Get() * 2 })

	if got := quadrupled.Get(); got != 4 {
		t.Fatalf("chained memo = %d, want 4", got)
	}

	count.Set(3)
	if got := quadrupled.Get(); got != 12 {
		t.Errorf("chained memo after write = %d, want 12", got)
	}
}

func TestMemoAsEffectDependency(t *testing.T) {
	count := NewSignal(1)
	doubled := NewMemo(func() int { return count.Get() * 2 })

	var seen []int
	e := CreateEffect(func() Cleanup {
		seen = append(seen, doubled.Get())
		return nil
	})
	defer e.Dispose()

	count.Set(4)

	if len(seen) != 2 || seen[1] != 8 {
		t.Errorf("seen = %v, want [2 8]", seen)
	}
}

func TestMemoDependencyPruning(t *testing.T) {
	useB := NewSignal(true)
	b := NewSignal(0)
	computes := 0

	m := NewMemo(func() int {
		computes++
		if useB.Get() {
			return b.Get()
		}
		return -1
	})
	_ = m.Get()

	useB.Set(false)
	if got := m.Get(); got != -1 {
		t.Fatalf("memo = %d, want -1", got)
	}
	before := computes

	// b is no longer a dependency; writes must not invalidate.
	b.Set(1)
	_ = m.Get()
	if computes != before {
		t.Errorf("memo recomputed on pruned dependency: computes = %d, want %d", computes, before)
	}
}

func TestMemoEqualValueStopsPropagation(t *testing.T) {
	count := NewSignal(1)
	magnitude := NewMemo(func() int {
		v := count.Get()
		if v < 0 {
			return -v
		}
		return v
	})

	runs := 0
	e := CreateEffect(func() Cleanup {
		_ = magnitude.Get()
		runs++
		return nil
	})
	defer e.Dispose()

	if runs != 1 {
		t.Fatalf("initial runs = %d, want 1", runs)
	}

	// |-1| == |1|: the memo recomputes but downstream must not re-run.
	count.Set(-1)
	if runs != 1 {
		t.Errorf("runs after equal recompute = %d, want 1", runs)
	}
	if got := magnitude.Peek(); got != 1 {
		t.Errorf("magnitude = %d, want 1", got)
	}

	count.Set(3)
	if runs != 2 {
		t.Errorf("runs after changed recompute = %d, want 2", runs)
	}
}

func TestMemoWithEqualsSuppressesDownstream(t *testing.T) {
	count := NewSignal(0)
	frozen := NewMemo(func() int { return count.Get() }).
		WithEquals(func(a, b int) bool { return true })

	runs := 0
	e := CreateEffect(func() Cleanup {
		_ = frozen.Get()
		runs++
		return nil
	})
	defer e.Dispose()

	count.Set(1)
	count.Set(2)

	if runs != 1 {
		t.Errorf("runs = %d, want 1 (custom equality reports no change)", runs)
	}
}
