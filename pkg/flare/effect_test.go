package flare

import (
	"errors"
	"testing"
)

func TestEffectRunsImmediately(t *testing.T) {
	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		return nil
	})
	defer e.Dispose()

	if runs != 1 {
		t.Errorf("effect runs = %d, want 1", runs)
	}
}

func TestEffectRerunsOnChange(t *testing.T) {
	count := NewSignal(0)
	runs := 0
	var seen int

	e := CreateEffect(func() Cleanup {
		seen = count.Get()
		runs++
		return nil
	})
	defer e.Dispose()

	count.Set(7)

	if runs != 2 {
		t.Errorf("effect runs = %d, want 2", runs)
	}
	if seen != 7 {
		t.Errorf("effect observed %d, want 7", seen)
	}
}

func TestEffectRunsSynchronouslyBeforeSetReturns(t *testing.T) {
	count := NewSignal(0)
	var observed []int

	e := CreateEffect(func() Cleanup {
		observed = append(observed, count.Get())
		return nil
	})
	defer e.Dispose()

	count.Set(1)
	// The re-run happens inside Set, so the slice is updated here.
	if len(observed) != 2 || observed[1] != 1 {
		t.Errorf("observed = %v, want [0 1]", observed)
	}
}

func TestEffectSingleRunThroughMultiplePaths(t *testing.T) {
	// Effect depends on the same signal directly and through a memo.
	count := NewSignal(1)
	doubled := NewMemo(func() int { return count.Get() * 2 })

	runs := 0
	e := CreateEffect(func() Cleanup {
		_ = count.Get()
		_ = doubled.Get()
		runs++
		return nil
	})
	defer e.Dispose()

	if runs != 1 {
		t.Fatalf("initial runs = %d, want 1", runs)
	}

	count.Set(2)
	if runs != 2 {
		t.Errorf("runs after one write = %d, want 2 (exactly one re-run)", runs)
	}
}

func TestEffectCleanupBeforeRerunAndOnDispose(t *testing.T) {
	count := NewSignal(0)
	var order []string

	e := CreateEffect(func() Cleanup {
		v := count.Get()
		order = append(order, "run")
		return func() {
			order = append(order, "cleanup")
			_ = v
		}
	})

	count.Set(1)
	e.Dispose()

	want := []string{"run", "cleanup", "run", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestEffectDisposedStopsNotifications(t *testing.T) {
	count := NewSignal(0)
	runs := 0

	e := CreateEffect(func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	})

	e.Dispose()
	count.Set(1)

	if runs != 1 {
		t.Errorf("disposed effect re-ran: runs = %d, want 1", runs)
	}
	if !e.IsDisposed() {
		t.Error("IsDisposed() = false after Dispose")
	}
}

func TestEffectDependencyPruning(t *testing.T) {
	useB := NewSignal(true)
	b := NewSignal(0)
	runs := 0

	e := CreateEffect(func() Cleanup {
		if useB.Get() {
			_ = b.Get()
		}
		runs++
		return nil
	})
	defer e.Dispose()

	if runs != 1 {
		t.Fatalf("initial runs = %d, want 1", runs)
	}

	// While useB is true, b changes re-run the effect.
	b.Set(1)
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}

	// Flip the condition; the next run rebuilds the dependency set
	// without b.
	useB.Set(false)
	if runs != 3 {
		t.Fatalf("runs = %d, want 3", runs)
	}

	b.Set(2)
	b.Set(3)
	if runs != 3 {
		t.Errorf("effect re-ran on pruned dependency: runs = %d, want 3", runs)
	}
}

func TestEffectWriteDuringRunDefersToNextRound(t *testing.T) {
	a := NewSignal(1)
	b := NewSignal(0)

	e := CreateEffect(func() Cleanup {
		b.Set(a.Get() * 2)
		return nil
	})
	defer e.Dispose()

	if got := b.Get(); got != 2 {
		t.Errorf("b = %d, want 2", got)
	}

	a.Set(3)
	if got := b.Get(); got != 6 {
		t.Errorf("b after write = %d, want 6", got)
	}
}

func TestEffectCycleDetected(t *testing.T) {
	count := NewSignal(0)

	var e *Effect
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("self-triggering effect should panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrCycleDetected) {
			t.Fatalf("panic = %v, want ErrCycleDetected", r)
		}
		if e != nil {
			e.Dispose()
		}
	}()

	// Reads and writes the same signal: unbounded self-triggering.
	e = CreateEffect(func() Cleanup {
		count.Set(count.Get() + 1)
		return nil
	})
}

func TestEffectPanicSurfacesAndExcludes(t *testing.T) {
	count := NewSignal(0)
	runs := 0

	e := CreateEffect(func() Cleanup {
		if count.Get() > 0 {
			panic("boom")
		}
		runs++
		return nil
	})
	defer e.Dispose()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("panic in effect should surface to the Set caller")
			}
		}()
		count.Set(1)
	}()

	if !e.Failed() {
		t.Fatal("Failed() = false after panicking run")
	}

	// Failed effects are excluded from scheduling.
	count.Set(2)
	if runs != 1 {
		t.Errorf("failed effect re-ran: runs = %d, want 1", runs)
	}

	// Unrelated signals keep propagating.
	other := NewSignal(0)
	otherRuns := 0
	e2 := CreateEffect(func() Cleanup {
		_ = other.Get()
		otherRuns++
		return nil
	})
	defer e2.Dispose()
	other.Set(1)
	if otherRuns != 2 {
		t.Errorf("unrelated effect runs = %d, want 2", otherRuns)
	}
}

func TestEffectPanicDoesNotStarveSameFlush(t *testing.T) {
	count := NewSignal(0)

	e1 := CreateEffect(func() Cleanup {
		if count.Get() > 0 {
			panic("boom")
		}
		return nil
	})
	defer e1.Dispose()

	otherRuns := 0
	e2 := CreateEffect(func() Cleanup {
		_ = count.Get()
		otherRuns++
		return nil
	})
	defer e2.Dispose()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("panic in effect should surface to the Set caller")
			}
		}()
		count.Set(1)
	}()

	// The sibling effect queued in the same flush still ran.
	if otherRuns != 2 {
		t.Errorf("sibling effect runs = %d, want 2", otherRuns)
	}
	if !e1.Failed() {
		t.Error("panicking effect should be latched failed")
	}
	if e2.Failed() {
		t.Error("sibling effect should not be failed")
	}
}

func TestEffectResetRearms(t *testing.T) {
	count := NewSignal(0)
	failNext := NewSignal(false, Transient())
	runs := 0

	e := CreateEffect(func() Cleanup {
		_ = count.Get()
		if failNext.Peek() {
			panic("boom")
		}
		runs++
		return nil
	})
	defer e.Dispose()

	failNext.Set(true)
	func() {
		defer func() { _ = recover() }()
		count.Set(1)
	}()
	if !e.Failed() {
		t.Fatal("effect should be failed after panic")
	}

	failNext.Set(false)
	e.Reset()
	if e.Failed() {
		t.Fatal("Failed() = true after Reset")
	}
	if runs != 2 {
		t.Fatalf("runs after Reset = %d, want 2", runs)
	}

	count.Set(2)
	if runs != 3 {
		t.Errorf("reset effect should re-run on changes: runs = %d, want 3", runs)
	}
}

func TestOnMountRunsOnce(t *testing.T) {
	count := NewSignal(0)
	runs := 0

	OnMount(func() {
		// Reads here are untracked.
		_ = count.Get()
		runs++
	})

	count.Set(1)
	if runs != 1 {
		t.Errorf("OnMount runs = %d, want 1", runs)
	}
}

func TestOnUpdateSkipsFirstRun(t *testing.T) {
	count := NewSignal(0)
	calls := 0

	e := OnUpdate(
		func() { _ = count.Get() },
		func() { calls++ },
	)
	defer e.Dispose()

	if calls != 0 {
		t.Fatalf("callback ran on the initial evaluation: calls = %d", calls)
	}

	count.Set(1)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEffectName(t *testing.T) {
	e := CreateEffect(func() Cleanup { return nil }, EffectName("ticker"))
	defer e.Dispose()

	if got := e.Name(); got != "ticker" {
		t.Errorf("Name() = %q, want %q", got, "ticker")
	}
}
