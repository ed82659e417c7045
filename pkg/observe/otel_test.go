package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/flare-dev/flare/pkg/flare"
)

func TestSpanTx_RunsBodyInsideBatch(t *testing.T) {
	tracer := NewTracer(
		WithTracerName("observe-test"),
		WithSpanAttributes(attribute.String("test.suite", "observe")),
	)

	dispose := flare.Root(func() {
		a := flare.NewSignal(1)
		b := flare.NewSignal(2)

		runs := 0
		flare.CreateEffect(func() flare.Cleanup {
			_ = a.Get() + b.Get()
			runs++
			return nil
		})

		tracer.SpanTx(context.Background(), "update-both", func() {
			a.Set(10)
			b.Set(20)
		})

		if runs != 2 {
			t.Fatalf("expected 2 effect runs (initial + one flush), got %d", runs)
		}
		if a.Peek() != 10 || b.Peek() != 20 {
			t.Fatalf("expected values 10/20, got %d/%d", a.Peek(), b.Peek())
		}
	})
	defer dispose()
}

func TestSpanTx_PanicPropagates(t *testing.T) {
	tracer := NewTracer()
	boom := errors.New("boom")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to propagate through SpanTx")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, boom) {
			t.Fatalf("expected original panic value, got %v", r)
		}
	}()

	tracer.SpanTx(context.Background(), "failing", func() {
		panic(boom)
	})
}
