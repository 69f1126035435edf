package objective

import (
	"errors"
	"fmt"
	"testing"
)

// countingFunc returns a quadratic objective that records how often the raw
// function is actually invoked.
func countingFunc() (Func, *int) {
	calls := 0
	fn := func(p Point) (float64, error) {
		calls++
		return p["x"] * p["x"], nil
	}
	return fn, &calls
}

func TestWrapperCountsEvaluations(t *testing.T) {
	fn, calls := countingFunc()
	w := NewWrapper(fn, EffectiveCeiling(10))

	if _, err := w.Call(Point{"x": 1}); err != nil {
		t.Fatalf("first evaluation failed: %v", err)
	}
	if w.NumEvals() != 1 || *calls != 1 {
		t.Errorf("expected 1 evaluation, got count=%d calls=%d", w.NumEvals(), *calls)
	}
}

func TestWrapperCheckpointCadence(t *testing.T) {
	fn, _ := countingFunc()
	w := NewWrapper(fn, EffectiveCeiling(10))

	for i := 1; i <= 6; i++ {
		score, err := w.Call(Point{"x": float64(i)})
		if i%CheckpointCadence == 0 {
			if !errors.Is(err, ErrCheckpointDue) {
				t.Errorf("evaluation %d: expected checkpoint signal, got %v", i, err)
			}
			if score != float64(i*i) {
				t.Errorf("evaluation %d: score must stay valid alongside the signal, got %g", i, score)
			}
		} else if err != nil {
			t.Errorf("evaluation %d: unexpected error %v", i, err)
		}
	}
}

func TestWrapperMemoizedReplay(t *testing.T) {
	fn, calls := countingFunc()
	w := NewWrapper(fn, EffectiveCeiling(10))

	if _, err := w.Call(Point{"x": 2}); err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	score, err := w.Call(Point{"x": 2})
	if err != nil {
		t.Fatalf("cached call returned error: %v", err)
	}
	if score != 4 {
		t.Errorf("cached score mismatch: got %g", score)
	}
	if *calls != 1 {
		t.Errorf("cached call re-invoked the objective: %d calls", *calls)
	}
	if w.NumEvals() != 1 {
		t.Errorf("cached call spent budget: count=%d", w.NumEvals())
	}
}

func TestWrapperBudgetExhausted(t *testing.T) {
	fn, _ := countingFunc()
	w := NewWrapper(fn, 3)

	for i := 1; i <= 3; i++ {
		if _, err := w.Call(Point{"x": float64(i)}); err != nil && !errors.Is(err, ErrCheckpointDue) {
			t.Fatalf("evaluation %d failed: %v", i, err)
		}
	}

	_, err := w.Call(Point{"x": 99})
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected budget exhaustion, got %v", err)
	}
	var exhausted *BudgetExhaustedError
	if !errors.As(err, &exhausted) || exhausted.Ceiling != 3 {
		t.Errorf("budget error should carry the ceiling, got %v", err)
	}
	if w.NumEvals() != 3 {
		t.Errorf("rejected call changed the count: %d", w.NumEvals())
	}
}

func TestWrapperExhaustedStillServesCache(t *testing.T) {
	fn, _ := countingFunc()
	w := NewWrapper(fn, 1)

	if _, err := w.Call(Point{"x": 5}); err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	score, err := w.Call(Point{"x": 5})
	if err != nil {
		t.Fatalf("cached lookup should survive an exhausted budget: %v", err)
	}
	if score != 25 {
		t.Errorf("cached score mismatch: got %g", score)
	}
}

func TestWrapperUnbounded(t *testing.T) {
	fn, _ := countingFunc()
	w := NewWrapper(fn, EffectiveCeiling(0))

	for i := 1; i <= 100; i++ {
		if _, err := w.Call(Point{"x": float64(i)}); err != nil && !errors.Is(err, ErrCheckpointDue) {
			t.Fatalf("evaluation %d failed: %v", i, err)
		}
	}
	if w.Remaining() != -1 {
		t.Errorf("unbounded wrapper should report -1 remaining, got %d", w.Remaining())
	}
}

func TestWrapperPropagatesObjectiveError(t *testing.T) {
	boom := errors.New("boom")
	w := NewWrapper(func(Point) (float64, error) { return 0, boom }, 10)

	_, err := w.Call(Point{"x": 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped objective error, got %v", err)
	}
	if w.NumEvals() != 0 {
		t.Errorf("failed evaluation spent budget: count=%d", w.NumEvals())
	}
}

func TestRestoreWrapperReplaysLog(t *testing.T) {
	fn, calls := countingFunc()

	entries := []Entry{
		{Point: Point{"x": 1}, Score: 1},
		{Point: Point{"x": 2}, Score: 4},
		{Point: Point{"x": 3}, Score: 9},
		{Point: Point{"x": 4}, Score: 16},
	}
	w := RestoreWrapper(fn, EffectiveCeiling(10), entries, 4)

	if w.NumEvals() != 4 {
		t.Fatalf("expected restored count 4, got %d", w.NumEvals())
	}

	// Replaying logged points must not invoke the objective.
	for _, e := range entries {
		score, err := w.Call(e.Point)
		if err != nil {
			t.Fatalf("replay of %v failed: %v", e.Point, err)
		}
		if score != e.Score {
			t.Errorf("replay of %v returned %g, want %g", e.Point, score, e.Score)
		}
	}
	if *calls != 0 {
		t.Errorf("replay invoked the raw objective %d times", *calls)
	}

	// A fresh point spends budget as usual.
	if _, err := w.Call(Point{"x": 5}); err != nil && !errors.Is(err, ErrCheckpointDue) {
		t.Fatalf("fresh evaluation failed: %v", err)
	}
	if w.NumEvals() != 5 || *calls != 1 {
		t.Errorf("fresh evaluation after restore: count=%d calls=%d", w.NumEvals(), *calls)
	}

	// Restored order must be preserved.
	logged := w.Log().Entries()
	for i, e := range entries {
		if !logged[i].Point.Equal(e.Point) {
			t.Errorf("entry %d out of order: %v", i, logged[i].Point)
		}
	}
}

func TestWrapperRemaining(t *testing.T) {
	fn, _ := countingFunc()
	w := NewWrapper(fn, 3)

	wants := []int{2, 1, 0}
	for i, want := range wants {
		if _, err := w.Call(Point{"x": float64(i)}); err != nil && !errors.Is(err, ErrCheckpointDue) {
			t.Fatalf("evaluation %d failed: %v", i, err)
		}
		if got := w.Remaining(); got != want {
			t.Errorf("after %d evaluations Remaining() = %d, want %d", i+1, got, want)
		}
	}
}

func TestIsSignal(t *testing.T) {
	if !IsSignal(ErrCheckpointDue) {
		t.Error("checkpoint signal not recognized")
	}
	if !IsSignal(&BudgetExhaustedError{Ceiling: 5}) {
		t.Error("budget signal not recognized")
	}
	if IsSignal(fmt.Errorf("plain failure")) {
		t.Error("plain error misclassified as signal")
	}
}
