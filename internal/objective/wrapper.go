package objective

import (
	"fmt"
	"log/slog"
)

// Func is a raw objective: maps a point to a score. It must be a pure
// function of its input for checkpoint-resume correctness to hold, because
// already-logged points are replayed from the log without re-invoking it.
type Func func(Point) (float64, error)

// Wrapper decorates a raw objective with evaluation counting, a hard
// evaluation ceiling and the periodic checkpoint signal. Every fresh
// evaluation is appended to the owned call log.
//
// Wrapper is the single source of truth for budget accounting: solvers are
// opaque and may propose points in batches, so the ceiling is enforced here,
// interrupting an in-flight solver invocation deterministically.
//
// Not safe for concurrent use. Parallel evaluation strategies must funnel
// results through Call one at a time.
type Wrapper struct {
	fn      Func
	log     *CallLog
	count   int
	ceiling int // <= 0 means unbounded
}

// NewWrapper wraps fn with the given effective ceiling (see
// EffectiveCeiling) and an empty call log.
func NewWrapper(fn Func, ceiling int) *Wrapper {
	return &Wrapper{
		fn:      fn,
		log:     NewCallLog(),
		ceiling: ceiling,
	}
}

// RestoreWrapper rebuilds a wrapper from checkpointed state: the counter
// starts at consumed and the call log is seeded by replaying entries in
// their stored order.
func RestoreWrapper(fn Func, ceiling int, entries []Entry, consumed int) *Wrapper {
	w := NewWrapper(fn, ceiling)
	for _, e := range entries {
		w.log.Insert(e.Point, e.Score)
	}
	w.count = consumed
	return w
}

// Call evaluates the objective at p.
//
// Already-logged points return their cached score without spending budget;
// this is what lets a re-invoked solver fast-forward through work done
// before a checkpoint or restart.
//
// A fresh evaluation increments the counter and appends to the log. Two
// control-flow signals can accompany the result:
//   - ErrCheckpointDue after every evaluation landing on the cadence
//     boundary; the returned score is valid and logged.
//   - BudgetExhaustedError once the counter has reached the ceiling; no
//     evaluation is performed.
func (w *Wrapper) Call(p Point) (float64, error) {
	if score, err := w.log.Get(p); err == nil {
		return score, nil
	}

	if w.ceiling > 0 && w.count >= w.ceiling {
		return 0, &BudgetExhaustedError{Ceiling: w.ceiling}
	}

	score, err := w.fn(p)
	if err != nil {
		return 0, fmt.Errorf("objective evaluation failed: %w", err)
	}

	w.count++
	w.log.Insert(p, score)
	slog.Debug("Evaluated point", "point", p.Key(), "score", score, "evals", w.count)

	if w.count%CheckpointCadence == 0 {
		return score, ErrCheckpointDue
	}
	return score, nil
}

// NumEvals returns the number of evaluations counted so far, including any
// restored from a checkpoint.
func (w *Wrapper) NumEvals() int {
	return w.count
}

// Ceiling returns the effective evaluation ceiling (<= 0 means unbounded).
func (w *Wrapper) Ceiling() int {
	return w.ceiling
}

// Remaining returns how many evaluations the ceiling still permits.
// Unbounded wrappers return -1.
func (w *Wrapper) Remaining() int {
	if w.ceiling <= 0 {
		return -1
	}
	if r := w.ceiling - w.count; r > 0 {
		return r
	}
	return 0
}

// Log returns the wrapper's call log. The log is owned by the wrapper for
// the duration of a run and must be treated as read-only by callers.
func (w *Wrapper) Log() *CallLog {
	return w.log
}
