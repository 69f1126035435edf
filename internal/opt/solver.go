package opt

import (
	"github.com/cwbudde/boxtune/internal/objective"
)

// CallFunc evaluates a single point, typically objective.Wrapper.Call.
type CallFunc func(objective.Point) (float64, error)

// MapFunc is the evaluation-mapping strategy: it evaluates a batch of
// candidate points and returns their scores in order. The first non-nil
// error aborts the batch and must be returned unmodified so the wrapper's
// control-flow signals reach the driver.
//
// The wrapper is a single logical writer: strategies that compute scores in
// parallel must still feed results through call one at a time.
type MapFunc func(points []objective.Point, call CallFunc) ([]float64, error)

// SerialMap evaluates points one after another in the given order.
func SerialMap(points []objective.Point, call CallFunc) ([]float64, error) {
	scores := make([]float64, 0, len(points))
	for _, p := range points {
		score, err := call(p)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// Solver is a pluggable search strategy. Optimize proposes points, evaluates
// them through the wrapper and returns the best solution it found plus an
// optional solver-specific report (opaque to the driver).
//
// Contract: any error returned by the wrapper (or pmap) must be propagated
// unmodified, never swallowed. The driver re-invokes Optimize from scratch
// after every periodic checkpoint, so implementations must be resumable:
// restarted searches fast-forward through already-logged points, which the
// wrapper replays without spending budget. A solver whose trajectory depends
// on anything but its seed and the observed scores must report
// Resumable() == false.
type Solver interface {
	Name() string
	Resumable() bool
	Optimize(w *objective.Wrapper, maximize bool, pmap MapFunc) (objective.Point, any, error)
}

// Config carries the common constructor inputs for registered solvers.
type Config struct {
	// NumEvals is the caller's requested evaluation budget; solvers size
	// their search (grid density, generations, sample count) from it.
	NumEvals int

	// Box holds the parameter bounds the search runs over.
	Box objective.Box

	// Seed makes the search deterministic; resumability depends on it.
	Seed int64
}

// better reports whether score improves on best for the given direction.
func better(score, best float64, maximize bool) bool {
	if maximize {
		return score > best
	}
	return score < best
}

// pointFromVector builds a point from values ordered by sorted name.
func pointFromVector(names []string, x []float64) objective.Point {
	p := make(objective.Point, len(names))
	for i, name := range names {
		p[name] = x[i]
	}
	return p
}
