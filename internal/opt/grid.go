package opt

import (
	"fmt"
	"math"

	"github.com/cwbudde/boxtune/internal/objective"
)

func init() {
	Register("grid search", func(cfg Config) (Solver, error) {
		return NewGridSearch(cfg)
	})
}

// GridSearch exhaustively evaluates a regular grid over the box. The grid
// density is derived from the requested budget: roughly numEvals^(1/d)
// values per dimension.
type GridSearch struct {
	names  []string
	values [][]float64 // per-name candidate values, parallel to names
}

// GridReport summarizes a completed grid search.
type GridReport struct {
	GridPoints int `json:"gridPoints"`
}

// NewGridSearch builds a grid sized to cfg.NumEvals over cfg.Box.
func NewGridSearch(cfg Config) (*GridSearch, error) {
	if len(cfg.Box) == 0 {
		return nil, fmt.Errorf("grid search requires box constraints")
	}
	names := cfg.Box.Names()

	perDim := 1
	if cfg.NumEvals > 0 {
		perDim = int(math.Floor(math.Pow(float64(cfg.NumEvals), 1/float64(len(names)))))
	}
	if perDim < 1 {
		perDim = 1
	}

	values := make([][]float64, len(names))
	for i, name := range names {
		values[i] = linspace(cfg.Box[name][0], cfg.Box[name][1], perDim)
	}
	return &GridSearch{names: names, values: values}, nil
}

func (g *GridSearch) Name() string { return "grid search" }

// Resumable: the grid is fixed, so a restarted search re-proposes the same
// points in the same order and the wrapper replays logged ones for free.
func (g *GridSearch) Resumable() bool { return true }

// Optimize evaluates every grid point and returns the best one.
func (g *GridSearch) Optimize(w *objective.Wrapper, maximize bool, pmap MapFunc) (objective.Point, any, error) {
	if pmap == nil {
		pmap = SerialMap
	}

	points := g.points()
	scores, err := pmap(points, w.Call)
	if err != nil {
		return nil, nil, err
	}

	bestIdx := 0
	for i, score := range scores {
		if better(score, scores[bestIdx], maximize) {
			bestIdx = i
		}
	}
	return points[bestIdx], GridReport{GridPoints: len(points)}, nil
}

// points enumerates the grid in deterministic order, last name fastest.
func (g *GridSearch) points() []objective.Point {
	total := 1
	for _, vs := range g.values {
		total *= len(vs)
	}

	points := make([]objective.Point, 0, total)
	idx := make([]int, len(g.values))
	for {
		p := make(objective.Point, len(g.names))
		for i, name := range g.names {
			p[name] = g.values[i][idx[i]]
		}
		points = append(points, p)

		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(g.values[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return points
		}
	}
}

// linspace returns n evenly spaced values across [lo, hi]. A single value
// lands on the midpoint.
func linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{(lo + hi) / 2}
	}
	vs := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vs {
		vs[i] = lo + float64(i)*step
	}
	return vs
}
