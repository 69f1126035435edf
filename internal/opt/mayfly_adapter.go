package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/boxtune/internal/objective"
)

func init() {
	Register("mayfly", func(cfg Config) (Solver, error) {
		return NewMayfly(cfg)
	})
}

// MayflySolver wraps the external Mayfly library to conform to our Solver
// interface.
type MayflySolver struct {
	names    []string
	box      objective.Box
	popSize  int
	maxIters int
	seed     int64
}

// MayflyReport summarizes a completed mayfly run.
type MayflyReport struct {
	Population int     `json:"population"`
	Iterations int     `json:"iterations"`
	BestScore  float64 `json:"bestScore"`
}

// signalPanic carries a wrapper signal out of the external library, whose
// objective callback has no error channel. It never escapes Optimize.
type signalPanic struct {
	err error
}

// NewMayfly sizes the external optimizer from cfg.NumEvals the same way the
// swarm does: up to 10 mayflies, iterations = budget / population.
func NewMayfly(cfg Config) (*MayflySolver, error) {
	if len(cfg.Box) == 0 {
		return nil, fmt.Errorf("mayfly requires box constraints")
	}
	if cfg.NumEvals <= 0 {
		return nil, fmt.Errorf("mayfly requires a positive evaluation budget")
	}

	popSize := 10
	if cfg.NumEvals < popSize {
		popSize = cfg.NumEvals
	}
	maxIters := cfg.NumEvals / popSize
	if maxIters < 1 {
		maxIters = 1
	}

	return &MayflySolver{
		names:    cfg.Box.Names(),
		box:      cfg.Box,
		popSize:  popSize,
		maxIters: maxIters,
		seed:     cfg.Seed,
	}, nil
}

func (m *MayflySolver) Name() string { return "mayfly" }

// Resumable: the library is seeded and the wrapper replays logged points, so
// a restarted run retraces its trajectory.
func (m *MayflySolver) Resumable() bool { return true }

// Optimize runs the external Mayfly optimization. The library evaluates
// strictly sequentially, so pmap is unused here.
func (m *MayflySolver) Optimize(w *objective.Wrapper, maximize bool, pmap MapFunc) (point objective.Point, report any, err error) {
	// The library's ObjectiveFunc returns a bare float64, so budget and
	// checkpoint signals unwind through a recovered panic instead.
	defer func() {
		if r := recover(); r != nil {
			sp, ok := r.(signalPanic)
			if !ok {
				panic(r)
			}
			point, report = nil, nil
			err = sp.err
		}
	}()

	// The library minimizes; maximization negates the score.
	sign := 1.0
	if maximize {
		sign = -1.0
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(x []float64) float64 {
		score, cerr := w.Call(pointFromVector(m.names, x))
		if cerr != nil {
			panic(signalPanic{err: cerr})
		}
		return sign * score
	}
	config.ProblemSize = len(m.names)
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.Rand = rand.New(rand.NewSource(m.seed))

	// The external library uses scalar bounds shared by all dimensions.
	lower, upper := m.box.Bounds()
	config.LowerBound = lower[0]
	config.UpperBound = upper[0]

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, nil, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	best := pointFromVector(m.names, result.GlobalBest.Position)
	return best, MayflyReport{
		Population: m.popSize,
		Iterations: m.maxIters,
		BestScore:  sign * result.GlobalBest.Cost,
	}, nil
}
