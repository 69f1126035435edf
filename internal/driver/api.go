package driver

import (
	"fmt"
	"math"

	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/opt"
	"github.com/cwbudde/boxtune/internal/space"
	"github.com/cwbudde/boxtune/internal/store"
)

// DefaultNumEvals is the budget used by the convenience entry points when
// the caller does not request one and no checkpoint supplies it.
const DefaultNumEvals = 50

// RunConfig configures the convenience entry points, which pick a solver
// from the budget and box instead of taking a constructed one.
type RunConfig struct {
	NumEvals    int
	SolverName  string // empty selects the default solver
	Seed        int64
	PMap        opt.MapFunc
	SaveDir     string
	RestorePath string
	Confirm     func() bool
}

// Maximize searches for the maximum of fn within the given box constraints.
// Out-of-box points are defaulted to the worst possible score without
// invoking fn.
func Maximize(fn objective.Func, box objective.Box, cfg RunConfig) (*Result, error) {
	return optimizeBox(fn, box, cfg, true)
}

// Minimize searches for the minimum of fn within the given box constraints.
func Minimize(fn objective.Func, box objective.Box, cfg RunConfig) (*Result, error) {
	return optimizeBox(fn, box, cfg, false)
}

func optimizeBox(fn objective.Func, box objective.Box, cfg RunConfig, maximize bool) (*Result, error) {
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	def := math.MaxFloat64
	if maximize {
		def = -math.MaxFloat64
	}
	wrapped := objective.WrapBoxConstraints(fn, box, def)

	numEvals, err := resolveBudget(cfg)
	if err != nil {
		return nil, err
	}

	solver, err := opt.Suggest(cfg.SolverName, numEvals, box, cfg.Seed)
	if err != nil {
		return nil, err
	}

	maxEvals := cfg.NumEvals
	if maxEvals == 0 && cfg.RestorePath == "" {
		maxEvals = numEvals
	}

	d, err := New(Config{
		Solver:      solver,
		Maximize:    maximize,
		MaxEvals:    maxEvals,
		PMap:        cfg.PMap,
		SaveDir:     cfg.SaveDir,
		RestorePath: cfg.RestorePath,
		Confirm:     cfg.Confirm,
	})
	if err != nil {
		return nil, err
	}
	return d.Optimize(wrapped)
}

// MaximizeStructured searches a structured (nested, conditional) space for
// the maximum of fn. fn receives the decoded structured solution; the final
// result carries it in Decoded.
func MaximizeStructured(fn func(space.Solution) (float64, error), s space.Space, cfg RunConfig) (*Result, error) {
	return optimizeStructured(fn, s, cfg, true)
}

// MinimizeStructured searches a structured space for the minimum of fn.
func MinimizeStructured(fn func(space.Solution) (float64, error), s space.Space, cfg RunConfig) (*Result, error) {
	return optimizeStructured(fn, s, cfg, false)
}

func optimizeStructured(fn func(space.Solution) (float64, error), s space.Space, cfg RunConfig, maximize bool) (*Result, error) {
	tree, err := space.NewTree(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	box := tree.ToBox()

	decoded := func(p objective.Point) (float64, error) {
		sol, err := tree.Decode(p)
		if err != nil {
			return 0, err
		}
		return fn(sol)
	}

	def := math.MaxFloat64
	if maximize {
		def = -math.MaxFloat64
	}
	wrapped := objective.WrapBoxConstraints(decoded, box, def)

	numEvals, err := resolveBudget(cfg)
	if err != nil {
		return nil, err
	}

	solver, err := opt.Suggest(cfg.SolverName, numEvals, box, cfg.Seed)
	if err != nil {
		return nil, err
	}

	maxEvals := cfg.NumEvals
	if maxEvals == 0 && cfg.RestorePath == "" {
		maxEvals = numEvals
	}

	d, err := New(Config{
		Solver:      solver,
		Maximize:    maximize,
		MaxEvals:    maxEvals,
		PMap:        cfg.PMap,
		Decoder:     tree.DecodeAny,
		SaveDir:     cfg.SaveDir,
		RestorePath: cfg.RestorePath,
		Confirm:     cfg.Confirm,
	})
	if err != nil {
		return nil, err
	}
	return d.Optimize(wrapped)
}

// resolveBudget determines the budget the solver suggestion should be sized
// for. A zero budget means DefaultNumEvals on a fresh run, or the stored
// budget when restoring.
func resolveBudget(cfg RunConfig) (int, error) {
	if cfg.NumEvals < 0 {
		return 0, fmt.Errorf("%w: negative evaluation budget %d", ErrInvalidConfig, cfg.NumEvals)
	}
	if cfg.NumEvals > 0 {
		return cfg.NumEvals, nil
	}
	if cfg.RestorePath != "" {
		record, err := store.LoadCheckpointFile(cfg.RestorePath)
		if err != nil {
			return 0, err
		}
		if record.MaxEvals > 0 {
			return record.MaxEvals, nil
		}
	}
	return DefaultNumEvals, nil
}
