package driver

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/opt"
	"github.com/cwbudde/boxtune/internal/store"
)

// Config holds everything a run needs besides the raw objective.
type Config struct {
	// Solver proposes points to evaluate. Required, and must be resumable:
	// the driver re-invokes Optimize from scratch after every periodic
	// checkpoint, relying on the wrapper's log replay to skip finished work.
	Solver opt.Solver

	// Maximize selects the optimization direction.
	Maximize bool

	// MaxEvals is the requested evaluation budget. 0 means unbounded on a
	// fresh run, or "use the checkpoint's stored budget" on a restore.
	MaxEvals int

	// PMap is the evaluation-mapping strategy handed to the solver.
	// Defaults to opt.SerialMap.
	PMap opt.MapFunc

	// Decoder, if set, converts the final solution point into its
	// structured form. Applied once, to the final answer only.
	Decoder func(objective.Point) (any, error)

	// SaveDir enables periodic checkpointing into this directory.
	SaveDir string

	// RestorePath seeds the run from a previously saved checkpoint file.
	RestorePath string

	// Confirm is consulted before overwriting an existing checkpoint when
	// no restore was requested. A nil callback declines.
	Confirm func() bool
}

// Driver orchestrates one run: restore, wrap, repeated solver invocation,
// checkpointing and result extraction. The driver itself is sequential;
// the only concurrency knob is the PMap strategy, which must still funnel
// results through the wrapper one at a time.
type Driver struct {
	cfg   Config
	store *store.FSStore // nil when checkpointing is disabled
	pmap  opt.MapFunc
}

// New validates the configuration and prepares a driver.
func New(cfg Config) (*Driver, error) {
	if cfg.Solver == nil {
		return nil, fmt.Errorf("%w: no solver given", ErrInvalidConfig)
	}
	if cfg.MaxEvals < 0 {
		return nil, fmt.Errorf("%w: negative evaluation budget %d", ErrInvalidConfig, cfg.MaxEvals)
	}
	if !cfg.Solver.Resumable() {
		return nil, fmt.Errorf("%w: solver %q is not resumable; the driver re-invokes the solver at every checkpoint boundary",
			ErrInvalidConfig, cfg.Solver.Name())
	}

	d := &Driver{cfg: cfg, pmap: cfg.PMap}
	if d.pmap == nil {
		d.pmap = opt.SerialMap
	}
	if cfg.SaveDir != "" {
		fs, err := store.NewFSStore(cfg.SaveDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create checkpoint store: %w", err)
		}
		d.store = fs
	}
	return d, nil
}

// Optimize runs fn under the configured budget and returns the best
// solution found, with stats, the full call log and the solver report.
func (d *Driver) Optimize(fn objective.Func) (*Result, error) {
	requested := d.cfg.MaxEvals

	var (
		wrapper  *objective.Wrapper
		restored bool
		carried  time.Duration
	)

	if d.cfg.RestorePath != "" {
		record, err := store.LoadCheckpointFile(d.cfg.RestorePath)
		if err != nil {
			return nil, err
		}
		if requested == 0 {
			requested = record.MaxEvals
		}
		ceiling := objective.EffectiveCeiling(requested)
		wrapper = objective.RestoreWrapper(fn, ceiling, record.LogEntries(), record.NumEvals)
		carried = time.Duration(record.ElapsedSeconds * float64(time.Second))
		restored = true
		slog.Info("Restored checkpoint",
			"path", d.cfg.RestorePath,
			"budget", requested,
			"consumed", record.NumEvals,
			"logged", len(record.Entries),
		)
	} else {
		if d.store != nil {
			exists, err := d.store.Exists(requested)
			if err != nil {
				return nil, err
			}
			if exists {
				if d.cfg.Confirm == nil || !d.cfg.Confirm() {
					slog.Warn("Refusing to overwrite existing checkpoint", "path", d.store.Path(requested))
					return nil, ErrOverwriteDeclined
				}
			}
		}
		wrapper = objective.NewWrapper(fn, objective.EffectiveCeiling(requested))
	}

	start := time.Now()
	elapsed := func() time.Duration { return carried + time.Since(start) }

	for {
		if restored && wrapper.Remaining() == 0 {
			// The restore already covers the requested budget; return the
			// best logged point with zero new evaluations.
			slog.Info("Requested budget already satisfied by checkpoint",
				"budget", requested, "consumed", wrapper.NumEvals())
			return d.extract(wrapper, nil, nil, carried)
		}

		solution, report, err := d.cfg.Solver.Optimize(wrapper, d.cfg.Maximize, d.pmap)
		switch {
		case err == nil:
			return d.extract(wrapper, solution, report, elapsed())

		case errors.Is(err, objective.ErrCheckpointDue):
			if err := d.checkpoint(wrapper, requested, elapsed()); err != nil {
				return nil, err
			}

		case errors.Is(err, objective.ErrBudgetExhausted):
			if err := d.checkpoint(wrapper, requested, elapsed()); err != nil {
				return nil, err
			}
			return d.extract(wrapper, nil, nil, elapsed())

		default:
			return nil, err
		}
	}
}

// checkpoint persists the current run state when saving is configured.
// A log that has reached the requested budget stores the effective ceiling
// as its consumed count, marking the checkpoint complete so a later restore
// short-circuits.
func (d *Driver) checkpoint(w *objective.Wrapper, requested int, elapsed time.Duration) error {
	if d.store == nil {
		return nil
	}

	log := w.Log()
	consumed := log.Len()
	if requested > 0 && consumed >= requested {
		consumed = w.Ceiling()
	}

	record := store.NewCheckpoint(log.Entries(), requested, consumed, elapsed)
	if err := d.store.SaveCheckpoint(requested, record); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved", "budget", requested, "evals", log.Len(), "elapsed", elapsed)
	return nil
}

// extract builds the caller-facing result. A nil solution means termination
// came from the budget (or a restore that already satisfied it), so the best
// point is selected by scanning the log in insertion order; ties resolve to
// the earliest insertion.
func (d *Driver) extract(w *objective.Wrapper, solution objective.Point, report any, elapsed time.Duration) (*Result, error) {
	log := w.Log()

	var optimum float64
	if solution == nil {
		best, err := log.Best(d.cfg.Maximize)
		if err != nil {
			return nil, fmt.Errorf("no evaluations were performed: %w", err)
		}
		solution, optimum = best.Point, best.Score
	} else {
		score, err := log.Get(solution)
		if err != nil {
			// The solver reported a point it never ran through the wrapper;
			// fall back to the log so the result stays consistent with it.
			best, berr := log.Best(d.cfg.Maximize)
			if berr != nil {
				return nil, fmt.Errorf("solver solution not in call log: %w", err)
			}
			solution, score = best.Point, best.Score
		}
		optimum = score
	}

	var decoded any
	if d.cfg.Decoder != nil {
		var err error
		decoded, err = d.cfg.Decoder(solution)
		if err != nil {
			return nil, fmt.Errorf("failed to decode solution: %w", err)
		}
	}

	return &Result{
		Solution: solution,
		Decoded:  decoded,
		Optimum:  optimum,
		Stats: Stats{
			NumEvals: log.Len(),
			Elapsed:  elapsed,
		},
		Solver:  d.cfg.Solver.Name(),
		CallLog: log.ToMapping(),
		Report:  report,
	}, nil
}
