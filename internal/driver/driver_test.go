package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/opt"
	"github.com/cwbudde/boxtune/internal/store"
)

// newGridSolver builds a deterministic 20-point one-dimensional grid over
// [0, 19], so the proposed points are exactly x = 0, 1, ..., 19.
func newGridSolver(t *testing.T) opt.Solver {
	t.Helper()

	solver, err := opt.New("grid search", opt.Config{
		NumEvals: 20,
		Box:      objective.Box{"x": {0, 19}},
	})
	if err != nil {
		t.Fatalf("failed to build grid solver: %v", err)
	}
	return solver
}

// fallibleFunc evaluates x^2, failing once the invocation counter reaches
// failAt (0 disables failure). The counter is shared across wrappers to
// simulate a process dying mid-run.
type fallibleFunc struct {
	calls  int
	failAt int
}

func (f *fallibleFunc) fn(p objective.Point) (float64, error) {
	f.calls++
	if f.failAt > 0 && f.calls >= f.failAt {
		return 0, fmt.Errorf("simulated crash at call %d", f.calls)
	}
	return p["x"] * p["x"], nil
}

func TestNewRejectsBadConfig(t *testing.T) {
	grid := newGridSolver(t)

	if _, err := New(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil solver: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := New(Config{Solver: grid, MaxEvals: -5}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative budget: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := New(Config{Solver: nonResumableSolver{}, MaxEvals: 10}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("non-resumable solver: expected ErrInvalidConfig, got %v", err)
	}
}

// nonResumableSolver stands in for a strategy whose trajectory cannot be
// replayed; the driver must refuse it.
type nonResumableSolver struct{}

func (nonResumableSolver) Name() string    { return "one-shot" }
func (nonResumableSolver) Resumable() bool { return false }
func (nonResumableSolver) Optimize(*objective.Wrapper, bool, opt.MapFunc) (objective.Point, any, error) {
	return nil, nil, nil
}

func TestOptimizeGridMinimum(t *testing.T) {
	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	f := &fallibleFunc{}
	result, err := d.Optimize(f.fn)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if result.Solution["x"] != 0 {
		t.Errorf("expected minimum at x=0, got %v", result.Solution)
	}
	if result.Optimum != 0 {
		t.Errorf("expected optimum 0, got %g", result.Optimum)
	}
	if result.Stats.NumEvals != 20 {
		t.Errorf("expected exactly 20 evaluations, got %d", result.Stats.NumEvals)
	}
	if f.calls != 20 {
		t.Errorf("objective invoked %d times, want 20", f.calls)
	}
	if len(result.CallLog) != 20 {
		t.Errorf("call log should hold 20 distinct points, got %d", len(result.CallLog))
	}
}

func TestOptimizeCheckpointsPeriodically(t *testing.T) {
	dir := t.TempDir()

	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20, SaveDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	f := &fallibleFunc{}
	if _, err := d.Optimize(f.fn); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	record, err := store.LoadCheckpointFile(filepath.Join(dir, store.CheckpointFileName(20)))
	if err != nil {
		t.Fatalf("no checkpoint after completed run: %v", err)
	}
	if len(record.Entries) != 20 {
		t.Errorf("final checkpoint should hold the full log, got %d entries", len(record.Entries))
	}
	// A finished run stores the padded ceiling as its consumed count, which
	// marks the checkpoint complete.
	if record.NumEvals != objective.EffectiveCeiling(20) {
		t.Errorf("completed checkpoint should store the ceiling %d, got %d",
			objective.EffectiveCeiling(20), record.NumEvals)
	}
}

func TestCrashAndResume(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, store.CheckpointFileName(20))

	// First run dies at the 7th raw evaluation. The checkpoint written after
	// the 6th must survive.
	f := &fallibleFunc{failAt: 7}
	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20, SaveDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := d.Optimize(f.fn); err == nil {
		t.Fatal("expected the simulated crash to surface")
	}

	record, err := store.LoadCheckpointFile(path)
	if err != nil {
		t.Fatalf("no checkpoint survived the crash: %v", err)
	}
	if record.NumEvals != 6 || len(record.Entries) != 6 {
		t.Fatalf("expected 6 evaluations checkpointed, got consumed=%d entries=%d",
			record.NumEvals, len(record.Entries))
	}

	// Second run resumes from the checkpoint with a healthy objective. The
	// 6 logged points replay for free; only the remaining 14 are evaluated.
	healthy := &fallibleFunc{}
	d2, err := New(Config{
		Solver:      newGridSolver(t),
		MaxEvals:    20,
		SaveDir:     dir,
		RestorePath: path,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := d2.Optimize(healthy.fn)
	if err != nil {
		t.Fatalf("resumed Optimize failed: %v", err)
	}

	if healthy.calls != 14 {
		t.Errorf("resume re-evaluated logged points: %d raw calls, want 14", healthy.calls)
	}
	if result.Stats.NumEvals != 20 {
		t.Errorf("expected 20 total evaluations, got %d", result.Stats.NumEvals)
	}
	if len(result.CallLog) != 20 {
		t.Errorf("expected 20 distinct logged points, got %d", len(result.CallLog))
	}
	if result.Solution["x"] != 0 || result.Optimum != 0 {
		t.Errorf("resumed run found %v = %g, want x=0 = 0", result.Solution, result.Optimum)
	}
}

func TestRestoreCompleteShortCircuits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, store.CheckpointFileName(20))

	f := &fallibleFunc{}
	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20, SaveDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	first, err := d.Optimize(f.fn)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	// Restoring a complete checkpoint must return without touching the
	// objective or the solver.
	poisoned := &fallibleFunc{failAt: 1}
	d2, err := New(Config{
		Solver:      newGridSolver(t),
		MaxEvals:    20,
		SaveDir:     dir,
		RestorePath: path,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	second, err := d2.Optimize(poisoned.fn)
	if err != nil {
		t.Fatalf("restore of complete run failed: %v", err)
	}

	if poisoned.calls != 0 {
		t.Errorf("short-circuited restore invoked the objective %d times", poisoned.calls)
	}
	if !second.Solution.Equal(first.Solution) || second.Optimum != first.Optimum {
		t.Errorf("restore changed the answer: %v = %g vs %v = %g",
			second.Solution, second.Optimum, first.Solution, first.Optimum)
	}
}

func TestRestoreAdoptsStoredBudget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, store.CheckpointFileName(20))

	f := &fallibleFunc{failAt: 7}
	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20, SaveDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := d.Optimize(f.fn); err == nil {
		t.Fatal("expected the simulated crash to surface")
	}

	// MaxEvals 0 on a restore means "use the checkpoint's budget".
	healthy := &fallibleFunc{}
	d2, err := New(Config{Solver: newGridSolver(t), RestorePath: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := d2.Optimize(healthy.fn)
	if err != nil {
		t.Fatalf("resumed Optimize failed: %v", err)
	}
	if result.Stats.NumEvals != 20 {
		t.Errorf("stored budget not adopted: %d evaluations", result.Stats.NumEvals)
	}
}

func TestOverwriteDeclined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, store.CheckpointFileName(20))

	f := &fallibleFunc{failAt: 7}
	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20, SaveDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := d.Optimize(f.fn); err == nil {
		t.Fatal("expected the simulated crash to surface")
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// A fresh run over the same budget without confirmation must refuse to
	// touch the existing checkpoint.
	d2, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20, SaveDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	untouched := &fallibleFunc{failAt: 1}
	if _, err := d2.Optimize(untouched.fn); !errors.Is(err, ErrOverwriteDeclined) {
		t.Fatalf("expected ErrOverwriteDeclined, got %v", err)
	}
	if untouched.calls != 0 {
		t.Errorf("declined run invoked the objective %d times", untouched.calls)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(before) != string(after) {
		t.Error("declined overwrite modified the checkpoint file")
	}
}

func TestOverwriteConfirmed(t *testing.T) {
	dir := t.TempDir()

	f := &fallibleFunc{failAt: 7}
	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20, SaveDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := d.Optimize(f.fn); err == nil {
		t.Fatal("expected the simulated crash to surface")
	}

	healthy := &fallibleFunc{}
	d2, err := New(Config{
		Solver:   newGridSolver(t),
		MaxEvals: 20,
		SaveDir:  dir,
		Confirm:  func() bool { return true },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := d2.Optimize(healthy.fn)
	if err != nil {
		t.Fatalf("confirmed overwrite run failed: %v", err)
	}
	// Confirmed fresh run starts from scratch.
	if healthy.calls != 20 {
		t.Errorf("fresh run should evaluate everything, got %d raw calls", healthy.calls)
	}
	if result.Stats.NumEvals != 20 {
		t.Errorf("expected 20 evaluations, got %d", result.Stats.NumEvals)
	}
}

func TestBudgetStopsSolverEarly(t *testing.T) {
	// The grid proposes 20 points but the budget admits fewer; the driver
	// must stop at the padded ceiling and return the best logged point.
	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 5})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	f := &fallibleFunc{}
	result, err := d.Optimize(f.fn)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	ceiling := objective.EffectiveCeiling(5)
	if result.Stats.NumEvals != ceiling {
		t.Errorf("expected %d evaluations at the ceiling, got %d", ceiling, result.Stats.NumEvals)
	}
	// Grid enumerates x = 0 first, so the best of the truncated run is 0.
	if result.Solution["x"] != 0 {
		t.Errorf("expected best x=0 among evaluated points, got %v", result.Solution)
	}
}

func TestTieBreakEarliestInsertion(t *testing.T) {
	constant := func(p objective.Point) (float64, error) { return 7, nil }

	for _, maximize := range []bool{true, false} {
		d, err := New(Config{Solver: newGridSolver(t), Maximize: maximize, MaxEvals: 20})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		result, err := d.Optimize(constant)
		if err != nil {
			t.Fatalf("Optimize failed: %v", err)
		}
		// All scores tie; the first evaluated point wins in both directions.
		if result.Solution["x"] != 0 {
			t.Errorf("maximize=%v: tie should resolve to first point, got %v", maximize, result.Solution)
		}
	}
}

func TestObjectiveErrorSurfaces(t *testing.T) {
	d, err := New(Config{Solver: newGridSolver(t), MaxEvals: 20})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	f := &fallibleFunc{failAt: 1}
	if _, err := d.Optimize(f.fn); err == nil {
		t.Fatal("objective error should surface to the caller")
	}
}
