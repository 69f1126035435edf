package driver

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/space"
)

func parabola(p objective.Point) (float64, error) {
	d := p["x"] - 3
	return -d * d, nil
}

func TestMaximizeParabola(t *testing.T) {
	result, err := Maximize(parabola, objective.Box{"x": {0, 10}}, RunConfig{
		NumEvals: 10,
		Seed:     42,
	})
	if err != nil {
		t.Fatalf("Maximize failed: %v", err)
	}

	if result.Stats.NumEvals != 10 {
		t.Errorf("expected exactly 10 evaluations, got %d", result.Stats.NumEvals)
	}
	if x := result.Solution["x"]; x <= 0 || x >= 10 {
		t.Errorf("solution outside the box: %v", result.Solution)
	}

	// The reported optimum must match the best entry of the call log.
	best := math.Inf(-1)
	for _, score := range result.CallLog {
		if score > best {
			best = score
		}
	}
	if result.Optimum != best {
		t.Errorf("optimum %g disagrees with call log best %g", result.Optimum, best)
	}
}

func TestMinimizeSphere(t *testing.T) {
	sphere := func(p objective.Point) (float64, error) {
		return p["x"]*p["x"] + p["y"]*p["y"], nil
	}

	result, err := Minimize(sphere, objective.Box{"x": {-5, 5}, "y": {-5, 5}}, RunConfig{
		NumEvals: 100,
		Seed:     42,
	})
	if err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}

	if result.Optimum > 1.0 {
		t.Errorf("swarm did not descend: optimum %g at %v", result.Optimum, result.Solution)
	}
	// Clipped duplicates replay from the log, so the swarm may finish on
	// slightly fewer distinct evaluations than the budget.
	if result.Stats.NumEvals > 100 || result.Stats.NumEvals < 10 {
		t.Errorf("evaluation count out of range: %d", result.Stats.NumEvals)
	}
}

func TestMaximizeInvalidBox(t *testing.T) {
	_, err := Maximize(parabola, objective.Box{"x": {5, 5}}, RunConfig{NumEvals: 10})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for empty interval, got %v", err)
	}
}

func TestMaximizeUnknownSolver(t *testing.T) {
	_, err := Maximize(parabola, objective.Box{"x": {0, 10}}, RunConfig{
		NumEvals:   10,
		SolverName: "simulated annealing",
	})
	if err == nil {
		t.Fatal("expected error for unknown solver name")
	}
}

func TestMaximizeDefaultBudget(t *testing.T) {
	result, err := Maximize(parabola, objective.Box{"x": {0, 10}}, RunConfig{
		SolverName: "random search",
		Seed:       42,
	})
	if err != nil {
		t.Fatalf("Maximize failed: %v", err)
	}
	if result.Stats.NumEvals != DefaultNumEvals {
		t.Errorf("zero budget should use the default %d, got %d", DefaultNumEvals, result.Stats.NumEvals)
	}
}

func TestMaximizeStructured(t *testing.T) {
	s := space.Space{
		"algo": space.Choice(map[string]space.Space{
			"linear": {"c": space.Numeric(0, 1)},
			"rbf":    {"gamma": space.Numeric(0, 2)},
		}),
	}

	fn := func(sol space.Solution) (float64, error) {
		sel, ok := sol["algo"].(space.Selection)
		if !ok {
			t.Fatalf("decoded solution missing selection: %#v", sol)
		}
		switch sel.Selected {
		case "linear":
			return sel.Params["c"].(float64), nil
		case "rbf":
			return sel.Params["gamma"].(float64), nil
		}
		return 0, errors.New("unexpected alternative")
	}

	result, err := MaximizeStructured(fn, s, RunConfig{NumEvals: 60, Seed: 42})
	if err != nil {
		t.Fatalf("MaximizeStructured failed: %v", err)
	}

	decoded, ok := result.Decoded.(space.Solution)
	if !ok {
		t.Fatalf("result should carry the decoded solution, got %#v", result.Decoded)
	}
	sel := decoded["algo"].(space.Selection)
	// gamma reaches up to 2 while c tops out at 1, so a working search
	// should end in the rbf branch with a high gamma.
	if sel.Selected != "rbf" {
		t.Errorf("expected the rbf branch to win, got %q (optimum %g)", sel.Selected, result.Optimum)
	}
	if result.Optimum < 1.0 {
		t.Errorf("structured search stalled: optimum %g", result.Optimum)
	}
}

func TestMinimizeStructured(t *testing.T) {
	s := space.Space{
		"x": space.Numeric(-5, 5),
	}

	fn := func(sol space.Solution) (float64, error) {
		x := sol["x"].(float64)
		return x * x, nil
	}

	result, err := MinimizeStructured(fn, s, RunConfig{NumEvals: 80, Seed: 7})
	if err != nil {
		t.Fatalf("MinimizeStructured failed: %v", err)
	}
	if result.Optimum > 1.0 {
		t.Errorf("structured minimize stalled: optimum %g", result.Optimum)
	}
}
