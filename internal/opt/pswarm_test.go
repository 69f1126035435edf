package opt

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/boxtune/internal/objective"
)

func TestParticleSwarmSizing(t *testing.T) {
	cases := []struct {
		numEvals int
		popSize  int
		numGens  int
	}{
		{10, 10, 1},
		{5, 5, 1},
		{50, 10, 5},
		{25, 10, 2},
	}

	for _, c := range cases {
		ps, err := NewParticleSwarm(Config{
			NumEvals: c.numEvals,
			Box:      objective.Box{"x": {0, 1}},
		})
		if err != nil {
			t.Fatalf("NewParticleSwarm(%d) failed: %v", c.numEvals, err)
		}
		if ps.popSize != c.popSize || ps.numGens != c.numGens {
			t.Errorf("budget %d: got pop=%d gens=%d, want pop=%d gens=%d",
				c.numEvals, ps.popSize, ps.numGens, c.popSize, c.numGens)
		}
	}
}

func TestParticleSwarmFindsMinimum(t *testing.T) {
	ps, err := NewParticleSwarm(Config{
		NumEvals: 200,
		Box:      objective.Box{"x": {-5, 5}, "y": {-5, 5}},
		Seed:     42,
	})
	if err != nil {
		t.Fatalf("NewParticleSwarm failed: %v", err)
	}

	w := objective.NewWrapper(sphereFunc, -1)
	solution, _, err := runToCompletion(t, ps, w, false)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if sum := solution["x"]*solution["x"] + solution["y"]*solution["y"]; sum > 0.5 {
		t.Errorf("swarm did not approach the minimum: %v (cost %g)", solution, sum)
	}
}

func TestParticleSwarmMaximize(t *testing.T) {
	parabola := func(p objective.Point) (float64, error) {
		d := p["x"] - 3
		return -d * d, nil
	}

	ps, err := NewParticleSwarm(Config{
		NumEvals: 100,
		Box:      objective.Box{"x": {0, 10}},
		Seed:     7,
	})
	if err != nil {
		t.Fatalf("NewParticleSwarm failed: %v", err)
	}

	w := objective.NewWrapper(parabola, -1)
	solution, report, err := runToCompletion(t, ps, w, true)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if math.Abs(solution["x"]-3) > 0.5 {
		t.Errorf("swarm did not approach the maximum at 3, got %v", solution)
	}
	sr, ok := report.(SwarmReport)
	if !ok {
		t.Fatalf("unexpected report type %#v", report)
	}
	if sr.BestScore < -0.5 {
		t.Errorf("reported best score too low: %g", sr.BestScore)
	}
}

func TestParticleSwarmDeterministic(t *testing.T) {
	run := func() objective.Point {
		ps, err := NewParticleSwarm(Config{
			NumEvals: 40,
			Box:      objective.Box{"x": {-5, 5}},
			Seed:     11,
		})
		if err != nil {
			t.Fatalf("NewParticleSwarm failed: %v", err)
		}
		w := objective.NewWrapper(sphereFunc, -1)
		solution, _, err := runToCompletion(t, ps, w, false)
		if err != nil {
			t.Fatalf("Optimize failed: %v", err)
		}
		return solution
	}

	if a, b := run(), run(); !a.Equal(b) {
		t.Errorf("same seed produced different solutions: %v vs %v", a, b)
	}
}

func TestParticleSwarmPropagatesBudgetSignal(t *testing.T) {
	ps, err := NewParticleSwarm(Config{
		NumEvals: 10,
		Box:      objective.Box{"x": {-5, 5}},
		Seed:     3,
	})
	if err != nil {
		t.Fatalf("NewParticleSwarm failed: %v", err)
	}

	w := objective.NewWrapper(sphereFunc, 5)
	_, _, err = runToCompletion(t, ps, w, false)
	if !errors.Is(err, objective.ErrBudgetExhausted) {
		t.Fatalf("expected budget signal to propagate, got %v", err)
	}
}

func TestRandomSearchDeterministic(t *testing.T) {
	run := func() objective.Point {
		rs, err := NewRandomSearch(Config{
			NumEvals: 30,
			Box:      objective.Box{"x": {-5, 5}},
			Seed:     13,
		})
		if err != nil {
			t.Fatalf("NewRandomSearch failed: %v", err)
		}
		w := objective.NewWrapper(sphereFunc, -1)
		solution, _, err := runToCompletion(t, rs, w, false)
		if err != nil {
			t.Fatalf("Optimize failed: %v", err)
		}
		return solution
	}

	if a, b := run(), run(); !a.Equal(b) {
		t.Errorf("same seed produced different solutions: %v vs %v", a, b)
	}
}

func TestRandomSearchStaysInBox(t *testing.T) {
	box := objective.Box{"x": {2, 4}, "y": {-1, 1}}
	rs, err := NewRandomSearch(Config{NumEvals: 50, Box: box, Seed: 5})
	if err != nil {
		t.Fatalf("NewRandomSearch failed: %v", err)
	}

	w := objective.NewWrapper(sphereFunc, -1)
	if _, _, err := runToCompletion(t, rs, w, false); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	for _, e := range w.Log().Entries() {
		for name, bounds := range box {
			v := e.Point[name]
			if v < bounds[0] || v > bounds[1] {
				t.Errorf("sample %v outside box on %s", e.Point, name)
			}
		}
	}
}
