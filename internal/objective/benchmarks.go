package objective

import (
	"fmt"
	"math"
	"sort"
)

// Benchmark is a named objective usable from the CLI and the job server
// without user code. Maximize indicates the direction the benchmark is
// normally run in; DefaultBox gives the bounds applied to every parameter
// when the caller does not supply any.
type Benchmark struct {
	Name        string
	Description string
	Maximize    bool
	Eval        Func
	DefaultBox  [2]float64
}

// vectorized adapts a function over an ordered value slice to a Func;
// values are ordered by sorted parameter name.
func vectorized(f func([]float64) float64) Func {
	return func(p Point) (float64, error) {
		return f(p.Values()), nil
	}
}

var benchmarks = map[string]Benchmark{
	"sphere": {
		Name:        "sphere",
		Description: "sum of squares, minimum 0 at the origin",
		Eval: vectorized(func(x []float64) float64 {
			var s float64
			for _, v := range x {
				s += v * v
			}
			return s
		}),
		DefaultBox: [2]float64{-5, 5},
	},
	"rosenbrock": {
		Name:        "rosenbrock",
		Description: "banana valley, minimum 0 at (1, ..., 1)",
		Eval: vectorized(func(x []float64) float64 {
			var s float64
			for i := 0; i+1 < len(x); i++ {
				a := x[i+1] - x[i]*x[i]
				b := 1 - x[i]
				s += 100*a*a + b*b
			}
			return s
		}),
		DefaultBox: [2]float64{-2, 2},
	},
	"rastrigin": {
		Name:        "rastrigin",
		Description: "highly multimodal, minimum 0 at the origin",
		Eval: vectorized(func(x []float64) float64 {
			s := 10 * float64(len(x))
			for _, v := range x {
				s += v*v - 10*math.Cos(2*math.Pi*v)
			}
			return s
		}),
		DefaultBox: [2]float64{-5.12, 5.12},
	},
	"parabola": {
		Name:        "parabola",
		Description: "-(x-3)^2 per parameter, maximum 0 at x=3",
		Maximize:    true,
		Eval: vectorized(func(x []float64) float64 {
			var s float64
			for _, v := range x {
				s -= (v - 3) * (v - 3)
			}
			return s
		}),
		DefaultBox: [2]float64{0, 10},
	},
}

// GetBenchmark looks up a named benchmark objective.
func GetBenchmark(name string) (Benchmark, error) {
	b, ok := benchmarks[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("unknown benchmark objective: %s", name)
	}
	return b, nil
}

// BenchmarkNames returns the registered benchmark names, sorted.
func BenchmarkNames() []string {
	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
