package opt

import (
	"github.com/cwbudde/boxtune/internal/objective"
)

// DefaultSolverName is used when the caller does not name a solver.
const DefaultSolverName = "particle swarm"

// Suggest picks a solver appropriate for the given budget and box and
// instantiates it. An empty name selects the default.
func Suggest(name string, numEvals int, box objective.Box, seed int64) (Solver, error) {
	if name == "" {
		name = DefaultSolverName
	}
	return New(name, Config{
		NumEvals: numEvals,
		Box:      box,
		Seed:     seed,
	})
}
