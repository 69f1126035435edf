package opt

import (
	"sort"
	"sync"
)

// Factory constructs a solver from the common config.
type Factory func(Config) (Solver, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a solver factory under the given name.
// Registering the same name twice replaces the earlier factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New instantiates a registered solver by name.
// Returns UnknownSolverError if no factory is registered under name.
func New(name string, cfg Config) (Solver, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownSolverError{Name: name}
	}
	return factory(cfg)
}

// Names returns the registered solver names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownSolver matches any UnknownSolverError via errors.Is.
var ErrUnknownSolver = &UnknownSolverError{}

// UnknownSolverError is returned when a solver name is not registered.
type UnknownSolverError struct {
	Name string
}

func (e *UnknownSolverError) Error() string {
	if e.Name != "" {
		return "unknown solver: " + e.Name
	}
	return "unknown solver"
}

func (e *UnknownSolverError) Is(target error) bool {
	_, ok := target.(*UnknownSolverError)
	return ok
}
