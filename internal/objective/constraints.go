package objective

import "fmt"

// Box maps parameter names to [lower, upper] bounds.
type Box map[string][2]float64

// Names returns the box's parameter names in sorted order.
func (b Box) Names() []string {
	p := make(Point, len(b))
	for name := range b {
		p[name] = 0
	}
	return p.Names()
}

// Bounds returns parallel lower/upper slices ordered by sorted name.
func (b Box) Bounds() (lower, upper []float64) {
	names := b.Names()
	lower = make([]float64, len(names))
	upper = make([]float64, len(names))
	for i, name := range names {
		lower[i] = b[name][0]
		upper[i] = b[name][1]
	}
	return lower, upper
}

// Validate checks that every bound pair satisfies lower < upper.
func (b Box) Validate() error {
	for name, bounds := range b {
		if bounds[0] >= bounds[1] {
			return fmt.Errorf("box constraint for %q improperly specified: want lower < upper, got [%g, %g]",
				name, bounds[0], bounds[1])
		}
	}
	return nil
}

// Contains reports whether p lies strictly inside the box on every
// parameter the box constrains.
func (b Box) Contains(p Point) bool {
	for name, bounds := range b {
		v, ok := p[name]
		if !ok || v <= bounds[0] || v >= bounds[1] {
			return false
		}
	}
	return true
}

// WrapBoxConstraints places hard box constraints on the domain of fn.
// Points outside the box score def without invoking fn, so solvers that
// wander out of the box pay nothing but learn nothing.
func WrapBoxConstraints(fn Func, box Box, def float64) Func {
	return func(p Point) (float64, error) {
		if !box.Contains(p) {
			return def, nil
		}
		return fn(p)
	}
}
