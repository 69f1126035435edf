package objective

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Point is one candidate assignment of values to the parameters being
// optimized. Points are treated as immutable once created; Key() gives a
// canonical encoding usable as a map key and parseable back via ParseKey.
type Point map[string]float64

// Names returns the parameter names in sorted order.
func (p Point) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns the parameter values ordered by sorted name.
func (p Point) Values() []float64 {
	names := p.Names()
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = p[name]
	}
	return values
}

// Equal reports structural equality: same names, same values.
func (p Point) Equal(other Point) bool {
	if len(p) != len(other) {
		return false
	}
	for name, v := range p {
		ov, ok := other[name]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the point.
func (p Point) Clone() Point {
	c := make(Point, len(p))
	for name, v := range p {
		c[name] = v
	}
	return c
}

// Key returns a canonical string encoding of the point.
// Parameters are sorted by name; values use the shortest representation
// that round-trips, so ParseKey(p.Key()) reconstructs an equal point.
func (p Point) Key() string {
	names := p.Names()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + strconv.FormatFloat(p[name], 'g', -1, 64)
	}
	return strings.Join(parts, ";")
}

// ParseKey reconstructs a point from its canonical Key encoding.
func ParseKey(key string) (Point, error) {
	if key == "" {
		return Point{}, nil
	}
	p := Point{}
	for _, part := range strings.Split(key, ";") {
		name, raw, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed point key segment %q", part)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point value in %q: %w", part, err)
		}
		p[name] = v
	}
	return p, nil
}

func (p Point) String() string {
	return "{" + p.Key() + "}"
}
