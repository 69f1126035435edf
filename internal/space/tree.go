// Package space maps a nested configuration search space onto a flat
// numeric box and decodes flat points back into structured solutions.
//
// A space mixes numeric leaves (bounded parameters) with choice nodes
// (mutually exclusive alternatives, each carrying its own sub-space). The
// flattening assigns one box dimension per numeric leaf and one discrete
// dimension per choice node; dimensions of unselected alternatives are
// simply ignored when decoding.
package space

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cwbudde/boxtune/internal/objective"
)

// Param is one entry in a search space: either a numeric leaf with bounds
// or a choice among named alternatives. Exactly one of the two must be set.
type Param struct {
	// Bounds is the [lower, upper] range of a numeric leaf.
	Bounds *[2]float64

	// Choices maps alternative names to their sub-spaces. An alternative
	// with no parameters of its own uses a nil sub-space.
	Choices map[string]Space
}

// Space is a nested search-space description keyed by parameter name.
type Space map[string]Param

// Numeric is a convenience constructor for a bounded numeric leaf.
func Numeric(lower, upper float64) Param {
	b := [2]float64{lower, upper}
	return Param{Bounds: &b}
}

// Choice is a convenience constructor for a choice node.
func Choice(alternatives map[string]Space) Param {
	return Param{Choices: alternatives}
}

// Selection is the decoded form of a choice node.
type Selection struct {
	Selected string   `json:"selected"`
	Params   Solution `json:"params,omitempty"`
}

// Solution is a decoded structured solution: numeric leaves become float64,
// choice nodes become Selection.
type Solution map[string]any

// Tree is the flattened view of a space, ready to drive a box-constrained
// solver.
type Tree struct {
	space Space
	box   objective.Box
}

// NewTree validates and flattens a search space.
func NewTree(s Space) (*Tree, error) {
	box := objective.Box{}
	if err := flatten(s, "", box); err != nil {
		return nil, err
	}
	if len(box) == 0 {
		return nil, fmt.Errorf("search space has no parameters")
	}
	return &Tree{space: s, box: box}, nil
}

// ToBox returns the flat box the tree maps onto. Numeric leaves keep their
// bounds under their dotted path; each choice node contributes one dimension
// over [0, number-of-alternatives).
func (t *Tree) ToBox() objective.Box {
	return t.box
}

// Decode converts a flat point back into a structured solution, selecting
// one alternative per choice node and dropping the dimensions of unselected
// alternatives.
func (t *Tree) Decode(p objective.Point) (Solution, error) {
	return decode(t.space, "", p)
}

// DecodeAny adapts Decode to the driver's decoder signature.
func (t *Tree) DecodeAny(p objective.Point) (any, error) {
	return t.Decode(p)
}

func flatten(s Space, prefix string, box objective.Box) error {
	for name, param := range s {
		path := joinPath(prefix, name)
		switch {
		case param.Bounds != nil && param.Choices != nil:
			return fmt.Errorf("parameter %q is both a numeric leaf and a choice", path)
		case param.Bounds != nil:
			if param.Bounds[0] >= param.Bounds[1] {
				return fmt.Errorf("parameter %q: want lower < upper, got [%g, %g]",
					path, param.Bounds[0], param.Bounds[1])
			}
			box[path] = *param.Bounds
		case param.Choices != nil:
			if len(param.Choices) == 0 {
				return fmt.Errorf("choice %q has no alternatives", path)
			}
			box[path] = [2]float64{0, float64(len(param.Choices))}
			for _, alt := range choiceNames(param.Choices) {
				sub := param.Choices[alt]
				if sub == nil {
					continue
				}
				if err := flatten(sub, joinPath(path, alt), box); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("parameter %q has neither bounds nor choices", path)
		}
	}
	return nil
}

func decode(s Space, prefix string, p objective.Point) (Solution, error) {
	sol := make(Solution, len(s))
	for name, param := range s {
		path := joinPath(prefix, name)
		v, ok := p[path]
		if !ok {
			return nil, fmt.Errorf("point is missing dimension %q", path)
		}

		if param.Bounds != nil {
			sol[name] = v
			continue
		}

		names := choiceNames(param.Choices)
		idx := int(math.Floor(v))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(names) {
			idx = len(names) - 1
		}
		selected := names[idx]

		selection := Selection{Selected: selected}
		if sub := param.Choices[selected]; sub != nil {
			params, err := decode(sub, joinPath(path, selected), p)
			if err != nil {
				return nil, err
			}
			selection.Params = params
		}
		sol[name] = selection
	}
	return sol, nil
}

// choiceNames returns alternative names in sorted order so the discrete
// dimension's index assignment is deterministic.
func choiceNames(choices map[string]Space) []string {
	names := make([]string, 0, len(choices))
	for name := range choices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// String renders the flattened box for diagnostics.
func (t *Tree) String() string {
	names := t.box.Names()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s:[%g,%g]", name, t.box[name][0], t.box[name][1])
	}
	return strings.Join(parts, " ")
}
