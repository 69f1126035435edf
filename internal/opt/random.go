package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/boxtune/internal/objective"
)

func init() {
	Register("random search", func(cfg Config) (Solver, error) {
		return NewRandomSearch(cfg)
	})
}

// RandomSearch samples points uniformly from the box. The sample sequence is
// fully determined by the seed, so a restarted search regenerates the same
// points and fast-forwards through logged ones.
type RandomSearch struct {
	names    []string
	box      objective.Box
	numEvals int
	seed     int64
}

// RandomReport summarizes a completed random search.
type RandomReport struct {
	Samples int `json:"samples"`
}

// NewRandomSearch builds a sampler drawing cfg.NumEvals points.
func NewRandomSearch(cfg Config) (*RandomSearch, error) {
	if len(cfg.Box) == 0 {
		return nil, fmt.Errorf("random search requires box constraints")
	}
	if cfg.NumEvals <= 0 {
		return nil, fmt.Errorf("random search requires a positive evaluation budget")
	}
	return &RandomSearch{
		names:    cfg.Box.Names(),
		box:      cfg.Box,
		numEvals: cfg.NumEvals,
		seed:     cfg.Seed,
	}, nil
}

func (r *RandomSearch) Name() string    { return "random search" }
func (r *RandomSearch) Resumable() bool { return true }

// Optimize draws the sample sequence and returns the best point seen.
func (r *RandomSearch) Optimize(w *objective.Wrapper, maximize bool, pmap MapFunc) (objective.Point, any, error) {
	if pmap == nil {
		pmap = SerialMap
	}

	// Fresh rng per invocation keeps the sequence identical across
	// re-invocations after a checkpoint.
	rng := rand.New(rand.NewSource(r.seed))
	points := make([]objective.Point, r.numEvals)
	for i := range points {
		p := make(objective.Point, len(r.names))
		for _, name := range r.names {
			lo, hi := r.box[name][0], r.box[name][1]
			p[name] = lo + rng.Float64()*(hi-lo)
		}
		points[i] = p
	}

	scores, err := pmap(points, w.Call)
	if err != nil {
		return nil, nil, err
	}

	bestIdx := 0
	for i, score := range scores {
		if better(score, scores[bestIdx], maximize) {
			bestIdx = i
		}
	}
	return points[bestIdx], RandomReport{Samples: len(points)}, nil
}
