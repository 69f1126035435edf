package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/boxtune/internal/objective"
)

func init() {
	Register("particle swarm", func(cfg Config) (Solver, error) {
		return NewParticleSwarm(cfg)
	})
}

// Swarm hyperparameters. Inertia decays linearly from wMax to wMin over the
// generations; phi1/phi2 weight the pull toward the personal and global best.
const (
	swarmInertiaMax = 0.9
	swarmInertiaMin = 0.4
	swarmPhi1       = 1.5
	swarmPhi2       = 2.0
)

// ParticleSwarm is the default solver: a seeded PSO whose population size
// and generation count are derived from the requested budget so the swarm
// uses the whole budget and nothing more.
type ParticleSwarm struct {
	names   []string
	box     objective.Box
	popSize int
	numGens int
	seed    int64
}

// SwarmReport summarizes a completed swarm run.
type SwarmReport struct {
	Particles   int     `json:"particles"`
	Generations int     `json:"generations"`
	BestScore   float64 `json:"bestScore"`
}

type particle struct {
	pos  []float64
	vel  []float64
	best []float64
	// bestScore is in internal orientation (lower is better).
	bestScore float64
}

// NewParticleSwarm sizes a swarm from cfg.NumEvals: up to 10 particles,
// generations = budget / particles.
func NewParticleSwarm(cfg Config) (*ParticleSwarm, error) {
	if len(cfg.Box) == 0 {
		return nil, fmt.Errorf("particle swarm requires box constraints")
	}
	if cfg.NumEvals <= 0 {
		return nil, fmt.Errorf("particle swarm requires a positive evaluation budget")
	}

	popSize := 10
	if cfg.NumEvals < popSize {
		popSize = cfg.NumEvals
	}
	numGens := cfg.NumEvals / popSize
	if numGens < 1 {
		numGens = 1
	}

	return &ParticleSwarm{
		names:   cfg.Box.Names(),
		box:     cfg.Box,
		popSize: popSize,
		numGens: numGens,
		seed:    cfg.Seed,
	}, nil
}

func (ps *ParticleSwarm) Name() string { return "particle swarm" }

// Resumable: the trajectory depends only on the seed and the observed
// scores; replayed evaluations reproduce it exactly after a restart.
func (ps *ParticleSwarm) Resumable() bool { return true }

// Optimize runs the swarm for the configured number of generations,
// evaluating each generation as one batch through pmap.
func (ps *ParticleSwarm) Optimize(w *objective.Wrapper, maximize bool, pmap MapFunc) (objective.Point, any, error) {
	if pmap == nil {
		pmap = SerialMap
	}
	rng := rand.New(rand.NewSource(ps.seed))
	dim := len(ps.names)
	lower, upper := ps.box.Bounds()

	swarm := make([]*particle, ps.popSize)
	for i := range swarm {
		p := &particle{
			pos:       make([]float64, dim),
			vel:       make([]float64, dim),
			best:      make([]float64, dim),
			bestScore: 0,
		}
		for d := 0; d < dim; d++ {
			span := upper[d] - lower[d]
			p.pos[d] = lower[d] + rng.Float64()*span
			p.vel[d] = (rng.Float64()*2 - 1) * span
		}
		copy(p.best, p.pos)
		swarm[i] = p
	}

	// Internal orientation: lower is better. Maximization negates scores.
	sign := 1.0
	if maximize {
		sign = -1.0
	}

	globalBest := make([]float64, dim)
	globalScore := 0.0
	haveGlobal := false

	for gen := 0; gen < ps.numGens; gen++ {
		points := make([]objective.Point, ps.popSize)
		for i, p := range swarm {
			points[i] = pointFromVector(ps.names, p.pos)
		}

		scores, err := pmap(points, w.Call)
		if err != nil {
			return nil, nil, err
		}

		for i, p := range swarm {
			score := sign * scores[i]
			if gen == 0 || score < p.bestScore {
				p.bestScore = score
				copy(p.best, p.pos)
			}
			if !haveGlobal || p.bestScore < globalScore {
				globalScore = p.bestScore
				copy(globalBest, p.best)
				haveGlobal = true
			}
		}

		inertia := swarmInertiaMax
		if ps.numGens > 1 {
			inertia -= (swarmInertiaMax - swarmInertiaMin) * float64(gen) / float64(ps.numGens-1)
		}

		for _, p := range swarm {
			for d := 0; d < dim; d++ {
				r1 := rng.Float64()
				r2 := rng.Float64()
				p.vel[d] = inertia*p.vel[d] +
					swarmPhi1*r1*(p.best[d]-p.pos[d]) +
					swarmPhi2*r2*(globalBest[d]-p.pos[d])
				p.pos[d] += p.vel[d]
				// Clip to the box so every proposed point stays in-domain.
				if p.pos[d] < lower[d] {
					p.pos[d] = lower[d]
				}
				if p.pos[d] > upper[d] {
					p.pos[d] = upper[d]
				}
			}
		}
	}

	report := SwarmReport{
		Particles:   ps.popSize,
		Generations: ps.numGens,
		BestScore:   sign * globalScore,
	}
	return pointFromVector(ps.names, globalBest), report, nil
}
