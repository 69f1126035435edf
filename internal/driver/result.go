package driver

import (
	"time"

	"github.com/cwbudde/boxtune/internal/objective"
)

// Stats describes the solving process: evaluations consumed (always equal to
// the number of logged entries) and wall-clock time, accumulated across
// resumed runs.
type Stats struct {
	NumEvals int           `json:"numEvals"`
	Elapsed  time.Duration `json:"time"`
}

// Result is the caller-facing outcome of a run.
type Result struct {
	// Solution is the best point found.
	Solution objective.Point `json:"solution"`

	// Decoded is the structured form of Solution when a decoder was
	// configured, nil otherwise.
	Decoded any `json:"decoded,omitempty"`

	// Optimum is the objective value at Solution.
	Optimum float64 `json:"optimum"`

	Stats Stats `json:"stats"`

	// Solver names the strategy that produced the result.
	Solver string `json:"solver"`

	// CallLog is the full evaluation log as a plain mapping.
	CallLog objective.Mapping `json:"callLog"`

	// Report is the solver-specific report, nil when the run terminated
	// through budget exhaustion rather than a normal solver return.
	Report any `json:"report,omitempty"`
}
