package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/boxtune/internal/objective"
)

// LogEntry is one persisted evaluation. Entries are stored as an ordered
// list, not a mapping, so the insertion order that drives tie-breaking
// survives a save/restore cycle.
type LogEntry struct {
	Params objective.Point `json:"params"`
	Score  float64         `json:"score"`
}

// Checkpoint is a durable snapshot of run progress.
//
// NumEvals is normally the number of logged entries at save time. A finished
// run stores the effective (cadence-padded) ceiling instead, marking the
// checkpoint complete so a later restore short-circuits to result extraction
// without touching a solver.
type Checkpoint struct {
	// Entries is the call log at save time, in evaluation order.
	Entries []LogEntry `json:"logData"`

	// MaxEvals is the evaluation budget the caller originally requested,
	// before cadence rounding. It doubles as the storage key.
	MaxEvals int `json:"maxEvals"`

	// NumEvals is the evaluations consumed at save time (see above).
	NumEvals int `json:"numEvals"`

	// ElapsedSeconds is wall-clock time spent up to the save, accumulated
	// across resumed runs.
	ElapsedSeconds float64 `json:"elapsedTime"`

	// SavedAt records when this checkpoint was written.
	SavedAt time.Time `json:"savedAt"`
}

// CheckpointInfo is checkpoint metadata without the log payload, used for
// listing without loading large logs.
type CheckpointInfo struct {
	MaxEvals       int       `json:"maxEvals"`
	NumEvals       int       `json:"numEvals"`
	LogSize        int       `json:"logSize"`
	ElapsedSeconds float64   `json:"elapsedTime"`
	SavedAt        time.Time `json:"savedAt"`
	Path           string    `json:"path"`
}

// NewCheckpoint builds a checkpoint from live run state.
func NewCheckpoint(entries []objective.Entry, maxEvals, numEvals int, elapsed time.Duration) *Checkpoint {
	logged := make([]LogEntry, len(entries))
	for i, e := range entries {
		logged[i] = LogEntry{Params: e.Point, Score: e.Score}
	}
	return &Checkpoint{
		Entries:        logged,
		MaxEvals:       maxEvals,
		NumEvals:       numEvals,
		ElapsedSeconds: elapsed.Seconds(),
		SavedAt:        time.Now(),
	}
}

// LogEntries converts the persisted entries back to call-log entries in
// their stored order.
func (c *Checkpoint) LogEntries() []objective.Entry {
	entries := make([]objective.Entry, len(c.Entries))
	for i, e := range c.Entries {
		entries[i] = objective.Entry{Point: e.Params, Score: e.Score}
	}
	return entries
}

// ToInfo converts a full checkpoint to its metadata form.
func (c *Checkpoint) ToInfo(path string) CheckpointInfo {
	return CheckpointInfo{
		MaxEvals:       c.MaxEvals,
		NumEvals:       c.NumEvals,
		LogSize:        len(c.Entries),
		ElapsedSeconds: c.ElapsedSeconds,
		SavedAt:        c.SavedAt,
		Path:           path,
	}
}

// Validate checks that the checkpoint carries usable data.
func (c *Checkpoint) Validate() error {
	if c.Entries == nil {
		return &CorruptError{Reason: "missing log data"}
	}
	if c.MaxEvals < 0 {
		return &CorruptError{Reason: "negative max evals"}
	}
	if c.NumEvals < 0 {
		return &CorruptError{Reason: "negative consumed evals"}
	}
	if c.ElapsedSeconds < 0 {
		return &CorruptError{Reason: "negative elapsed time"}
	}
	for i, e := range c.Entries {
		if len(e.Params) == 0 {
			return &CorruptError{Reason: fmt.Sprintf("log entry %d has no parameters", i)}
		}
	}
	return nil
}
