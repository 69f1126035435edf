package store

// Store defines the interface for checkpoint persistence operations.
//
// Checkpoints are keyed by the originally requested evaluation budget, so a
// saved run is addressed as "the run that was asked for N evaluations".
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if a checkpoint doesn't exist (for Load/Delete)
//   - Return ErrCorrupt if a checkpoint exists but cannot be decoded
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveCheckpoint atomically saves a checkpoint under the given budget
	// key, overwriting any previous record for the same key. Implementations
	// should use atomic write strategies (e.g., temp file + rename) to
	// prevent corruption in case of failures.
	SaveCheckpoint(budget int, checkpoint *Checkpoint) error

	// LoadCheckpoint reads a previously saved record from the given path.
	// Returns ErrNotFound if the file is absent and ErrCorrupt if its
	// contents cannot be decoded or fail validation.
	LoadCheckpoint(path string) (*Checkpoint, error)

	// Exists reports whether a checkpoint is already stored under the
	// given budget key.
	Exists(budget int) (bool, error)

	// ListCheckpoints returns metadata for all stored checkpoints.
	// The returned slice may be empty.
	ListCheckpoints() ([]CheckpointInfo, error)

	// DeleteCheckpoint removes the checkpoint stored under the given
	// budget key. Returns ErrNotFound if none exists.
	DeleteCheckpoint(budget int) error
}

// ErrNotFound is returned when a requested checkpoint does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing checkpoint.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return "checkpoint not found: " + e.Path
	}
	return "checkpoint not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ErrCorrupt is returned when a checkpoint exists but cannot be read.
// Use errors.Is(err, ErrCorrupt) to check for this error.
var ErrCorrupt = &CorruptError{}

// CorruptError represents an unreadable or invalid checkpoint.
type CorruptError struct {
	Path   string
	Reason string
}

func (e *CorruptError) Error() string {
	msg := "checkpoint corrupt"
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *CorruptError) Is(target error) bool {
	_, ok := target.(*CorruptError)
	return ok
}
