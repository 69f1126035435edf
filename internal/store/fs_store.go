package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Each checkpoint lives in a single JSON file named after its budget key:
// <baseDir>/boxtune_save_<E>_evals.json
//
// Thread-safety: writes use atomic file operations (temp file + rename) and
// do not require locks.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// CheckpointFileName returns the file name used for the given budget key.
func CheckpointFileName(budget int) string {
	return fmt.Sprintf("boxtune_save_%d_evals.json", budget)
}

// Path returns the checkpoint file path for the given budget key.
func (fs *FSStore) Path(budget int) string {
	return filepath.Join(fs.baseDir, CheckpointFileName(budget))
}

// SaveCheckpoint atomically saves a checkpoint under the given budget key.
// Uses temp file + rename so a crash mid-write never leaves a torn record.
func (fs *FSStore) SaveCheckpoint(budget int, checkpoint *Checkpoint) error {
	if checkpoint == nil {
		return fmt.Errorf("checkpoint cannot be nil")
	}
	if budget < 0 {
		return fmt.Errorf("budget key cannot be negative")
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}

	finalPath := fs.Path(budget)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}

	slog.Debug("Checkpoint saved", "budget", budget, "path", finalPath, "entries", len(checkpoint.Entries))
	return nil
}

// LoadCheckpoint reads a checkpoint record from the given path.
func (fs *FSStore) LoadCheckpoint(path string) (*Checkpoint, error) {
	return LoadCheckpointFile(path)
}

// LoadCheckpointFile reads and validates a checkpoint record from an
// arbitrary path. Restores accept caller-supplied paths, so this does not
// require the file to live inside a store directory.
func LoadCheckpointFile(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, &CorruptError{Path: path, Reason: err.Error()}
	}
	if err := checkpoint.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("Checkpoint loaded", "path", path, "entries", len(checkpoint.Entries))
	return &checkpoint, nil
}

// Exists reports whether a checkpoint file is present for the budget key.
func (fs *FSStore) Exists(budget int) (bool, error) {
	_, err := os.Stat(fs.Path(budget))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat checkpoint file: %w", err)
	}
	return true, nil
}

// ListCheckpoints returns metadata for all checkpoints in the store.
func (fs *FSStore) ListCheckpoints() ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []CheckpointInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	infos := make([]CheckpointInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := budgetFromFileName(entry.Name()); !ok {
			continue
		}

		path := filepath.Join(fs.baseDir, entry.Name())
		checkpoint, err := LoadCheckpointFile(path)
		if err != nil {
			slog.Warn("Failed to load checkpoint for listing", "path", path, "error", err)
			continue
		}
		infos = append(infos, checkpoint.ToInfo(path))
	}

	slog.Debug("Listed checkpoints", "count", len(infos))
	return infos, nil
}

// DeleteCheckpoint removes the checkpoint stored under the budget key.
func (fs *FSStore) DeleteCheckpoint(budget int) error {
	path := fs.Path(budget)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &NotFoundError{Path: path}
	} else if err != nil {
		return fmt.Errorf("failed to stat checkpoint file: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}

	slog.Debug("Checkpoint deleted", "budget", budget, "path", path)
	return nil
}

// budgetFromFileName parses the budget key out of a checkpoint file name.
func budgetFromFileName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "boxtune_save_")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, "_evals.json")
	if !ok {
		return 0, false
	}
	budget, err := strconv.Atoi(rest)
	if err != nil || budget < 0 {
		return 0, false
	}
	return budget, true
}
