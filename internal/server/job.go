package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// JobConfig describes one optimization run requested over the API.
type JobConfig struct {
	// Objective names a registered benchmark objective.
	Objective string `json:"objective"`

	// Params lists the parameter names to optimize over. Defaults to ["x"].
	Params []string `json:"params,omitempty"`

	// Box overrides the benchmark's default bounds per parameter.
	Box map[string][2]float64 `json:"box,omitempty"`

	// Solver names a registered solver; empty selects the default.
	Solver string `json:"solver,omitempty"`

	// NumEvals is the evaluation budget for the run.
	NumEvals int `json:"numEvals"`

	// Maximize overrides the benchmark's natural direction when non-nil.
	Maximize *bool `json:"maximize,omitempty"`

	// Seed makes the search deterministic.
	Seed int64 `json:"seed"`

	// SaveDir enables periodic checkpointing for the job.
	SaveDir string `json:"saveDir,omitempty"`

	// RestorePath resumes the job from a saved checkpoint.
	RestorePath string `json:"restorePath,omitempty"`

	// Overwrite answers the checkpoint overwrite confirmation; the server
	// has no terminal to ask on.
	Overwrite bool `json:"overwrite,omitempty"`
}

// Job represents an optimization job
type Job struct {
	ID        string          `json:"id"`
	State     JobState        `json:"state"`
	Config    JobConfig       `json:"config"`
	NumEvals  int             `json:"numEvals"`
	BestScore float64         `json:"bestScore"`
	BestPoint objective.Point `json:"bestPoint,omitempty"`
	Optimum   float64         `json:"optimum"`
	StartTime time.Time       `json:"startTime"`
	EndTime   *time.Time      `json:"endTime,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob creates a new job with the given configuration
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job
}

// GetJob retrieves a job by ID
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	return job, exists
}

// ListJobs returns all jobs
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns all jobs currently in the running state
func (jm *JobManager) GetRunningJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	runningJobs := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			runningJobs = append(runningJobs, job)
		}
	}
	return runningJobs
}
