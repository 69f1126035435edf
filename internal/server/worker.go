package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cwbudde/boxtune/internal/driver"
	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/opt"
)

// runJob executes an optimization job in the background.
func runJob(ctx context.Context, jm *JobManager, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "objective", job.Config.Objective, "budget", job.Config.NumEvals)

	benchmark, err := objective.GetBenchmark(job.Config.Objective)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	maximize := benchmark.Maximize
	if job.Config.Maximize != nil {
		maximize = *job.Config.Maximize
	}

	box := buildBox(job.Config, benchmark)
	if err := box.Validate(); err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	def := math.MaxFloat64
	if maximize {
		def = -math.MaxFloat64
	}
	fn := objective.WrapBoxConstraints(benchmark.Eval, box, def)

	// Instrument the objective so progress is visible while the run is in
	// flight, and so a cancelled context stops the run at the next
	// evaluation.
	var (
		progressMu sync.Mutex
		haveBest   bool
	)
	instrumented := func(p objective.Point) (float64, error) {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		score, err := fn(p)
		if err != nil {
			return 0, err
		}

		progressMu.Lock()
		defer progressMu.Unlock()
		jm.UpdateJob(jobID, func(j *Job) {
			j.NumEvals++
			improved := !haveBest ||
				(maximize && score > j.BestScore) ||
				(!maximize && score < j.BestScore)
			if improved {
				haveBest = true
				j.BestScore = score
				j.BestPoint = p.Clone()
			}
		})
		return score, nil
	}

	solver, err := opt.Suggest(job.Config.Solver, suggestionBudget(job.Config), box, job.Config.Seed)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	d, err := driver.New(driver.Config{
		Solver:      solver,
		Maximize:    maximize,
		MaxEvals:    job.Config.NumEvals,
		SaveDir:     job.Config.SaveDir,
		RestorePath: job.Config.RestorePath,
		Confirm:     func() bool { return job.Config.Overwrite },
	})
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	// Broadcast progress while the driver runs.
	start := time.Now()
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, progressDone)

	result, err := d.Optimize(instrumented)
	close(progressDone)

	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			markJobCancelled(jm, jobID)
			return ctx.Err()
		}
		markJobFailed(jm, jobID, err)
		return err
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestPoint = result.Solution
		j.BestScore = result.Optimum
		j.Optimum = result.Optimum
		j.NumEvals = result.Stats.NumEvals
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", time.Since(start),
		"optimum", result.Optimum,
		"num_evals", result.Stats.NumEvals,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		NumEvals:  result.Stats.NumEvals,
		BestScore: result.Optimum,
		Timestamp: time.Now(),
	})

	return nil
}

// buildBox assembles the search box for a job: explicit bounds win,
// otherwise every named parameter gets the benchmark's default bounds.
func buildBox(config JobConfig, benchmark objective.Benchmark) objective.Box {
	params := config.Params
	if len(params) == 0 {
		params = []string{"x"}
	}

	box := make(objective.Box, len(params))
	for _, name := range params {
		if bounds, ok := config.Box[name]; ok {
			box[name] = bounds
		} else {
			box[name] = benchmark.DefaultBox
		}
	}
	return box
}

// suggestionBudget sizes the solver when the job restores with budget 0.
func suggestionBudget(config JobConfig) int {
	if config.NumEvals > 0 {
		return config.NumEvals
	}
	return driver.DefaultNumEvals
}

// monitorProgress periodically broadcasts progress events during a run.
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     job.State,
				NumEvals:  job.NumEvals,
				BestScore: job.BestScore,
				Timestamp: time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
