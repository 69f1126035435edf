package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cwbudde/boxtune/internal/driver"
	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir   string
	resumeObjective string
	resumeParams    []string
	resumeBoxSpecs  []string
	resumeSolver    string
	resumeEvals     int
	resumeMinimize  bool
	resumeSeed      int64
	resumeTrace     string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [budget]",
	Short: "Resume an interrupted optimization from its checkpoint",
	Long: `Resumes a checkpointed optimization. The checkpoint stores the evaluation
log but not the objective, so the same objective and bounds must be given
again. The budget argument selects which checkpoint file to resume from;
--evals may raise the budget beyond the original one.`,
	Args: cobra.ExactArgs(1),
	RunE: resumeOptimization,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", ".", "Directory holding the checkpoint files")
	resumeCmd.Flags().StringVar(&resumeObjective, "objective", "sphere", "Benchmark objective the run was started with")
	resumeCmd.Flags().StringSliceVar(&resumeParams, "param", []string{"x"}, "Parameter names to optimize over")
	resumeCmd.Flags().StringSliceVar(&resumeBoxSpecs, "box", nil, "Bounds per parameter as name=lower:upper")
	resumeCmd.Flags().StringVar(&resumeSolver, "solver", "", "Solver to use")
	resumeCmd.Flags().IntVar(&resumeEvals, "evals", 0, "New evaluation budget (0 keeps the checkpoint's budget)")
	resumeCmd.Flags().BoolVar(&resumeMinimize, "minimize", false, "Minimize instead of the objective's natural direction")
	resumeCmd.Flags().Int64Var(&resumeSeed, "seed", 42, "Random seed")
	resumeCmd.Flags().StringVar(&resumeTrace, "trace", "", "Append a JSONL evaluation trace to this file")

	rootCmd.AddCommand(resumeCmd)
}

func resumeOptimization(cmd *cobra.Command, args []string) error {
	budget, err := strconv.Atoi(args[0])
	if err != nil || budget <= 0 {
		return fmt.Errorf("invalid budget %q: want a positive integer", args[0])
	}

	path := filepath.Join(resumeDataDir, store.CheckpointFileName(budget))

	benchmark, err := objective.GetBenchmark(resumeObjective)
	if err != nil {
		return err
	}
	maximize := benchmark.Maximize && !resumeMinimize

	box := make(objective.Box, len(resumeParams))
	for _, name := range resumeParams {
		box[name] = benchmark.DefaultBox
	}
	for _, spec := range resumeBoxSpecs {
		name, bounds, err := parseBoxSpec(spec)
		if err != nil {
			return err
		}
		box[name] = bounds
	}

	fn := benchmark.Eval
	if resumeTrace != "" {
		tw, err := store.NewTraceWriter(resumeTrace, true)
		if err != nil {
			return err
		}
		defer tw.Close()
		fn = tracedFunc(fn, tw)
	}

	cfg := driver.RunConfig{
		NumEvals:    resumeEvals,
		SolverName:  resumeSolver,
		Seed:        resumeSeed,
		SaveDir:     resumeDataDir,
		RestorePath: path,
	}

	start := time.Now()
	var result *driver.Result
	if maximize {
		result, err = driver.Maximize(fn, box, cfg)
	} else {
		result, err = driver.Minimize(fn, box, cfg)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Solver:     %s\n", result.Solver)
	fmt.Printf("Best point: %s\n", result.Solution)
	fmt.Printf("Optimum:    %g\n", result.Optimum)
	fmt.Printf("Evals:      %d (%.2fs elapsed, %.2fs this run)\n",
		result.Stats.NumEvals, result.Stats.Elapsed.Seconds(), time.Since(start).Seconds())

	return nil
}
