package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/boxtune/internal/driver"
	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/opt"
	"github.com/cwbudde/boxtune/internal/store"
	"github.com/spf13/cobra"
)

var (
	objectiveName string
	paramNames    []string
	boxSpecs      []string
	solverName    string
	numEvals      int
	minimizeFlag  bool
	seed          int64
	saveDir       string
	restorePath   string
	assumeYes     bool
	tracePath     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a budgeted optimization",
	Long: `Runs a black-box optimization of a named benchmark objective under an
evaluation budget. With --save-dir, progress is checkpointed every few
evaluations so an interrupted run can be resumed later.`,
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&objectiveName, "objective", "sphere", "Benchmark objective to optimize")
	runCmd.Flags().StringSliceVar(&paramNames, "param", []string{"x"}, "Parameter names to optimize over")
	runCmd.Flags().StringSliceVar(&boxSpecs, "box", nil, "Bounds per parameter as name=lower:upper (default: objective's bounds)")
	runCmd.Flags().StringVar(&solverName, "solver", "", "Solver to use (default: "+opt.DefaultSolverName+")")
	runCmd.Flags().IntVar(&numEvals, "evals", 0, "Evaluation budget (0 = default, or checkpoint's budget on restore)")
	runCmd.Flags().BoolVar(&minimizeFlag, "minimize", false, "Minimize instead of the objective's natural direction")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().StringVar(&saveDir, "save-dir", "", "Directory for periodic checkpoints")
	runCmd.Flags().StringVar(&restorePath, "restore", "", "Checkpoint file to resume from")
	runCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Overwrite an existing checkpoint without asking")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write a JSONL evaluation trace to this file")

	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	benchmark, err := objective.GetBenchmark(objectiveName)
	if err != nil {
		return err
	}

	maximize := benchmark.Maximize && !minimizeFlag

	box, err := buildRunBox(benchmark)
	if err != nil {
		return err
	}

	fn := benchmark.Eval

	// A trace captures every raw evaluation; resumes append to it.
	if tracePath != "" {
		tw, err := store.NewTraceWriter(tracePath, restorePath != "")
		if err != nil {
			return err
		}
		defer tw.Close()
		fn = tracedFunc(fn, tw)
	}

	cfg := driver.RunConfig{
		NumEvals:    numEvals,
		SolverName:  solverName,
		Seed:        seed,
		SaveDir:     saveDir,
		RestorePath: restorePath,
		Confirm:     confirmOverwrite,
	}
	if assumeYes {
		cfg.Confirm = func() bool { return true }
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

// buildRunBox assembles bounds from --box flags, falling back to the
// objective's default bounds for unnamed parameters.
func buildRunBox(benchmark objective.Benchmark) (objective.Box, error) {
	box := make(objective.Box, len(paramNames))
	for _, name := range paramNames {
		box[name] = benchmark.DefaultBox
	}
	for _, spec := range boxSpecs {
		name, bounds, err := parseBoxSpec(spec)
		if err != nil {
			return nil, err
		}
		box[name] = bounds
	}
	return box, nil
}

// parseBoxSpec parses "name=lower:upper".
func parseBoxSpec(spec string) (string, [2]float64, error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", [2]float64{}, fmt.Errorf("invalid box spec %q: want name=lower:upper", spec)
	}
	loStr, hiStr, ok := strings.Cut(rest, ":")
	if !ok {
		return "", [2]float64{}, fmt.Errorf("invalid box spec %q: want name=lower:upper", spec)
	}
	lo, err := strconv.ParseFloat(loStr, 64)
	if err != nil {
		return "", [2]float64{}, fmt.Errorf("invalid lower bound in %q: %w", spec, err)
	}
	hi, err := strconv.ParseFloat(hiStr, 64)
	if err != nil {
		return "", [2]float64{}, fmt.Errorf("invalid upper bound in %q: %w", spec, err)
	}
	return name, [2]float64{lo, hi}, nil
}

// tracedFunc wraps fn so every raw evaluation lands in the trace file.
func tracedFunc(fn objective.Func, tw *store.TraceWriter) objective.Func {
	index := 0
	return func(p objective.Point) (float64, error) {
		score, err := fn(p)
		if err != nil {
			return 0, err
		}
		index++
		entry := store.TraceEntry{
			Index:     index,
			Params:    p,
			Score:     score,
			Timestamp: time.Now(),
		}
		if werr := tw.Write(entry); werr != nil {
			return 0, werr
		}
		return score, nil
	}
}

// confirmOverwrite asks on the terminal before an existing checkpoint is
// overwritten.
func confirmOverwrite() bool {
	fmt.Print("You are about to overwrite an existing save. Proceed? [y/N]: ")
	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
