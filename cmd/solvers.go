package main

import (
	"fmt"

	"github.com/cwbudde/boxtune/internal/objective"
	"github.com/cwbudde/boxtune/internal/opt"
	"github.com/spf13/cobra"
)

var solversCmd = &cobra.Command{
	Use:   "solvers",
	Short: "List available solvers and benchmark objectives",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Solvers:")
		for _, name := range opt.Names() {
			marker := ""
			if name == opt.DefaultSolverName {
				marker = " (default)"
			}
			fmt.Printf("  %s%s\n", name, marker)
		}

		fmt.Println("\nObjectives:")
		for _, name := range objective.BenchmarkNames() {
			bench, err := objective.GetBenchmark(name)
			if err != nil {
				return err
			}
			direction := "minimize"
			if bench.Maximize {
				direction = "maximize"
			}
			fmt.Printf("  %s (%s): %s\n", name, direction, bench.Description)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(solversCmd)
}
