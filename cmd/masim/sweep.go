// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	masim "github.com/ChristielBel/multi-agent-modeling"
	"github.com/ChristielBel/multi-agent-modeling/internal/scenario"
	"github.com/ChristielBel/multi-agent-modeling/sweep"
)

var (
	sweepPolicies      []string
	sweepProbabilities []float64
	sweepRepetitions   int
	sweepOut           string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <scenario.yaml>",
	Short: "repeat a scenario across a policy/failure-probability grid",
	Long: `Sweep runs the scenario's module graph and agent topology across every
combination of the given policies and failure probabilities, repeating each
cell and aggregating makespan statistics. The scenario file's own policy,
failure probability and seed are ignored; its seed field still provides the
sweep's base seed.`,
	Example: `  # Compare all four policies at three failure probabilities
  masim sweep scenario.yaml \
    --policy simple --policy smart --policy leastFinishTime --policy swarm \
    --probability 0 --probability 0.1 --probability 0.3 \
    --repetitions 100 --out results.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepPolicies, "policy", []string{"simple", "smart", "leastFinishTime", "swarm"}, "policy to include (repeatable)")
	sweepCmd.Flags().Float64SliceVar(&sweepProbabilities, "probability", []float64{0, 0.1}, "failure probability to include (repeatable)")
	sweepCmd.Flags().IntVar(&sweepRepetitions, "repetitions", 100, "runs per grid cell")
	sweepCmd.Flags().StringVar(&sweepOut, "out", "results.csv", "CSV output path")
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	file, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	// The sweep supplies its own policy axis, so the scenario may omit the
	// policy field entirely.
	if file.Policy == "" {
		file.Policy = "simple"
	}
	base, err := file.Config()
	if err != nil {
		return err
	}

	policies := make([]masim.Policy, len(sweepPolicies))
	for i, name := range sweepPolicies {
		if policies[i], err = masim.ParsePolicy(name); err != nil {
			return err
		}
	}

	report, err := sweep.Run(sweep.Grid{
		Base:                 base,
		Policies:             policies,
		FailureProbabilities: sweepProbabilities,
		Repetitions:          sweepRepetitions,
		BaseSeed:             file.Seed,
	}, logger)
	if err != nil {
		return err
	}

	if sweepOut == "-" {
		return report.WriteCSV(os.Stdout)
	}
	if err := report.WriteCSVFile(sweepOut); err != nil {
		return err
	}
	logger.Info("sweep finished", zap.String("id", report.ID), zap.String("out", sweepOut))
	fmt.Printf("wrote %d cells to %s\n", len(report.Cells), sweepOut)
	return nil
}
