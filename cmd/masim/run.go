// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	masim "github.com/ChristielBel/multi-agent-modeling"
	"github.com/ChristielBel/multi-agent-modeling/internal/scenario"
)

var runQuiet bool

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "execute one scenario and print its event log",
	Example: `  # Run a scenario and print the event log plus a summary
  masim run scenario.yaml

  # Summary only
  masim run --quiet scenario.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runScenario,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress the event log, print only the summary")
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	file, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	cfg, err := file.Config()
	if err != nil {
		return err
	}
	cfg.Logger = logger

	criticalPath, err := masim.CriticalPath(cfg.Modules)
	if err != nil {
		return err
	}

	sim, err := masim.New(cfg)
	if err != nil {
		return err
	}

	logger.Info("run starting",
		zap.String("scenario", file.Name),
		zap.Stringer("policy", cfg.Policy),
		zap.Float64("failureProbability", cfg.FailureProbability),
		zap.Int64("seed", cfg.Seed),
	)

	makespan, runErr := sim.Run()
	log := sim.Log()

	if !runQuiet {
		if _, err := log.WriteTo(os.Stdout); err != nil {
			return err
		}
	}

	switch {
	case runErr == nil:
		fmt.Printf("makespan=%.3f criticalPath=%.3f events=%d failures=%d rebalances=%d\n",
			makespan, criticalPath, sim.Events(),
			log.Count(masim.KindFailure), log.Count(masim.KindRebalance))
		return nil
	case errors.Is(runErr, masim.ErrEventBudget):
		fmt.Printf("event budget exhausted after %d events, makespan so far %.3f\n",
			sim.Events(), makespan)
		return runErr
	default:
		return runErr
	}
}
