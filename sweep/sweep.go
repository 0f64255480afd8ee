// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sweep repeats simulation runs across a parameter grid of
// rebalancing policies and failure probabilities and aggregates per-cell
// makespan statistics. Cell seeds are derived arithmetically from the base
// seed, so a whole sweep is as reproducible as a single run.
package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	masim "github.com/ChristielBel/multi-agent-modeling"
)

// Makespans are recorded in the histogram as micro time units so that
// fractional loads survive the integer conversion.
const unitsPerTime = 1e6

const histogramMax = int64(1) << 42

// Grid describes a sweep: its base configuration and the axes to vary. The
// base configuration's own policy, probability and seed are ignored.
type Grid struct {
	Base                 masim.Config
	Policies             []masim.Policy
	FailureProbabilities []float64
	Repetitions          int
	BaseSeed             int64
}

// Cell aggregates the runs of one (policy, failureProbability) grid point.
type Cell struct {
	Policy             masim.Policy
	FailureProbability float64
	Runs               int
	Completed          int
	Exhausted          int // event budget hit before the timeline drained
	Failures           int
	Rebalances         int

	makespans *hdrhistogram.Histogram
}

// MakespanMean returns the mean makespan over the cell's completed runs.
func (c *Cell) MakespanMean() float64 {
	return c.makespans.Mean() / unitsPerTime
}

// MakespanQuantile returns the makespan at the given quantile (0-100).
func (c *Cell) MakespanQuantile(q float64) float64 {
	return float64(c.makespans.ValueAtQuantile(q)) / unitsPerTime
}

// MakespanMin returns the smallest observed makespan.
func (c *Cell) MakespanMin() float64 {
	return float64(c.makespans.Min()) / unitsPerTime
}

// MakespanMax returns the largest observed makespan.
func (c *Cell) MakespanMax() float64 {
	return float64(c.makespans.Max()) / unitsPerTime
}

// Report is the outcome of one sweep. ID tags the sweep in persisted output
// so rows from different invocations can be told apart.
type Report struct {
	ID    string
	Cells []Cell
}

// Run executes the grid. Each repetition builds a fresh simulation with a
// seed derived from (base seed, cell index, repetition), runs it, and folds
// the outcome into the cell. A deadlocked or mis-configured cell aborts the
// sweep: both indicate a broken scenario, not a stochastic outcome.
func Run(g Grid, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if g.Repetitions <= 0 {
		return nil, fmt.Errorf("sweep: repetitions must be positive, got %d", g.Repetitions)
	}
	if len(g.Policies) == 0 || len(g.FailureProbabilities) == 0 {
		return nil, fmt.Errorf("sweep: empty grid")
	}

	report := &Report{ID: uuid.NewString()}
	logger.Info("sweep starting",
		zap.String("id", report.ID),
		zap.Int("policies", len(g.Policies)),
		zap.Int("probabilities", len(g.FailureProbabilities)),
		zap.Int("repetitions", g.Repetitions),
	)

	cellIndex := 0
	for _, policy := range g.Policies {
		for _, prob := range g.FailureProbabilities {
			cell := Cell{
				Policy:             policy,
				FailureProbability: prob,
				makespans:          hdrhistogram.New(1, histogramMax, 3),
			}

			for rep := 0; rep < g.Repetitions; rep++ {
				cfg := g.Base
				cfg.Policy = policy
				cfg.FailureProbability = prob
				cfg.Seed = g.BaseSeed + int64(cellIndex)*int64(g.Repetitions) + int64(rep)

				sim, err := masim.New(cfg)
				if err != nil {
					return nil, fmt.Errorf("sweep cell %v/%v: %w", policy, prob, err)
				}

				makespan, err := sim.Run()
				cell.Runs++
				switch {
				case err == nil:
					cell.Completed++
					if err := cell.makespans.RecordValue(toUnits(makespan)); err != nil {
						return nil, fmt.Errorf("sweep cell %v/%v: %w", policy, prob, err)
					}
				case isEventBudget(err):
					cell.Exhausted++
				default:
					return nil, fmt.Errorf("sweep cell %v/%v: %w", policy, prob, err)
				}
				log := sim.Log()
				cell.Failures += log.Count(masim.KindFailure)
				cell.Rebalances += log.Count(masim.KindRebalance)
			}

			logger.Info("sweep cell done",
				zap.Stringer("policy", policy),
				zap.Float64("failureProbability", prob),
				zap.Int("completed", cell.Completed),
				zap.Int("exhausted", cell.Exhausted),
				zap.Float64("makespanMean", cell.MakespanMean()),
			)
			report.Cells = append(report.Cells, cell)
			cellIndex++
		}
	}
	return report, nil
}

func toUnits(makespan float64) int64 {
	v := int64(math.Round(makespan * unitsPerTime))
	if v < 1 {
		v = 1
	}
	return v
}

func isEventBudget(err error) bool {
	return errors.Is(err, masim.ErrEventBudget)
}
