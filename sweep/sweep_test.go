// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	masim "github.com/ChristielBel/multi-agent-modeling"
)

func pairBase(maxEvents int) masim.Config {
	return masim.Config{
		Modules: []masim.Module{
			{ID: "m1", Load: 2},
			{ID: "m2", Load: 3},
		},
		Agents: []masim.Agent{
			{ID: "a0", Neighbors: []string{"a1"}, Modules: []string{"m1"}},
			{ID: "a1", Neighbors: []string{"a0"}, Modules: []string{"m2"}},
		},
		MaxEvents: maxEvents,
	}
}

func TestRunCompletesAtZeroProbability(t *testing.T) {
	chk := require.New(t)

	report, err := Run(Grid{
		Base:                 pairBase(100000),
		Policies:             []masim.Policy{masim.PolicySimple, masim.PolicySwarm},
		FailureProbabilities: []float64{0},
		Repetitions:          5,
		BaseSeed:             1,
	}, nil)
	chk.NoError(err)
	chk.NotEmpty(report.ID)
	chk.Len(report.Cells, 2)

	for i := range report.Cells {
		c := &report.Cells[i]
		chk.Equal(5, c.Runs)
		chk.Equal(5, c.Completed)
		chk.Equal(0, c.Exhausted)
		chk.Equal(0, c.Failures)
		chk.InDelta(3.0, c.MakespanMean(), 0.01)
		chk.InDelta(3.0, c.MakespanMin(), 0.01)
		chk.InDelta(3.0, c.MakespanMax(), 0.01)
	}
}

func TestRunIsReproducible(t *testing.T) {
	chk := require.New(t)

	grid := Grid{
		Base:                 pairBase(100000),
		Policies:             []masim.Policy{masim.PolicyLeastFinishTime},
		FailureProbabilities: []float64{0, 0.4},
		Repetitions:          10,
		BaseSeed:             99,
	}

	r1, err := Run(grid, nil)
	chk.NoError(err)
	r2, err := Run(grid, nil)
	chk.NoError(err)
	chk.NotEqual(r1.ID, r2.ID)

	chk.Len(r2.Cells, len(r1.Cells))
	for i := range r1.Cells {
		a, b := &r1.Cells[i], &r2.Cells[i]
		chk.Equal(a.Policy, b.Policy)
		chk.Equal(a.FailureProbability, b.FailureProbability)
		chk.Equal(a.Completed, b.Completed)
		chk.Equal(a.Exhausted, b.Exhausted)
		chk.Equal(a.Failures, b.Failures)
		chk.Equal(a.Rebalances, b.Rebalances)
		chk.Equal(a.MakespanMean(), b.MakespanMean())
		chk.Equal(a.MakespanMax(), b.MakespanMax())
	}
}

func TestRunCountsExhaustedRuns(t *testing.T) {
	chk := require.New(t)

	base := masim.Config{
		Modules:   []masim.Module{{ID: "m1", Load: 1}},
		Agents:    []masim.Agent{{ID: "a0", Modules: []string{"m1"}}},
		MaxEvents: 256,
	}
	report, err := Run(Grid{
		Base:                 base,
		Policies:             []masim.Policy{masim.PolicySimple},
		FailureProbabilities: []float64{1},
		Repetitions:          3,
	}, nil)
	chk.NoError(err)

	c := &report.Cells[0]
	chk.Equal(3, c.Runs)
	chk.Equal(0, c.Completed)
	chk.Equal(3, c.Exhausted)
	chk.Greater(c.Failures, 0)
}

func TestRunRejectsEmptyGrid(t *testing.T) {
	chk := require.New(t)

	_, err := Run(Grid{Base: pairBase(100), Policies: []masim.Policy{masim.PolicySimple}}, nil)
	chk.Error(err) // no repetitions

	_, err = Run(Grid{Base: pairBase(100), Repetitions: 1}, nil)
	chk.Error(err) // no axes
}

func TestWriteCSV(t *testing.T) {
	chk := require.New(t)

	report, err := Run(Grid{
		Base:                 pairBase(100000),
		Policies:             []masim.Policy{masim.PolicySimple, masim.PolicySmart},
		FailureProbabilities: []float64{0, 0.2},
		Repetitions:          2,
		BaseSeed:             5,
	}, nil)
	chk.NoError(err)

	var buf bytes.Buffer
	chk.NoError(report.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	chk.NoError(err)
	chk.Len(rows, 5) // header plus one row per cell
	chk.Equal(csvHeader, rows[0])
	for _, row := range rows[1:] {
		chk.Equal(report.ID, row[0])
	}
	chk.Equal("simple", rows[1][1])
	chk.Equal("smart", rows[3][1])
}

func TestWriteCSVFile(t *testing.T) {
	chk := require.New(t)

	report, err := Run(Grid{
		Base:                 pairBase(100000),
		Policies:             []masim.Policy{masim.PolicySimple},
		FailureProbabilities: []float64{0},
		Repetitions:          1,
	}, nil)
	chk.NoError(err)

	path := filepath.Join(t.TempDir(), "results.csv")
	chk.NoError(report.WriteCSVFile(path))

	data, err := os.ReadFile(path)
	chk.NoError(err)
	chk.Contains(string(data), "run_id,policy,failure_probability")
	chk.Contains(string(data), report.ID)
}
