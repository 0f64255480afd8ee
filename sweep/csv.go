// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var csvHeader = []string{
	"run_id",
	"policy",
	"failure_probability",
	"runs",
	"completed",
	"exhausted",
	"failures",
	"rebalances",
	"makespan_mean",
	"makespan_p50",
	"makespan_p99",
	"makespan_min",
	"makespan_max",
}

// WriteCSV renders the report as one row per grid cell.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range r.Cells {
		c := &r.Cells[i]
		row := []string{
			r.ID,
			c.Policy.String(),
			formatFloat(c.FailureProbability),
			strconv.Itoa(c.Runs),
			strconv.Itoa(c.Completed),
			strconv.Itoa(c.Exhausted),
			strconv.Itoa(c.Failures),
			strconv.Itoa(c.Rebalances),
			formatFloat(c.MakespanMean()),
			formatFloat(c.MakespanQuantile(50)),
			formatFloat(c.MakespanQuantile(99)),
			formatFloat(c.MakespanMin()),
			formatFloat(c.MakespanMax()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the report to the named file, creating or truncating
// it.
func (r *Report) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write sweep results: %w", err)
	}
	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write sweep results: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
