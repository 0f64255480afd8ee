// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package masim_test

import (
	"fmt"
	"os"

	masim "github.com/ChristielBel/multi-agent-modeling"
)

func Example() {
	s, err := masim.New(masim.Config{
		Modules: []masim.Module{
			{ID: "A", Load: 1},
			{ID: "B", Load: 2, Predecessors: []string{"A"}},
		},
		Agents: []masim.Agent{
			{ID: "a0", Modules: []string{"A", "B"}},
		},
		Policy:    masim.PolicySimple,
		MaxEvents: 100,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	makespan, err := s.Run()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	s.Log().WriteTo(os.Stdout)
	fmt.Printf("makespan: %v\n", makespan)
	// Output:
	// t=0.000 start A on a0
	// t=1.000 success A on a0
	// t=1.000 start B on a0
	// t=3.000 success B on a0
	// makespan: 3
}
