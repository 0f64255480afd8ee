// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package simtest generates random but well-formed simulation
// configurations for property-based tests. Graphs are built in layers so
// that dependency edges always point backwards, which keeps every generated
// configuration acyclic by construction.
package simtest

import (
	"fmt"

	"pgregory.net/rapid"

	masim "github.com/ChristielBel/multi-agent-modeling"
)

// Config bounds the generated scenarios.
type Config struct {
	MaxModules         int
	MaxAgents          int
	MaxEdgesPerModule  int
	MinLoad            float64
	MaxLoad            float64
	FailureProbability float64
	MaxEvents          int
}

var DefaultConfig = Config{
	MaxModules:        12,
	MaxAgents:         5,
	MaxEdgesPerModule: 3,
	MinLoad:           0.5,
	MaxLoad:           10,
	MaxEvents:         100000,
}

// Draw produces one random engine configuration within the bounds of c.
func Draw(t *rapid.T, c Config) masim.Config {
	moduleCount := rapid.IntRange(1, c.MaxModules).Draw(t, "moduleCount")
	agentCount := rapid.IntRange(1, c.MaxAgents).Draw(t, "agentCount")

	modules := make([]masim.Module, moduleCount)
	for i := range modules {
		name := fmt.Sprintf("m%02d", i)
		m := masim.Module{
			ID:   name,
			Load: rapid.Float64Range(c.MinLoad, c.MaxLoad).Draw(t, name+".load"),
		}
		if i > 0 {
			edgeCount := rapid.IntRange(0, min(i, c.MaxEdgesPerModule)).Draw(t, name+".edgeCount")
			for _, pi := range rapid.Permutation(indexes(i)).Draw(t, name+".preds")[:edgeCount] {
				m.Predecessors = append(m.Predecessors, fmt.Sprintf("m%02d", pi))
			}
		}
		modules[i] = m
	}

	agents := make([]masim.Agent, agentCount)
	for i := range agents {
		agents[i] = masim.Agent{ID: fmt.Sprintf("a%d", i)}
	}
	wireTopology(t, agents)

	// Round-robin initial assignment, as in the scenario defaults.
	for i := range modules {
		a := &agents[i%agentCount]
		a.Modules = append(a.Modules, modules[i].ID)
	}

	return masim.Config{
		Modules:            modules,
		Agents:             agents,
		Policy:             DrawPolicy(t),
		Seed:               rapid.Int64().Draw(t, "seed"),
		FailureProbability: c.FailureProbability,
		MaxEvents:          c.MaxEvents,
	}
}

// DrawPolicy picks one of the four rebalancing policies.
func DrawPolicy(t *rapid.T) masim.Policy {
	return rapid.SampledFrom([]masim.Policy{
		masim.PolicySimple,
		masim.PolicySmart,
		masim.PolicyLeastFinishTime,
		masim.PolicySwarm,
	}).Draw(t, "policy")
}

// wireTopology connects the agents with one of three shapes: a path, a ring,
// or a complete graph. Neighbor links are symmetric.
func wireTopology(t *rapid.T, agents []masim.Agent) {
	if len(agents) < 2 {
		return
	}
	link := func(i, j int) {
		agents[i].Neighbors = append(agents[i].Neighbors, agents[j].ID)
		agents[j].Neighbors = append(agents[j].Neighbors, agents[i].ID)
	}
	switch rapid.SampledFrom([]string{"path", "ring", "full"}).Draw(t, "topology") {
	case "path":
		for i := 0; i < len(agents)-1; i++ {
			link(i, i+1)
		}
	case "ring":
		for i := 0; i < len(agents)-1; i++ {
			link(i, i+1)
		}
		if len(agents) > 2 {
			link(len(agents)-1, 0)
		}
	case "full":
		for i := 0; i < len(agents); i++ {
			for j := i + 1; j < len(agents); j++ {
				link(i, j)
			}
		}
	}
}

func indexes(n int) []int {
	ix := make([]int, n)
	for i := range ix {
		ix[i] = i
	}
	return ix
}
