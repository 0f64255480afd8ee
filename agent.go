// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package masim

import "slices"

// An Agent is a single-capacity worker. It executes at most one module at any
// simulated instant and serializes its own work through availableAt, the
// earliest time it can start a new module. The neighbor set describes the
// transfer topology consulted by rebalancing policies; execution itself never
// reads it.
type Agent struct {
	ID        string
	Neighbors []string
	Modules   []string // initial assignment, ownership may change during a run

	assigned    map[string]struct{}
	neighborSet map[string]struct{}
	availableAt float64
}

// AvailableAt returns the earliest simulated time the agent can start a new
// module.
func (a *Agent) AvailableAt() float64 {
	return a.availableAt
}

// Assigned returns the ids of the modules currently owned by the agent, in
// sorted order.
func (a *Agent) Assigned() []string {
	ids := make([]string, 0, len(a.assigned))
	for id := range a.assigned {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (a *Agent) isNeighbor(id string) bool {
	_, ok := a.neighborSet[id]
	return ok
}

// remainingLoad sums the loads of the agent's assigned modules that are
// neither finished nor running. Running work is excluded because a policy may
// not move it anyway.
func (a *Agent) remainingLoad(modules map[string]*Module) float64 {
	var load float64
	for id := range a.assigned {
		if m := modules[id]; m.startable() {
			load += m.Load
		}
	}
	return load
}
