// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package masim

import (
	"fmt"

	"github.com/gammazero/deque"
)

// A Module is a schedulable unit of work with a fixed cost and precedence
// edges into the rest of the graph. Predecessors and successors must describe
// a DAG; [New] rejects cyclic inputs.
//
// The finished and running flags are owned by the engine. A module is never
// both at once, and it transitions to finished at most once per run.
type Module struct {
	ID           string
	Load         float64
	Predecessors []string
	Successors   []string

	finished bool
	running  bool
}

// Finished reports whether the module has completed successfully.
func (m *Module) Finished() bool {
	return m.finished
}

// Running reports whether the module is currently in flight on some agent.
func (m *Module) Running() bool {
	return m.running
}

// startable reports whether the module could be picked up by a readiness
// scan, ignoring the state of its predecessors.
func (m *Module) startable() bool {
	return !m.finished && !m.running
}

// topologicalOrder returns the module ids in an order where every module
// appears after all of its predecessors. Returns [ErrCycle] if no such order
// exists. The successor adjacency is derived from the predecessor lists so
// that an inconsistent Successors field cannot skew the traversal, and
// iteration is driven by the caller-supplied id order so the result is
// deterministic for a fixed input.
func topologicalOrder(ids []string, modules map[string]*Module) ([]string, error) {
	indegree := make(map[string]int, len(ids))
	successors := make(map[string][]string, len(ids))
	for _, id := range ids {
		indegree[id] = len(modules[id].Predecessors)
		for _, pred := range modules[id].Predecessors {
			successors[pred] = append(successors[pred], id)
		}
	}

	var queue deque.Deque[string]
	for _, id := range ids {
		if indegree[id] == 0 {
			queue.PushBack(id)
		}
	}

	order := make([]string, 0, len(ids))
	for queue.Len() > 0 {
		id := queue.PopFront()
		order = append(order, id)
		for _, succ := range successors[id] {
			indegree[succ]--
			if indegree[succ] == 0 {
				queue.PushBack(succ)
			}
		}
	}

	if len(order) != len(ids) {
		stuck := make([]string, 0, len(ids)-len(order))
		for _, id := range ids {
			if indegree[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrCycle, stuck)
	}
	return order, nil
}

// CriticalPath returns the maximum summed load over all root-to-sink paths of
// the given module graph. With a failure probability of zero no schedule can
// complete in less simulated time, whatever the agent topology.
func CriticalPath(modules []Module) (float64, error) {
	byID := make(map[string]*Module, len(modules))
	ids := make([]string, 0, len(modules))
	for i := range modules {
		m := &modules[i]
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	order, err := topologicalOrder(ids, byID)
	if err != nil {
		return 0, err
	}

	longest := make(map[string]float64, len(modules))
	var result float64
	for _, id := range order {
		m := byID[id]
		var viaPreds float64
		for _, pred := range m.Predecessors {
			viaPreds = max(viaPreds, longest[pred])
		}
		longest[id] = viaPreds + m.Load
		result = max(result, longest[id])
	}
	return result, nil
}
