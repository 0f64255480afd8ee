// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package masim

import "fmt"

// Policy selects one of the load-rebalancing algorithms invoked after every
// successful module completion. All four operate only on modules that are
// neither running nor finished, and every move they make is appended to the
// event log.
type Policy uint8

const (
	// PolicySimple moves one module from the agent with the maximum
	// remaining load to the agent with the minimum remaining load whenever
	// the spread exceeds a small epsilon.
	PolicySimple Policy = iota

	// PolicySmart moves one module from an agent whose remaining load
	// exceeds 1.2x the mean to a direct neighbor below 0.8x the mean,
	// stopping after the first successful move.
	PolicySmart

	// PolicyLeastFinishTime reassigns every not-yet-started module to the
	// agent minimizing availableAt plus remaining load.
	PolicyLeastFinishTime

	// PolicySwarm compares every agent against each of its neighbors and
	// moves one module from the heavier side whenever the load difference
	// exceeds a fixed threshold, at most one move per agent.
	PolicySwarm
)

// Load spread below this is considered balanced by PolicySimple.
const rebalanceEpsilon = 1e-9

// Minimum neighbor load difference that makes PolicySwarm act.
const swarmThreshold = 1.0

func (p Policy) String() string {
	switch p {
	case PolicySimple:
		return "simple"
	case PolicySmart:
		return "smart"
	case PolicyLeastFinishTime:
		return "leastFinishTime"
	case PolicySwarm:
		return "swarm"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy converts a policy name as it appears in scenario files into a
// [Policy] value.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "simple":
		return PolicySimple, nil
	case "smart":
		return PolicySmart, nil
	case "leastFinishTime":
		return PolicyLeastFinishTime, nil
	case "swarm":
		return PolicySwarm, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadPolicy, name)
	}
}

// rebalance redistributes unfinished, non-running modules across agents
// according to the configured policy. It runs synchronously inside a
// completion event, strictly before the deferred readiness re-scan, so any
// reassignment is visible to the next scan.
func (s *Simulation) rebalance(now float64) {
	switch s.policy {
	case PolicySimple:
		s.rebalanceSimple(now)
	case PolicySmart:
		s.rebalanceSmart(now)
	case PolicyLeastFinishTime:
		s.rebalanceLeastFinishTime(now)
	case PolicySwarm:
		s.rebalanceSwarm(now)
	default:
		panic(fmt.Sprintf("invalid policy %v", s.policy))
	}
}

// moveModule transfers ownership of a module between agents. It refuses
// running and finished modules, so a policy bug cannot corrupt in-flight
// state. Returns true if the move happened.
func (s *Simulation) moveModule(moduleID, from, to string, now float64) bool {
	m := s.modules[moduleID]
	if m == nil || !m.startable() || from == to {
		return false
	}
	src := s.agents[from]
	dst := s.agents[to]
	if _, owned := src.assigned[moduleID]; !owned {
		return false
	}
	delete(src.assigned, moduleID)
	dst.assigned[moduleID] = struct{}{}
	s.owners[moduleID] = to
	s.log.append(Record{Time: now, Kind: KindRebalance, Module: moduleID, From: from, To: to})
	s.debug("rebalance", moduleID, from+"->"+to, now)
	return true
}

// firstMovable returns the lowest-id assigned module of the agent that is
// eligible to move, or "" if there is none.
func (s *Simulation) firstMovable(a *Agent) string {
	for _, id := range a.Assigned() {
		if s.modules[id].startable() {
			return id
		}
	}
	return ""
}

func (s *Simulation) rebalanceSimple(now float64) {
	var maxAgent, minAgent *Agent
	var maxLoad, minLoad float64
	for _, id := range s.agentIDs {
		a := s.agents[id]
		load := a.remainingLoad(s.modules)
		if maxAgent == nil || load > maxLoad {
			maxAgent, maxLoad = a, load
		}
		if minAgent == nil || load < minLoad {
			minAgent, minLoad = a, load
		}
	}
	if maxAgent == nil || maxAgent == minAgent || maxLoad-minLoad <= rebalanceEpsilon {
		return
	}
	if id := s.firstMovable(maxAgent); id != "" {
		s.moveModule(id, maxAgent.ID, minAgent.ID, now)
	}
}

func (s *Simulation) rebalanceSmart(now float64) {
	var total float64
	for _, id := range s.agentIDs {
		total += s.agents[id].remainingLoad(s.modules)
	}
	mean := total / float64(len(s.agentIDs))

	for _, id := range s.agentIDs {
		heavy := s.agents[id]
		if heavy.remainingLoad(s.modules) <= 1.2*mean {
			continue
		}
		for _, nid := range s.agentIDs {
			if !heavy.isNeighbor(nid) {
				continue
			}
			light := s.agents[nid]
			if light.remainingLoad(s.modules) >= 0.8*mean {
				continue
			}
			if mid := s.firstMovable(heavy); mid != "" && s.moveModule(mid, heavy.ID, light.ID, now) {
				return
			}
		}
	}
}

func (s *Simulation) rebalanceLeastFinishTime(now float64) {
	for _, mid := range s.moduleIDs {
		m := s.modules[mid]
		if !m.startable() {
			continue
		}
		var best *Agent
		var bestFinish float64
		for _, aid := range s.agentIDs {
			a := s.agents[aid]
			finish := a.availableAt + a.remainingLoad(s.modules)
			if best == nil || finish < bestFinish {
				best, bestFinish = a, finish
			}
		}
		if best != nil && best.ID != s.owners[mid] {
			s.moveModule(mid, s.owners[mid], best.ID, now)
		}
	}
}

func (s *Simulation) rebalanceSwarm(now float64) {
	for _, aid := range s.agentIDs {
		a := s.agents[aid]
		for _, nid := range s.agentIDs {
			if !a.isNeighbor(nid) {
				continue
			}
			n := s.agents[nid]
			diff := a.remainingLoad(s.modules) - n.remainingLoad(s.modules)
			heavier, lighter := a, n
			if diff < 0 {
				heavier, lighter, diff = n, a, -diff
			}
			if diff <= swarmThreshold {
				continue
			}
			if id := s.firstMovable(heavier); id != "" && s.moveModule(id, heavier.ID, lighter.ID, now) {
				break
			}
		}
	}
}
