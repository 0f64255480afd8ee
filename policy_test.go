// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package masim

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// policyFixture builds a simulation over a fully connected three-agent
// topology with one independent module per load, assigned round-robin.
func policyFixture(loads []float64, policy Policy) *Simulation {
	agents := []Agent{
		{ID: "a0", Neighbors: []string{"a1", "a2"}},
		{ID: "a1", Neighbors: []string{"a0", "a2"}},
		{ID: "a2", Neighbors: []string{"a0", "a1"}},
	}
	modules := make([]Module, len(loads))
	for i, load := range loads {
		id := fmt.Sprintf("m%02d", i)
		modules[i] = Module{ID: id, Load: load}
		agents[i%len(agents)].Modules = append(agents[i%len(agents)].Modules, id)
	}
	s, err := New(Config{
		Modules:   modules,
		Agents:    agents,
		Policy:    policy,
		MaxEvents: 100000,
	})
	if err != nil {
		panic(err)
	}
	return s
}

// ownershipConsistent reports whether every module is owned by exactly one
// agent and the owners index agrees with the per-agent sets.
func ownershipConsistent(s *Simulation) bool {
	seen := make(map[string]string, len(s.moduleIDs))
	for _, aid := range s.agentIDs {
		for id := range s.agents[aid].assigned {
			if _, dup := seen[id]; dup {
				return false
			}
			seen[id] = aid
		}
	}
	if len(seen) != len(s.moduleIDs) {
		return false
	}
	for id, aid := range seen {
		if s.owners[id] != aid {
			return false
		}
	}
	return true
}

func genLoads() gopter.Gen {
	return gen.SliceOfN(6, gen.Float64Range(0.1, 10))
}

func TestRebalancePreservesOwnership(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	for _, policy := range []Policy{PolicySimple, PolicySmart, PolicyLeastFinishTime, PolicySwarm} {
		policy := policy
		properties.Property(policy.String()+" keeps one owner per module", prop.ForAll(
			func(loads []float64) bool {
				s := policyFixture(loads, policy)
				s.rebalance(0)
				return ownershipConsistent(s)
			},
			genLoads(),
		))
	}
	properties.TestingRun(t)
}

func TestSimpleMovesFromMaxToMin(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("one move from the heaviest to the lightest agent", prop.ForAll(
		func(loads []float64) bool {
			s := policyFixture(loads, PolicySimple)

			var maxAgent, minAgent string
			var maxLoad, minLoad float64
			for _, aid := range s.agentIDs {
				load := s.agents[aid].remainingLoad(s.modules)
				if maxAgent == "" || load > maxLoad {
					maxAgent, maxLoad = aid, load
				}
				if minAgent == "" || load < minLoad {
					minAgent, minLoad = aid, load
				}
			}

			s.rebalance(0)
			recs := s.log.Records()
			if maxLoad-minLoad <= rebalanceEpsilon {
				return len(recs) == 0
			}
			return len(recs) == 1 &&
				recs[0].Kind == KindRebalance &&
				recs[0].From == maxAgent &&
				recs[0].To == minAgent
		},
		genLoads(),
	))
	properties.TestingRun(t)
}

func TestNeighborPoliciesMoveAlongEdges(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	for _, policy := range []Policy{PolicySmart, PolicySwarm} {
		policy := policy
		properties.Property(policy.String()+" only moves between neighbors", prop.ForAll(
			func(loads []float64) bool {
				s := policyFixture(loads, policy)
				// Break the full mesh into a path: a0 - a1 - a2.
				s.agents["a0"].neighborSet = map[string]struct{}{"a1": {}}
				s.agents["a1"].neighborSet = map[string]struct{}{"a0": {}, "a2": {}}
				s.agents["a2"].neighborSet = map[string]struct{}{"a1": {}}

				s.rebalance(0)
				for _, r := range s.log.Records() {
					if !s.agents[r.From].isNeighbor(r.To) {
						return false
					}
				}
				return true
			},
			genLoads(),
		))
	}
	properties.TestingRun(t)
}

func TestRebalanceNeverMovesRunningOrFinished(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	for _, policy := range []Policy{PolicySimple, PolicySmart, PolicyLeastFinishTime, PolicySwarm} {
		policy := policy
		properties.Property(policy.String()+" leaves in-flight and done modules alone", prop.ForAll(
			func(loads []float64) bool {
				s := policyFixture(loads, policy)
				s.modules["m00"].finished = true
				s.modules["m01"].running = true
				pinnedOwner0 := s.owners["m00"]
				pinnedOwner1 := s.owners["m01"]

				s.rebalance(0)
				for _, r := range s.log.Records() {
					if r.Module == "m00" || r.Module == "m01" {
						return false
					}
				}
				return s.owners["m00"] == pinnedOwner0 && s.owners["m01"] == pinnedOwner1
			},
			genLoads(),
		))
	}
	properties.TestingRun(t)
}

func TestLeastFinishTimePrefersIdleAgent(t *testing.T) {
	chk := require.New(t)

	s := policyFixture([]float64{5, 5, 5, 1, 1, 1}, PolicyLeastFinishTime)
	// a2 will not come free for a long time; nothing should land on it.
	s.agents["a2"].availableAt = 100

	s.rebalance(0)
	for _, r := range s.log.Records() {
		chk.NotEqual("a2", r.To)
	}
	chk.Empty(s.agents["a2"].Assigned())
}

func TestParsePolicyRoundTrip(t *testing.T) {
	chk := require.New(t)

	for _, p := range []Policy{PolicySimple, PolicySmart, PolicyLeastFinishTime, PolicySwarm} {
		got, err := ParsePolicy(p.String())
		chk.NoError(err)
		chk.Equal(p, got)
	}
	_, err := ParsePolicy("eager")
	chk.ErrorIs(err, ErrBadPolicy)
}
