// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package masim

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/gammazero/deque"
	"go.uber.org/zap"

	"github.com/ChristielBel/multi-agent-modeling/internal/timeline"
)

// Config describes one simulation: the module graph, the agent topology with
// its initial assignment, the rebalancing policy, and the stochastic
// parameters. Everything the engine touches is passed here explicitly; there
// is no ambient global state.
type Config struct {
	Modules []Module
	Agents  []Agent
	Policy  Policy

	// Seed drives the single deterministic generator used for all failure
	// draws. Two runs with the same seed and configuration produce
	// identical event logs.
	Seed int64

	// FailureProbability is applied uniformly to every module start.
	FailureProbability float64

	// MaxEvents bounds the number of timeline events a run may execute.
	// It is required: with a failure probability near one, retries can
	// extend a run without limit, so the budget is the caller's explicit
	// cap rather than an implicit hang.
	MaxEvents int

	// ScanDelay is the simulated delay between a start, completion or
	// failure and the readiness re-scan it triggers. Zero is the default
	// and keeps scan scheduling from distorting the makespan; the
	// sequence tie-break still orders the re-scan after the event that
	// scheduled it.
	ScanDelay float64

	// Logger receives debug traces of event execution. Defaults to a nop
	// logger; the simulation's observable output is the event log, not
	// the debug trace.
	Logger *zap.Logger
}

// inflight records one module currently executing on an agent. isFailure
// marks runs that were doomed at start time; end is then the failure time
// rather than start+load.
type inflight struct {
	agent     string
	start     float64
	end       float64
	isFailure bool
}

// Simulation owns the canonical module and agent state and the event
// timeline for one configuration. It is not safe for concurrent use; all
// mutation happens inside sequential event callbacks on the calling
// goroutine.
type Simulation struct {
	modules   map[string]*Module
	moduleIDs []string
	agents    map[string]*Agent
	agentIDs  []string
	owners    map[string]string
	policy    Policy
	seed      int64
	failProb  float64
	scanDelay float64
	maxEvents int
	logger    *zap.Logger

	tl         timeline.Queue
	rng        *rand.Rand
	log        *EventLog
	inFlight   map[string]*inflight
	now        float64
	makespan   float64
	eventCount int
}

// New validates the configuration and builds a simulation. All inputs are
// deep-copied; the caller's slices are never mutated. Configuration errors
// (unassigned or doubly assigned modules, unknown id references, cyclic
// dependencies, out-of-range parameters) are reported here rather than
// surfacing as a misleading run result.
func New(cfg Config) (*Simulation, error) {
	if len(cfg.Modules) == 0 {
		return nil, ErrNoModules
	}
	if len(cfg.Agents) == 0 {
		return nil, ErrNoAgents
	}
	if cfg.FailureProbability < 0 || cfg.FailureProbability > 1 {
		return nil, fmt.Errorf("%w: %v", ErrBadProbability, cfg.FailureProbability)
	}
	if cfg.MaxEvents <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadEventBudget, cfg.MaxEvents)
	}
	if cfg.ScanDelay < 0 {
		return nil, fmt.Errorf("%w: %v", ErrBadScanDelay, cfg.ScanDelay)
	}
	if cfg.Policy > PolicySwarm {
		return nil, fmt.Errorf("%w: %d", ErrBadPolicy, cfg.Policy)
	}

	s := &Simulation{
		modules:   make(map[string]*Module, len(cfg.Modules)),
		agents:    make(map[string]*Agent, len(cfg.Agents)),
		policy:    cfg.Policy,
		seed:      cfg.Seed,
		failProb:  cfg.FailureProbability,
		scanDelay: cfg.ScanDelay,
		maxEvents: cfg.MaxEvents,
		logger:    cfg.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	for i := range cfg.Modules {
		in := &cfg.Modules[i]
		if _, dup := s.modules[in.ID]; dup {
			return nil, fmt.Errorf("%w: module %q", ErrDuplicateID, in.ID)
		}
		if in.Load <= 0 {
			return nil, fmt.Errorf("%w: module %q has load %v", ErrNonPositiveLoad, in.ID, in.Load)
		}
		s.modules[in.ID] = &Module{
			ID:           in.ID,
			Load:         in.Load,
			Predecessors: slices.Clone(in.Predecessors),
		}
		s.moduleIDs = append(s.moduleIDs, in.ID)
	}
	slices.Sort(s.moduleIDs)

	for _, id := range s.moduleIDs {
		m := s.modules[id]
		for _, pred := range m.Predecessors {
			p, ok := s.modules[pred]
			if !ok {
				return nil, fmt.Errorf("%w: %q depends on %q", ErrUnknownModule, id, pred)
			}
			p.Successors = append(p.Successors, id)
		}
	}

	for i := range cfg.Agents {
		in := &cfg.Agents[i]
		if _, dup := s.agents[in.ID]; dup {
			return nil, fmt.Errorf("%w: agent %q", ErrDuplicateID, in.ID)
		}
		s.agents[in.ID] = &Agent{
			ID:        in.ID,
			Neighbors: slices.Clone(in.Neighbors),
			Modules:   slices.Clone(in.Modules),
		}
		s.agentIDs = append(s.agentIDs, in.ID)
	}
	slices.Sort(s.agentIDs)

	for _, id := range s.agentIDs {
		a := s.agents[id]
		a.neighborSet = make(map[string]struct{}, len(a.Neighbors))
		for _, nid := range a.Neighbors {
			if _, ok := s.agents[nid]; !ok {
				return nil, fmt.Errorf("%w: agent %q lists neighbor %q", ErrUnknownAgent, id, nid)
			}
			a.neighborSet[nid] = struct{}{}
		}
	}

	owners := make(map[string]string, len(s.moduleIDs))
	for _, aid := range s.agentIDs {
		for _, mid := range s.agents[aid].Modules {
			if _, ok := s.modules[mid]; !ok {
				return nil, fmt.Errorf("%w: agent %q assigned %q", ErrUnknownModule, aid, mid)
			}
			if prev, taken := owners[mid]; taken {
				return nil, fmt.Errorf("%w: module %q owned by %q and %q", ErrDuplicateOwner, mid, prev, aid)
			}
			owners[mid] = aid
		}
	}
	for _, mid := range s.moduleIDs {
		if _, ok := owners[mid]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnassignedModule, mid)
		}
	}

	if _, err := topologicalOrder(s.moduleIDs, s.modules); err != nil {
		return nil, err
	}

	s.reset()
	return s, nil
}

// reset restores the state a run begins from: no module finished or running,
// ownership back at the initial assignment, agents idle at time zero, a
// fresh generator seeded from the configured seed, and an empty log and
// timeline. Run calls it first, so a Simulation can be re-run and will
// reproduce its results exactly.
func (s *Simulation) reset() {
	for _, m := range s.modules {
		m.finished = false
		m.running = false
	}
	s.owners = make(map[string]string, len(s.moduleIDs))
	for _, aid := range s.agentIDs {
		a := s.agents[aid]
		a.availableAt = 0
		a.assigned = make(map[string]struct{}, len(a.Modules))
		for _, mid := range a.Modules {
			a.assigned[mid] = struct{}{}
			s.owners[mid] = aid
		}
	}
	s.rng = rand.New(rand.NewSource(s.seed))
	s.log = &EventLog{}
	s.tl.Reset()
	s.inFlight = make(map[string]*inflight, len(s.agentIDs))
	s.now = 0
	s.makespan = 0
	s.eventCount = 0
}

// Run executes the simulation to completion and returns the makespan: the
// time of the last successful module completion. The timeline is drained
// event by event; time advances only through popped events.
//
// A run that drains with unfinished modules returns [ErrDeadlock], and one
// that exceeds the configured event budget returns [ErrEventBudget] together
// with the makespan reached so far. The event log of the run, complete in
// either case, is available via [Simulation.Log].
func (s *Simulation) Run() (float64, error) {
	s.reset()
	s.tl.Schedule(0, s.scanReady)

	for !s.tl.Empty() {
		if s.eventCount >= s.maxEvents {
			return s.makespan, fmt.Errorf("%w: %d events executed", ErrEventBudget, s.eventCount)
		}
		ev, _ := s.tl.Pop()
		s.now = ev.Time
		s.eventCount++
		ev.Action()
	}

	var unfinished []string
	for _, id := range s.moduleIDs {
		if !s.modules[id].finished {
			unfinished = append(unfinished, id)
		}
	}
	if len(unfinished) > 0 {
		return 0, fmt.Errorf("%w: %v", ErrDeadlock, unfinished)
	}
	return s.makespan, nil
}

// Log returns the event log of the most recent run.
func (s *Simulation) Log() *EventLog {
	return s.log
}

// Now returns the current simulated time.
func (s *Simulation) Now() float64 {
	return s.now
}

// Events returns the number of timeline events executed by the most recent
// run.
func (s *Simulation) Events() int {
	return s.eventCount
}

// agentIdle reports whether no in-flight record for the agent extends
// strictly beyond the current time.
func (s *Simulation) agentIdle(aid string) bool {
	for _, rec := range s.inFlight {
		if rec.agent == aid && rec.end > s.now {
			return false
		}
	}
	return true
}

func (s *Simulation) predecessorsFinished(m *Module) bool {
	for _, pred := range m.Predecessors {
		if p, ok := s.modules[pred]; !ok || !p.finished {
			return false
		}
	}
	return true
}

// scanReady starts every ready module whose owning agent is idle. Modules
// whose owner is busy stay untouched; a future completion or failure event
// schedules the next scan that will pick them up.
func (s *Simulation) scanReady() {
	var ready deque.Deque[*Module]
	for _, id := range s.moduleIDs {
		m := s.modules[id]
		if m.startable() && s.predecessorsFinished(m) {
			ready.PushBack(m)
		}
	}
	for ready.Len() > 0 {
		m := ready.PopFront()
		owner := s.owners[m.ID]
		if s.agentIdle(owner) {
			s.startModule(m, s.agents[owner])
		}
	}
}

// startModule begins execution of a ready module on its owning agent. The
// failure draw and, when failing, the elapsed-fraction draw happen here, in
// that order; completion events consume no randomness.
func (s *Simulation) startModule(m *Module, a *Agent) {
	start := max(s.now, a.availableAt)
	m.running = true

	rec := &inflight{agent: a.ID, start: start}
	if s.rng.Float64() < s.failProb {
		rec.isFailure = true
		rec.end = start + s.rng.Float64()*m.Load
		s.tl.Schedule(rec.end, func() { s.failModule(m, a) })
	} else {
		rec.end = start + m.Load
		s.tl.Schedule(rec.end, func() { s.completeModule(m, a) })
	}
	a.availableAt = rec.end
	s.inFlight[m.ID] = rec

	s.log.append(Record{Time: start, Kind: KindStart, Module: m.ID, Agent: a.ID})
	s.debug("start", m.ID, a.ID, start)
	s.tl.Schedule(s.now+s.scanDelay, s.scanReady)
}

// completeModule marks the module finished, advances the makespan, invokes
// the rebalancing policy and defers a readiness re-scan. The policy runs
// strictly before the re-scan so reassigned modules are picked up in the
// same logical step.
func (s *Simulation) completeModule(m *Module, a *Agent) {
	m.running = false
	m.finished = true
	delete(s.inFlight, m.ID)
	s.makespan = max(s.makespan, s.now)

	s.log.append(Record{Time: s.now, Kind: KindSuccess, Module: m.ID, Agent: a.ID})
	s.debug("success", m.ID, a.ID, s.now)

	s.rebalance(s.now)
	s.tl.Schedule(s.now+s.scanDelay, s.scanReady)
}

// failModule reverts the module to not-started: the work is lost and a later
// readiness scan retries it. The agent became idle at the failure time
// (availableAt was set at start).
func (s *Simulation) failModule(m *Module, a *Agent) {
	m.running = false
	m.finished = false
	delete(s.inFlight, m.ID)

	s.log.append(Record{Time: s.now, Kind: KindFailure, Module: m.ID, Agent: a.ID})
	s.debug("failure", m.ID, a.ID, s.now)

	s.tl.Schedule(s.now+s.scanDelay, s.scanReady)
}

func (s *Simulation) debug(kind, module, agent string, t float64) {
	s.logger.Debug("event",
		zap.String("kind", kind),
		zap.String("module", module),
		zap.String("agent", agent),
		zap.Float64("time", t),
	)
}
