// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package masim

type constError string

func (e constError) Error() string {
	return string(e)
}

// Configuration errors, detected by [New] before a run starts.
const ErrNoModules = constError("no modules configured")
const ErrNoAgents = constError("no agents configured")
const ErrDuplicateID = constError("duplicate id")
const ErrUnassignedModule = constError("module has no owning agent")
const ErrDuplicateOwner = constError("module assigned to more than one agent")
const ErrUnknownModule = constError("reference to unknown module")
const ErrUnknownAgent = constError("reference to unknown agent")
const ErrNonPositiveLoad = constError("module load must be positive")
const ErrCycle = constError("dependency graph contains a cycle")
const ErrBadProbability = constError("failure probability must be in [0,1]")
const ErrBadEventBudget = constError("event budget must be positive")
const ErrBadScanDelay = constError("scan delay must not be negative")
const ErrBadPolicy = constError("unknown rebalancing policy")

// Run outcomes that are not normal completions. A deadlocked run drained its
// timeline with unfinished modules left over; an exhausted run hit the
// configured event budget before the timeline drained.
const ErrDeadlock = constError("simulation deadlocked with unfinished modules")
const ErrEventBudget = constError("event budget exhausted")
