// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package masim provides a discrete-event simulation engine that executes a
// directed-acyclic graph of work modules across a set of interconnected
// single-capacity agents. Time advances only through a heap-ordered event
// timeline, so the engine models logical concurrency (several agents may have
// modules in flight within simulated time) without any real parallelism.
//
// Module starts are subject to stochastic failure: at each start the engine
// draws against a configured failure probability, and a failing module loses
// its work at a uniformly random point within its load and is retried by a
// later readiness scan. After every successful completion the configured
// rebalancing policy may move unfinished, non-running modules between agents
// to even out their remaining load.
//
// All randomness is drawn from one seeded generator in a fixed order, so two
// runs with identical configuration and seed produce byte-identical event
// logs. The event log is the sole observable output of a run besides the
// final makespan.
package masim
