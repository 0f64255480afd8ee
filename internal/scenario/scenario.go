// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package scenario loads simulation configurations from YAML files. A
// scenario names its modules with their loads and dependencies, the agents
// with their transfer topology, and the run parameters; it is the file
// format consumed by the masim CLI.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	masim "github.com/ChristielBel/multi-agent-modeling"
)

// DefaultMaxEvents bounds runs whose scenario does not set an explicit event
// budget.
const DefaultMaxEvents = 100000

// File is the YAML document describing one scenario.
type File struct {
	Name               string       `yaml:"name"`
	Policy             string       `yaml:"policy"`
	Seed               int64        `yaml:"seed"`
	FailureProbability float64      `yaml:"failureProbability"`
	MaxEvents          int          `yaml:"maxEvents"`
	ScanDelay          float64      `yaml:"scanDelay"`
	Modules            []ModuleSpec `yaml:"modules"`
	Agents             []AgentSpec  `yaml:"agents"`
}

// ModuleSpec declares one module. After lists the ids of the modules that
// must finish before this one may start; successor edges are derived.
type ModuleSpec struct {
	ID    string   `yaml:"id"`
	Load  float64  `yaml:"load"`
	After []string `yaml:"after"`
}

// AgentSpec declares one agent. When no agent in the scenario lists any
// modules, the initial assignment is derived round-robin over the module
// declaration order.
type AgentSpec struct {
	ID        string   `yaml:"id"`
	Neighbors []string `yaml:"neighbors"`
	Modules   []string `yaml:"modules"`
}

// Parse decodes a scenario document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &f, nil
}

// Load reads and decodes a scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Config translates the scenario into an engine configuration. Structural
// validation (cycles, unknown references, parameter ranges) is left to
// [masim.New]; Config only resolves the file-level conveniences.
func (f *File) Config() (masim.Config, error) {
	policy, err := masim.ParsePolicy(f.Policy)
	if err != nil {
		return masim.Config{}, err
	}

	cfg := masim.Config{
		Policy:             policy,
		Seed:               f.Seed,
		FailureProbability: f.FailureProbability,
		MaxEvents:          f.MaxEvents,
		ScanDelay:          f.ScanDelay,
	}
	if cfg.MaxEvents == 0 {
		cfg.MaxEvents = DefaultMaxEvents
	}

	cfg.Modules = make([]masim.Module, len(f.Modules))
	for i, m := range f.Modules {
		cfg.Modules[i] = masim.Module{
			ID:           m.ID,
			Load:         m.Load,
			Predecessors: m.After,
		}
	}

	cfg.Agents = make([]masim.Agent, len(f.Agents))
	assigned := false
	for i, a := range f.Agents {
		cfg.Agents[i] = masim.Agent{
			ID:        a.ID,
			Neighbors: a.Neighbors,
			Modules:   a.Modules,
		}
		if len(a.Modules) > 0 {
			assigned = true
		}
	}

	if !assigned && len(cfg.Agents) > 0 {
		for i, m := range f.Modules {
			ai := i % len(cfg.Agents)
			cfg.Agents[ai].Modules = append(cfg.Agents[ai].Modules, m.ID)
		}
	}

	return cfg, nil
}
