package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"crucible/internal/workflow/router"
)

// Routing selects how requests are matched against specialist remits.
const (
	RoutingKeyword = "keyword"
	RoutingModel   = "model"
)

// Coordinator configures the fallback agent that answers requests no
// specialist wins.
type Coordinator struct {
	Instruction string `yaml:"instruction"`
	Routing     string `yaml:"routing"`
}

// Crew is the parsed crew file.
type Crew struct {
	Coordinator Coordinator         `yaml:"coordinator"`
	Agents      []router.Descriptor `yaml:"agents"`
}

const defaultCoordinatorInstruction = `You are the coordinator of a crew of coding agents working inside a
project directory. Answer the user's request yourself using your tools.`

// LoadCrew reads and validates the crew file.
func LoadCrew(path string) (*Crew, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crew file: %w", err)
	}

	var crew Crew
	if err := yaml.Unmarshal(data, &crew); err != nil {
		return nil, fmt.Errorf("parse crew file %s: %w", path, err)
	}
	if err := crew.validate(); err != nil {
		return nil, fmt.Errorf("invalid crew file %s: %w", path, err)
	}

	if crew.Coordinator.Instruction == "" {
		crew.Coordinator.Instruction = defaultCoordinatorInstruction
	}
	if crew.Coordinator.Routing == "" {
		crew.Coordinator.Routing = RoutingModel
	}
	return &crew, nil
}

func (c *Crew) validate() error {
	if len(c.Agents) == 0 {
		return errors.New("no agents declared")
	}

	seen := make(map[string]struct{})
	for i, agent := range c.Agents {
		if agent.Name == "" {
			return fmt.Errorf("agent %d has no name", i)
		}
		if agent.Remit == "" {
			return fmt.Errorf("agent %q has no remit", agent.Name)
		}
		if _, dup := seen[agent.Name]; dup {
			return fmt.Errorf("duplicate agent name %q", agent.Name)
		}
		seen[agent.Name] = struct{}{}
	}

	switch c.Coordinator.Routing {
	case "", RoutingKeyword, RoutingModel:
		return nil
	default:
		return fmt.Errorf("unknown routing mode %q", c.Coordinator.Routing)
	}
}
