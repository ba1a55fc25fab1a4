package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// ActionKey is the observation key of the last action taken by an agent
const ActionKey = "action"

// AddLastAction wraps an environment and adds the last action taken by
// each agent to the observation, decoded as a (move, attack) pair. The
// action is stored at ActionKey for a single agent and under the agent's
// key for two agents. The no-op is reported after a reset.
type AddLastAction struct {
	environment.Environment
	ctx              environment.Context
	observationSpace space.Space
}

// NewAddLastAction returns a new AddLastAction wrapping env
func NewAddLastAction(env environment.Environment) (*AddLastAction, error) {
	obsSpace := env.ObservationSpace()
	if err := requireDict("add_last_action", obsSpace); err != nil {
		return nil, err
	}

	ctx := env.Context()
	for i := 0; i < ctx.NumAgents; i++ {
		path := ctx.AgentPath(i, ActionKey)
		if _, ok := obsSpace.Lookup(path...); ok {
			return nil, environment.NewConfigurationError("add_last_action",
				"observation already holds key %v", path)
		}
		obsSpace = obsSpace.WithPath(path, ctx.MoveAttackSpace())
	}

	return &AddLastAction{
		Environment:      env,
		ctx:              ctx,
		observationSpace: obsSpace,
	}, nil
}

// ObservationSpace returns the observation space of the environment
func (a *AddLastAction) ObservationSpace() space.Space {
	return a.observationSpace
}

// Reset resets the environment and reports the no-op as the last action
func (a *AddLastAction) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := a.Environment.Reset(opts)
	if err != nil {
		return step, err
	}

	pairs := make([][2]int, a.ctx.NumAgents)
	step.Observation = a.withActions(step.Observation, pairs)
	return step, nil
}

// Step takes one environmental step and reports the action taken
func (a *AddLastAction) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	pairs, err := a.ctx.DecodeAll(action)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}

	step, last, err := a.Environment.Step(action)
	if err != nil {
		return step, last, err
	}

	step.Observation = a.withActions(step.Observation, pairs)
	return step, last, nil
}

func (a *AddLastAction) withActions(o space.Value, pairs [][2]int) space.Value {
	for i, pair := range pairs {
		o = o.WithPath(a.ctx.AgentPath(i, ActionKey), space.Ints(pair[0], pair[1]))
	}
	return o
}

// String returns a string representation of the environment
func (a *AddLastAction) String() string {
	return fmt.Sprintf("AddLastAction: %v", a.Environment)
}
