package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/goarena/buffer/fifo"
	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// ActionStack wraps an environment and replaces the last action of each
// agent in the observation with the last n actions, oldest first.
//
// The last action must already be part of the observation, see
// AddLastAction. The history is filled with the no-op at reset and
// whenever a round, stage or game ends while the episode continues.
type ActionStack struct {
	environment.Environment
	n int

	// history[i] holds the (move, attack) pairs taken by agent i
	history          []*fifo.Buffer[[2]int]
	paths            [][]string
	observationSpace space.Space
}

// NewActionStack returns a new ActionStack keeping the last n actions
// of each agent
func NewActionStack(env environment.Environment, n int) (*ActionStack,
	error) {
	if n < 1 {
		return nil, environment.NewConfigurationError("actions_stack",
			"must be at least 1, got %v", n)
	}

	obsSpace := env.ObservationSpace()
	if err := requireDict("actions_stack", obsSpace); err != nil {
		return nil, err
	}

	ctx := env.Context()
	history := make([]*fifo.Buffer[[2]int], ctx.NumAgents)
	paths := make([][]string, ctx.NumAgents)
	for i := range history {
		paths[i] = ctx.AgentPath(i, ActionKey)
		last, ok := obsSpace.Lookup(paths[i]...)
		if !ok || last.Kind() != space.MultiDiscrete || len(last.Nvec()) != 2 {
			return nil, environment.NewConfigurationError("actions_stack",
				"requires the last action at %v in the observation, enable "+
					"add_last_action", paths[i])
		}

		nvec := make([]int, 0, 2*n)
		for j := 0; j < n; j++ {
			nvec = append(nvec, last.Nvec()...)
		}
		obsSpace = obsSpace.WithPath(paths[i], space.NewMultiDiscrete(nvec))
		history[i] = fifo.New[[2]int](n)
	}

	return &ActionStack{
		Environment:      env,
		n:                n,
		history:          history,
		paths:            paths,
		observationSpace: obsSpace,
	}, nil
}

// ObservationSpace returns the observation space of the environment
func (a *ActionStack) ObservationSpace() space.Space {
	return a.observationSpace
}

// Reset resets the environment and fills the histories with the no-op
func (a *ActionStack) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := a.Environment.Reset(opts)
	if err != nil {
		return step, err
	}

	for _, h := range a.history {
		h.Fill([2]int{})
	}
	return a.stacked(step)
}

// Step takes one environmental step and pushes the action taken to the
// histories
func (a *ActionStack) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := a.Environment.Step(action)
	if err != nil {
		return step, last, err
	}

	for i, h := range a.history {
		taken, ok := step.Observation.Lookup(a.paths[i]...)
		if !ok || len(taken.Data()) != 2 {
			return step, last, &environment.StateInvariantError{
				Op:  "actionStack",
				Err: fmt.Errorf("observation lost last action at %v", a.paths[i]),
			}
		}
		h.Push([2]int{taken.Int(0), taken.Int(1)})

		if step.Info.Soft() {
			h.Fill([2]int{})
		}
	}

	step, err = a.stacked(step)
	return step, last, err
}

// stacked replaces the last action of each agent with its history
func (a *ActionStack) stacked(step ts.TimeStep) (ts.TimeStep, error) {
	for i, h := range a.history {
		if h.Len() != a.n {
			return step, &environment.StateInvariantError{
				Op: "actionStack",
				Err: fmt.Errorf("agent %v history holds %v actions, expected %v",
					i, h.Len(), a.n),
			}
		}

		actions := make([]int, 0, 2*a.n)
		for _, pair := range h.Slice() {
			actions = append(actions, pair[0], pair[1])
		}
		step.Observation = step.Observation.WithPath(a.paths[i],
			space.Ints(actions...))
	}
	return step, nil
}

// History returns the actions kept for agent i, oldest first
func (a *ActionStack) History(agent int) [][2]int {
	return a.history[agent].Slice()
}

// String returns a string representation of the environment
func (a *ActionStack) String() string {
	return fmt.Sprintf("ActionStack(n: %v): %v", a.n, a.Environment)
}
