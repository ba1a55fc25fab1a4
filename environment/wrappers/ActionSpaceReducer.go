package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// ActionSpaceReducer wraps an environment and removes the multi-button
// attack combinations from the action space of every agent. Attacks
// without combinations come first in the attack set, so reduced actions
// are forwarded unchanged.
type ActionSpaceReducer struct {
	environment.Environment
	ctx environment.Context
}

// NewActionSpaceReducer returns a new ActionSpaceReducer
func NewActionSpaceReducer(env environment.Environment) (*ActionSpaceReducer,
	error) {
	ctx := env.Context()
	if !ctx.AttackCombinations {
		return nil, environment.NewConfigurationError(
			"no_attack_buttons_combinations", "attack combinations have "+
				"already been removed")
	}
	if ctx.AttacksNoCombinations < 1 ||
		ctx.AttacksNoCombinations > ctx.Attacks {
		return nil, environment.NewConfigurationError(
			"no_attack_buttons_combinations", "engine reports %v attacks "+
				"without combinations out of %v", ctx.AttacksNoCombinations,
			ctx.Attacks)
	}

	return &ActionSpaceReducer{
		Environment: env,
		ctx:         ctx.WithoutAttackCombinations(),
	}, nil
}

// ActionSpace returns the reduced action space
func (a *ActionSpaceReducer) ActionSpace() space.Space {
	return a.ctx.ActionSpace()
}

// Context returns the Context of the wrapped environment without attack
// combinations
func (a *ActionSpaceReducer) Context() environment.Context {
	return a.ctx
}

// Step checks that the action lies in the reduced action space and
// forwards it
func (a *ActionSpaceReducer) Step(action environment.Action) (ts.TimeStep,
	bool, error) {
	if _, err := a.ctx.DecodeAll(action); err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}
	return a.Environment.Step(action)
}

// String returns a string representation of the environment
func (a *ActionSpaceReducer) String() string {
	return fmt.Sprintf("ActionSpaceReducer: %v", a.Environment)
}
