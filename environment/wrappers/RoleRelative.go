package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// Keys of the role relative player observations
const (
	OwnKey = "own"
	OppKey = "opp"
)

// RoleRelative wraps an environment and relabels the P1 and P2 player
// observations as own and opp from the point of view of each agent.
// Roles are read from the episode settings carried by every TimeStep,
// so roles may change between episodes. With a single agent own and
// opp replace P1 and P2 at the root; with two agents they are placed
// under each agent's key.
type RoleRelative struct {
	environment.Environment
	ctx              environment.Context
	observationSpace space.Space
}

// NewRoleRelative returns a new RoleRelative
func NewRoleRelative(env environment.Environment) (*RoleRelative, error) {
	obsSpace := env.ObservationSpace()
	if err := requireDict("role_relative", obsSpace); err != nil {
		return nil, err
	}

	p1, ok1 := obsSpace.Child(string(ts.P1))
	p2, ok2 := obsSpace.Child(string(ts.P2))
	if !ok1 || !ok2 || p1.Kind() != space.Dict || !p1.Equal(p2) {
		return nil, environment.NewConfigurationError("role_relative",
			"requires P1 and P2 player observations of the same space")
	}

	ctx := env.Context()
	out := obsSpace.Without(string(ts.P1), string(ts.P2))
	for i := 0; i < ctx.NumAgents; i++ {
		for _, key := range []string{OwnKey, OppKey} {
			path := ctx.AgentPath(i, key)
			if _, ok := out.Lookup(path...); ok {
				return nil, environment.NewConfigurationError("role_relative",
					"observation already holds key %v", path)
			}
			out = out.WithPath(path, p1)
		}
	}

	return &RoleRelative{
		Environment:      env,
		ctx:              ctx,
		observationSpace: out,
	}, nil
}

// ObservationSpace returns the observation space of the environment
func (r *RoleRelative) ObservationSpace() space.Space {
	return r.observationSpace
}

// Reset resets the environment and relabels the first observation
func (r *RoleRelative) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := r.Environment.Reset(opts)
	if err != nil {
		return step, err
	}
	return r.relabelled(step)
}

// Step takes one environmental step and relabels the observation
func (r *RoleRelative) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := r.Environment.Step(action)
	if err != nil {
		return step, last, err
	}
	step, err = r.relabelled(step)
	return step, last, err
}

func (r *RoleRelative) relabelled(step ts.TimeStep) (ts.TimeStep, error) {
	roles := step.Info.Settings.Roles
	if len(roles) != r.ctx.NumAgents {
		return step, &environment.StateInvariantError{
			Op: "roleRelative",
			Err: fmt.Errorf("expected roles for %v agents, got %v",
				r.ctx.NumAgents, roles),
		}
	}

	o := step.Observation
	players := make(map[ts.Role]space.Value, 2)
	for _, role := range []ts.Role{ts.P1, ts.P2} {
		v, ok := o.Child(string(role))
		if !ok {
			return step, &environment.StateInvariantError{
				Op:  "roleRelative",
				Err: fmt.Errorf("observation missing %v", role),
			}
		}
		players[role] = v
	}

	o = o.Without(string(ts.P1), string(ts.P2))
	for i, role := range roles {
		o = o.WithPath(r.ctx.AgentPath(i, OwnKey), players[role])
		o = o.WithPath(r.ctx.AgentPath(i, OppKey), players[role.Opponent()])
	}

	step.Observation = o
	return step, nil
}

// String returns a string representation of the environment
func (r *RoleRelative) String() string {
	return fmt.Sprintf("RoleRelative: %v", r.Environment)
}
