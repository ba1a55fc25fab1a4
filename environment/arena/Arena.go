// Package arena implements the base fighting game environment, which
// exposes a running engine as a step-based environment.
//
// Observations of a non-hardcore environment are trees of the form:
//
//	frame      Box(H, W, C) uint8
//	<global>   one leaf per global RAM state (stage, timer, ...)
//	P1         {one leaf per per-player RAM state (health, side, ...)}
//	P2         {...}
//
// Hardcore environments observe only the frame.
package arena

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// FrameKey is the observation key of the frame
const FrameKey = "frame"

// HealthKey is the per-player RAM state from which the maximum health
// change is derived
const HealthKey = "health"

// Env is the base environment. It owns the engine, translates raw
// engine payloads into observation trees and tracks the per-episode
// settings.
type Env struct {
	engine   Engine
	settings Settings
	ctx      environment.Context

	observationSpace space.Space
	actionSpace      space.Space

	rng     *rand.Rand
	episode ts.EpisodeSettings

	currentStep ts.TimeStep
}

// New creates a new base environment around the engine. The
// environment must be reset before it is stepped.
func New(engine Engine, settings Settings) (*Env, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	info := engine.Info()
	for i, dim := range info.FrameShape {
		if dim < 1 {
			return nil, fmt.Errorf("new: engine reported invalid frame "+
				"shape %v at dimension %v", info.FrameShape, i)
		}
	}

	ctx := environment.Context{
		FrameShape:            info.FrameShape,
		NumAgents:             settings.NumAgents,
		ActionSpaces:          append([]environment.ActionSpaceKind(nil), settings.ActionSpaces...),
		Moves:                 info.Moves,
		Attacks:               info.Attacks,
		AttacksNoCombinations: info.AttacksNoCombinations,
		AttackCombinations:    true,
		RAMStates:             append([]environment.RAMState(nil), info.RAMStates...),
		MaxDeltaHealth:        maxDeltaHealth(info.RAMStates),
		StepRatio:             settings.StepRatio,
		Hardcore:              settings.Hardcore,
		Seed:                  settings.Seed,
	}

	e := &Env{
		engine:      engine,
		settings:    settings,
		ctx:         ctx,
		actionSpace: ctx.ActionSpace(),
		rng:         rand.New(rand.NewSource(settings.Seed)),
	}
	e.observationSpace = e.buildObservationSpace()

	return e, nil
}

// maxDeltaHealth returns the range of the per-player health reading,
// or 0 if the engine does not expose one
func maxDeltaHealth(states []environment.RAMState) float64 {
	for _, s := range states {
		if s.Name == HealthKey && s.PerPlayer {
			return s.Range.Max - s.Range.Min
		}
	}
	return 0
}

func (e *Env) frameSpace() space.Space {
	shape := e.ctx.FrameShape
	return space.NewUniformBox(shape[:], 0, 255, tensor.Uint8)
}

func (e *Env) buildObservationSpace() space.Space {
	if e.ctx.Hardcore {
		return e.frameSpace()
	}

	root := map[string]space.Space{FrameKey: e.frameSpace()}
	player := make(map[string]space.Space)
	for _, s := range e.ctx.RAMStates {
		if s.PerPlayer {
			player[s.Name] = s.Space()
		} else {
			root[s.Name] = s.Space()
		}
	}
	root[string(ts.P1)] = space.NewDict(player)
	root[string(ts.P2)] = space.NewDict(player)

	return space.NewDict(root)
}

// Reset resets the environment to the start of a new episode
func (e *Env) Reset(opts environment.ResetOptions) (ts.TimeStep, error) {
	if opts.Seed != nil {
		e.rng.Seed(*opts.Seed)
	}

	roles := opts.Roles
	if roles == nil {
		roles = e.settings.Roles
	}
	if roles == nil {
		roles = e.randomRoles()
	} else if err := validateRoles(roles, e.ctx.NumAgents); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	e.episode = ts.EpisodeSettings{
		Roles:      append([]ts.Role(nil), roles...),
		Characters: append([]int(nil), e.settings.Characters...),
		Difficulty: e.settings.Difficulty,
		Seed:       e.rng.Uint64(),
	}

	raw, err := e.engine.Reset(e.episode.Clone(), e.settings.StepRatio)
	if err != nil {
		return ts.TimeStep{}, &environment.UpstreamError{Op: "reset", Err: err}
	}

	obs, err := e.observation(raw)
	if err != nil {
		return ts.TimeStep{}, err
	}

	info := ts.Info{Settings: e.episode.Clone()}
	step := ts.New(ts.First, 0, obs, info, 0)
	e.currentStep = step

	return step, nil
}

// randomRoles draws the roles of the agents for a new episode
func (e *Env) randomRoles() []ts.Role {
	first := ts.P1
	if e.rng.Intn(2) == 1 {
		first = ts.P2
	}
	if e.ctx.NumAgents == 1 {
		return []ts.Role{first}
	}
	return []ts.Role{first, first.Opponent()}
}

// Step takes one environmental step given one action per agent
func (e *Env) Step(action environment.Action) (ts.TimeStep, bool, error) {
	pairs, err := e.ctx.DecodeAll(action)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}

	raw, err := e.engine.Step(pairs)
	if err != nil {
		return ts.TimeStep{}, true, &environment.UpstreamError{Op: "step",
			Err: err}
	}

	obs, err := e.observation(raw)
	if err != nil {
		return ts.TimeStep{}, true, err
	}

	info := ts.Info{
		Boundary: raw.Boundary,
		Settings: e.episode.Clone(),
		Frames:   e.settings.StepRatio,
	}
	stepType := ts.Mid
	if raw.Boundary.EpisodeDone {
		stepType = ts.Last
	}

	step := ts.New(stepType, raw.Reward, obs, info, e.currentStep.Number+1)
	e.currentStep = step

	return step, step.Last(), nil
}

// observation converts a raw engine payload into an observation tree
func (e *Env) observation(raw RawObservation) (space.Value, error) {
	h, w, c := e.ctx.FrameShape[0], e.ctx.FrameShape[1], e.ctx.FrameShape[2]
	if len(raw.Frame) != h*w*c {
		return space.Value{}, &environment.UpstreamError{
			Op: "observation",
			Err: fmt.Errorf("frame has %v bytes, expected %v", len(raw.Frame),
				h*w*c),
		}
	}
	frame := tensor.New(
		tensor.WithShape(h, w, c),
		tensor.WithBacking(append([]uint8(nil), raw.Frame...)),
	)
	if e.ctx.Hardcore {
		return space.Frame(frame), nil
	}

	root := map[string]space.Value{FrameKey: space.Frame(frame)}
	players := map[ts.Role]map[string]space.Value{ts.P1: {}, ts.P2: {}}
	for _, s := range e.ctx.RAMStates {
		if !s.PerPlayer {
			v, err := reading(raw.RAM, s)
			if err != nil {
				return space.Value{}, err
			}
			root[s.Name] = v
			continue
		}
		for role, readings := range players {
			v, err := reading(raw.Players[role], s)
			if err != nil {
				return space.Value{}, err
			}
			readings[s.Name] = v
		}
	}
	for role, readings := range players {
		root[string(role)] = space.Node(readings)
	}

	return space.Node(root), nil
}

// reading returns the observation leaf of a single RAM state
func reading(readings map[string]float64, s environment.RAMState) (space.Value,
	error) {
	x, ok := readings[s.Name]
	if !ok {
		return space.Value{}, &environment.UpstreamError{
			Op:  "observation",
			Err: fmt.Errorf("engine did not report RAM state %q", s.Name),
		}
	}
	if s.Kind == environment.Continuous {
		return space.Vector(x), nil
	}

	// Discrete readings index one-hot encodings downstream
	if x != math.Trunc(x) || x < s.Range.Min || x > s.Range.Max {
		return space.Value{}, &environment.UpstreamError{
			Op: "observation",
			Err: fmt.Errorf("RAM state %q reported %v outside [%v, %v]",
				s.Name, x, s.Range.Min, s.Range.Max),
		}
	}
	if s.Kind == environment.Categorical {
		x -= s.Range.Min
	}
	return space.Vector(x), nil
}

// ObservationSpace returns the observation space of the environment
func (e *Env) ObservationSpace() space.Space {
	return e.observationSpace
}

// ActionSpace returns the action space of the environment
func (e *Env) ActionSpace() space.Space {
	return e.actionSpace
}

// Context returns the static description of the environment
func (e *Env) Context() environment.Context {
	return e.ctx
}

// CurrentTimeStep returns the current timestep in the environment
func (e *Env) CurrentTimeStep() ts.TimeStep {
	return e.currentStep
}

// Close closes the engine
func (e *Env) Close() error {
	return e.engine.Close()
}

// String returns a string representation of the environment
func (e *Env) String() string {
	return fmt.Sprintf("Arena(agents: %v, hardcore: %v)", e.ctx.NumAgents,
		e.ctx.Hardcore)
}
