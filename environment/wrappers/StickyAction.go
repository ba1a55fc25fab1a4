package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/goarena/environment"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// StickyAction wraps an environment and repeats each action for k
// engine steps, summing the rewards. Repeats stop early when a round or
// the episode ends. The boundary flags of all repeats are merged into
// the returned step.
//
// StickyAction requires each engine step to emulate a single frame.
type StickyAction struct {
	environment.Environment
	k int
}

// NewStickyAction returns a new StickyAction repeating actions k times
func NewStickyAction(env environment.Environment, k int) (*StickyAction,
	error) {
	if k < 1 {
		return nil, environment.NewConfigurationError("sticky_actions",
			"must be at least 1, got %v", k)
	}
	if ratio := env.Context().StepRatio; ratio != 1 {
		return nil, environment.NewConfigurationError("sticky_actions",
			"requires a step ratio of 1, got %v", ratio)
	}
	return &StickyAction{Environment: env, k: k}, nil
}

// Step repeats the action k times
func (s *StickyAction) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	var (
		reward   float64
		frames   int
		boundary ts.Boundary
		step     ts.TimeStep
		last     bool
		err      error
	)
	for i := 0; i < s.k; i++ {
		step, last, err = s.Environment.Step(action)
		if err != nil {
			return step, last, err
		}

		reward += step.Reward
		frames += step.Info.Frames
		boundary.RoundDone = boundary.RoundDone || step.Info.RoundDone
		boundary.StageDone = boundary.StageDone || step.Info.StageDone
		boundary.GameDone = boundary.GameDone || step.Info.GameDone
		boundary.EpisodeDone = boundary.EpisodeDone || step.Info.EpisodeDone

		if last || step.Info.RoundDone {
			break
		}
	}

	step.Reward = reward
	step.Info.Frames = frames
	step.Info.Boundary = boundary
	return step, last, nil
}

// String returns a string representation of the environment
func (s *StickyAction) String() string {
	return fmt.Sprintf("StickyAction(k: %v): %v", s.k, s.Environment)
}
