package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/goarena/environment"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// SpaceCheck wraps an environment and checks that every observation
// matches the observation space, returning a
// environment.StateInvariantError otherwise. SpaceCheck is meant to be
// placed outermost while debugging or testing a wrapper chain.
type SpaceCheck struct {
	environment.Environment
}

// NewSpaceCheck returns a new SpaceCheck
func NewSpaceCheck(env environment.Environment) *SpaceCheck {
	return &SpaceCheck{env}
}

// Reset resets the environment and checks the first observation
func (s *SpaceCheck) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := s.Environment.Reset(opts)
	if err != nil {
		return step, err
	}
	return step, environment.CheckObservation("reset", s.ObservationSpace(),
		step.Observation)
}

// Step takes one environmental step and checks the observation
func (s *SpaceCheck) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := s.Environment.Step(action)
	if err != nil {
		return step, last, err
	}
	return step, last, environment.CheckObservation("step",
		s.ObservationSpace(), step.Observation)
}

// String returns a string representation of the environment
func (s *SpaceCheck) String() string {
	return fmt.Sprintf("SpaceCheck: %v", s.Environment)
}
