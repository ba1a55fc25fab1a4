// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"github.com/samuelfneumann/goarena/space"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment.
//
// A TimeStep has StepType Last exactly when the episode has terminated,
// that is when Info.EpisodeDone is true. Truncated marks the TimeStep
// on which an experiment cut the episode off, as when it reaches its
// step limit. It never implies Last.
type TimeStep struct {
	StepType
	Reward      float64
	Observation space.Value
	Info        Info
	Number      int
	Truncated   bool
}

// New returns a new TimeStep
func New(t StepType, r float64, o space.Value, info Info, n int) TimeStep {
	return TimeStep{
		StepType:    t,
		Reward:      r,
		Observation: o,
		Info:        info,
		Number:      n,
	}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// Terminated returns whether the episode ended on this TimeStep
func (t *TimeStep) Terminated() bool {
	return t.Info.EpisodeDone
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Step Number:  %v  |  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Number, t.Info.Boundary)
}
