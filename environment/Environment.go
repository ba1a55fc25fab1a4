// Package environment outlines the interfaces and structs needed to
// implement arena environments and the wrappers composed over them
package environment

import (
	"github.com/samuelfneumann/goarena/space"
	"github.com/samuelfneumann/goarena/timestep"
)

// ResetOptions configures a call to Reset. The zero value resets with
// the environment's own settings.
type ResetOptions struct {
	// Seed reseeds the environment's random number generator if non-nil
	Seed *uint64

	// Roles overrides the roles of the agents for the coming episode.
	// Nil keeps the configured roles, which may be random.
	Roles []timestep.Role
}

// Environment implements a step-based fighting game environment. Both
// the base environment and every wrapper satisfy this interface, so
// that wrappers can be composed in any order.
//
// Reset starts a new episode and returns its first TimeStep. Step
// takes one step with the given action and returns the next TimeStep
// along with whether the episode has ended. Errors returned by the
// engine are passed through unmodified.
type Environment interface {
	Reset(opts ResetOptions) (timestep.TimeStep, error)
	Step(action Action) (timestep.TimeStep, bool, error)

	// ObservationSpace and ActionSpace are fixed at construction
	ObservationSpace() space.Space
	ActionSpace() space.Space

	// Context returns the static description of the environment
	Context() Context

	Close() error
}
