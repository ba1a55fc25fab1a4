package tracker

import (
	"github.com/samuelfneumann/goarena/timestep"
)

// Stepper is an environment which exposes its most recent TimeStep,
// such as arena.Env
type Stepper interface {
	CurrentTimeStep() timestep.TimeStep
}

// registeredTracker registers an environment with some Tracker so
// that the Tracker tracks data from the registered environment only.
// registeredTracker itself is a Tracker.
//
// This is useful when an experiment runs on a wrapper chain but the
// data of the base environment should be tracked. For example, if
// rewards are clipped by the chain, registering the base environment
// with a Return Tracker tracks the unclipped return.
type registeredTracker struct {
	Tracker
	env Stepper
}

// Register registers a Tracker with an environment, to track data from
// the registered environment only. The TimeStep passed to Track on the
// returned Tracker is ignored in favour of the registered environment's
// most recent TimeStep.
//
// Note: the underlying concrete type of the registered Tracker is
// lost when registering an environment with a Tracker.
func Register(t Tracker, env Stepper) Tracker {
	return &registeredTracker{t, env}
}

// Track calls Track() on the embedded Tracker using the most recent
// TimeStep from the registered environment
func (r *registeredTracker) Track(timestep.TimeStep) {
	r.Tracker.Track(r.env.CurrentTimeStep())
}
