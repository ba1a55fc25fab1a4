// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"github.com/samuelfneumann/goarena/environment/envconfig"
	"github.com/samuelfneumann/goarena/experiment/tracker"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send each environment TimeStep to Trackers, which cache
// the data to be saved to disk later by Save. Run runs episodes until
// the maximum timestep limit is reached, and RunEpisode runs a single
// episode.
type Experiment interface {
	Run() error

	// RunEpisode returns whether the step limit has been reached
	RunEpisode() (bool, error)

	// Tracks current timestep by sending it to Trackers
	track(ts.TimeStep)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment
type Config struct {
	Type      Type             `json:"type"`
	MaxSteps  uint             `json:"max_steps"`
	EnvConfig envconfig.Config `json:"env"`
}

// CreateExp creates the experiment described by the Config. Actions are
// selected uniformly at random by a policy seeded with seed.
func (c Config) CreateExp(seed uint64,
	t []tracker.Tracker) (Experiment, error) {
	env, err := c.EnvConfig.Create()
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create environment: %w",
			err)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, NewRandom(env.Context(), seed), c.MaxSteps,
			t...), nil
	}

	env.Close()
	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}
