package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/goarena/environment"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// DefaultNormalizationFactor is the default factor of NormalizeReward
const DefaultNormalizationFactor float64 = 0.5

// NormalizeReward wraps an environment and divides each reward by
// factor times the largest health change possible in a step, as
// reported by the environment's Context.
type NormalizeReward struct {
	environment.Environment
	factor float64
	scale  float64
}

// NewNormalizeReward returns a new NormalizeReward
func NewNormalizeReward(env environment.Environment,
	factor float64) (*NormalizeReward, error) {
	if factor <= 0 {
		return nil, environment.NewConfigurationError(
			"reward_normalization_factor", "must be positive, got %v", factor)
	}

	maxDelta := env.Context().MaxDeltaHealth
	if maxDelta <= 0 {
		return nil, environment.NewConfigurationError("reward_normalization",
			"requires a health RAM state with a positive range, got max "+
				"delta health %v", maxDelta)
	}

	return &NormalizeReward{
		Environment: env,
		factor:      factor,
		scale:       factor * maxDelta,
	}, nil
}

// Step takes one environmental step and normalizes the reward
func (n *NormalizeReward) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := n.Environment.Step(action)
	if err != nil {
		return step, last, err
	}
	step.Reward /= n.scale
	return step, last, nil
}

// String returns a string representation of the environment
func (n *NormalizeReward) String() string {
	return fmt.Sprintf("NormalizeReward(factor: %v): %v", n.factor,
		n.Environment)
}

// ClipReward wraps an environment and replaces each reward with its
// sign
type ClipReward struct {
	environment.Environment
}

// NewClipReward returns a new ClipReward
func NewClipReward(env environment.Environment) *ClipReward {
	return &ClipReward{env}
}

// Step takes one environmental step and clips the reward
func (c *ClipReward) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := c.Environment.Step(action)
	if err != nil {
		return step, last, err
	}
	step.Reward = sign(step.Reward)
	return step, last, nil
}

// String returns a string representation of the environment
func (c *ClipReward) String() string {
	return fmt.Sprintf("ClipReward: %v", c.Environment)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
