package wrappers

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/goarena/environment"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// NoOpReset wraps an environment and, after each reset, takes the no-op
// action a random number of times drawn uniformly from [1, max+1]. If
// the episode ends while replaying no-ops, the environment is reset and
// the remaining no-ops are replayed in the new episode.
type NoOpReset struct {
	environment.Environment
	max int
	rng *rand.Rand

	lastNoOps int
}

// NewNoOpReset returns a new NoOpReset whose random number generator is
// seeded with seed
func NewNoOpReset(env environment.Environment, max int,
	seed uint64) (*NoOpReset, error) {
	if max < 1 {
		return nil, environment.NewConfigurationError("no_op_max",
			"must be at least 1, got %v", max)
	}
	return &NoOpReset{
		Environment: env,
		max:         max,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// Reset resets the environment and replays the no-op. A seed in opts
// also reseeds the wrapper.
func (n *NoOpReset) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	if opts.Seed != nil {
		n.rng.Seed(*opts.Seed)
	}

	step, err := n.Environment.Reset(opts)
	if err != nil {
		return step, err
	}

	// Resets during the replay keep the roles but not the seed, which
	// would otherwise replay the same episode
	again := environment.ResetOptions{Roles: opts.Roles}

	noOp := n.Context().NoOpAction()
	n.lastNoOps = 1 + n.rng.Intn(n.max+1)
	for i := 0; i < n.lastNoOps; i++ {
		var last bool
		step, last, err = n.Environment.Step(noOp)
		if err != nil {
			return step, err
		}
		if last {
			step, err = n.Environment.Reset(again)
			if err != nil {
				return step, err
			}
		}
	}

	step.StepType = ts.First
	step.Reward = 0
	return step, nil
}

// noOpSalt separates the stream of a derived NoOpReset seed from the
// stream of the base environment
const noOpSalt = 0x9e3779b97f4a7c15

// NoOpSeed returns the seed of a NoOpReset derived from the seed of the
// base environment described by ctx
func NoOpSeed(ctx environment.Context) uint64 {
	return ctx.Seed ^ noOpSalt
}

// LastNoOps returns the number of no-ops replayed at the last reset
func (n *NoOpReset) LastNoOps() int {
	return n.lastNoOps
}

// String returns a string representation of the environment
func (n *NoOpReset) String() string {
	return fmt.Sprintf("NoOpReset(max: %v): %v", n.max, n.Environment)
}
