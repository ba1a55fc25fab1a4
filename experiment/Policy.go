package experiment

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// Policy selects the joint action of all agents given the current
// TimeStep
type Policy interface {
	SelectAction(t ts.TimeStep) environment.Action
}

// Random is a Policy which selects each agent's action uniformly at
// random from its action space
type Random struct {
	spaces []space.Space
	rng    *rand.Rand
}

// NewRandom returns a new Random policy over the action spaces
// described by ctx
func NewRandom(ctx environment.Context, seed uint64) *Random {
	spaces := make([]space.Space, ctx.NumAgents)
	for i := range spaces {
		spaces[i] = ctx.AgentActionSpace(i)
	}
	return &Random{
		spaces: spaces,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// SelectAction selects a random action for each agent
func (r *Random) SelectAction(ts.TimeStep) environment.Action {
	action := make(environment.Action, len(r.spaces))
	for i, s := range r.spaces {
		switch s.Kind() {
		case space.Discrete:
			action[i] = []int{r.rng.Intn(s.N())}

		case space.MultiDiscrete:
			nvec := s.Nvec()
			action[i] = make([]int, len(nvec))
			for j, n := range nvec {
				action[i][j] = r.rng.Intn(n)
			}
		}
	}
	return action
}
