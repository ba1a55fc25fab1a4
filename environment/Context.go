package environment

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/goarena/space"
)

// ActionSpaceKind determines how an agent encodes its actions
type ActionSpaceKind int

const (
	// Discrete agents select a single index covering the no-op, the
	// moves and the attacks
	Discrete ActionSpaceKind = iota

	// MultiDiscrete agents select a (move, attack) pair
	MultiDiscrete
)

func (a ActionSpaceKind) String() string {
	if a == Discrete {
		return "Discrete"
	}
	return "MultiDiscrete"
}

// RAMKind is the semantic kind of a RAM state reading
type RAMKind int

const (
	Binary RAMKind = iota
	Categorical
	Continuous
)

// RAMState describes a named reading exposed by the engine
type RAMState struct {
	Name string
	Kind RAMKind

	// Range bounds the reading. Categorical readings take the integer
	// values Range.Min, ..., Range.Max and are exposed shifted to
	// start at zero.
	Range r1.Interval

	// PerPlayer readings are reported once for each side of the screen
	PerPlayer bool
}

// Space returns the observation space of the reading
func (r RAMState) Space() space.Space {
	switch r.Kind {
	case Binary:
		return space.NewDiscrete(2)

	case Categorical:
		return space.NewDiscrete(int(r.Range.Max-r.Range.Min) + 1)

	case Continuous:
		return space.NewUniformBox([]int{1}, r.Range.Min, r.Range.Max,
			tensor.Float64)
	}
	panic(fmt.Sprintf("space: unknown RAM kind %v", r.Kind))
}

// Context is the immutable description of an environment shared by
// every unit in a wrapper chain. Wrappers read the Context of the
// environment they wrap instead of reaching into distant ancestors. A
// wrapper that changes something the Context describes returns a new
// Context from its own Context method.
type Context struct {
	// FrameShape is the (height, width, channels) of raw frames
	FrameShape [3]int

	NumAgents    int
	ActionSpaces []ActionSpaceKind

	Moves   int
	Attacks int

	// AttacksNoCombinations is the number of attacks once multi-button
	// combinations are removed
	AttacksNoCombinations int

	// AttackCombinations reports whether attacks include multi-button
	// combinations
	AttackCombinations bool

	RAMStates []RAMState

	// MaxDeltaHealth is the largest health change possible in a step
	MaxDeltaHealth float64

	// StepRatio is the number of emulated frames per engine step
	StepRatio int

	// Hardcore environments observe only the frame
	Hardcore bool

	// Seed is the seed the base environment was created with
	Seed uint64
}

// NumAttacks returns the number of attacks available to agents
func (c Context) NumAttacks() int {
	if c.AttackCombinations {
		return c.Attacks
	}
	return c.AttacksNoCombinations
}

// WithoutAttackCombinations returns a copy of the Context without
// multi-button attack combinations
func (c Context) WithoutAttackCombinations() Context {
	c = c.clone()
	c.AttackCombinations = false
	return c
}

// WithStepRatio returns a copy of the Context with a new step ratio
func (c Context) WithStepRatio(ratio int) Context {
	c = c.clone()
	c.StepRatio = ratio
	return c
}

// WithFrameShape returns a copy of the Context with a new frame shape
func (c Context) WithFrameShape(shape [3]int) Context {
	c = c.clone()
	c.FrameShape = shape
	return c
}

func (c Context) clone() Context {
	c.ActionSpaces = append([]ActionSpaceKind(nil), c.ActionSpaces...)
	c.RAMStates = append([]RAMState(nil), c.RAMStates...)
	return c
}

// AgentActionSpace returns the action space of agent i
func (c Context) AgentActionSpace(agent int) space.Space {
	if c.ActionSpaces[agent] == Discrete {
		return space.NewDiscrete(c.Moves + c.NumAttacks() - 1)
	}
	return space.NewMultiDiscrete([]int{c.Moves, c.NumAttacks()})
}

// ActionSpace returns the joint action space of all agents. A single
// agent's space is returned directly; multiple agents are keyed by
// AgentKey.
func (c Context) ActionSpace() space.Space {
	if c.NumAgents == 1 {
		return c.AgentActionSpace(0)
	}
	children := make(map[string]space.Space, c.NumAgents)
	for i := 0; i < c.NumAgents; i++ {
		children[AgentKey(i)] = c.AgentActionSpace(i)
	}
	return space.NewDict(children)
}

// MoveAttackSpace returns the space of decoded (move, attack) pairs
func (c Context) MoveAttackSpace() space.Space {
	return space.NewMultiDiscrete([]int{c.Moves, c.NumAttacks()})
}

// NoOp returns the encoded no-op action of agent i
func (c Context) NoOp(agent int) []int {
	if c.ActionSpaces[agent] == Discrete {
		return []int{0}
	}
	return []int{0, 0}
}

// NoOpAction returns the joint no-op action of all agents
func (c Context) NoOpAction() Action {
	a := make(Action, c.NumAgents)
	for i := range a {
		a[i] = c.NoOp(i)
	}
	return a
}

// Decode returns the (move, attack) pair encoded by the action of
// agent i. Discrete index 0 is the no-op, indices 1 to Moves-1 are
// moves and the remaining indices are attacks.
func (c Context) Decode(agent int, a []int) ([2]int, error) {
	switch c.ActionSpaces[agent] {
	case Discrete:
		if len(a) != 1 {
			return [2]int{}, fmt.Errorf("decode: agent %v expects 1 action "+
				"element, got %v", agent, len(a))
		}
		n := c.Moves + c.NumAttacks() - 1
		idx := a[0]
		if idx < 0 || idx >= n {
			return [2]int{}, fmt.Errorf("decode: agent %v action %v outside "+
				"[0, %v)", agent, idx, n)
		}
		if idx < c.Moves {
			return [2]int{idx, 0}, nil
		}
		return [2]int{0, idx - c.Moves + 1}, nil

	case MultiDiscrete:
		if len(a) != 2 {
			return [2]int{}, fmt.Errorf("decode: agent %v expects 2 action "+
				"elements, got %v", agent, len(a))
		}
		if a[0] < 0 || a[0] >= c.Moves {
			return [2]int{}, fmt.Errorf("decode: agent %v move %v outside "+
				"[0, %v)", agent, a[0], c.Moves)
		}
		if a[1] < 0 || a[1] >= c.NumAttacks() {
			return [2]int{}, fmt.Errorf("decode: agent %v attack %v outside "+
				"[0, %v)", agent, a[1], c.NumAttacks())
		}
		return [2]int{a[0], a[1]}, nil
	}
	return [2]int{}, fmt.Errorf("decode: unknown action space %v",
		c.ActionSpaces[agent])
}

// DecodeAll decodes the joint action of all agents
func (c Context) DecodeAll(a Action) ([][2]int, error) {
	if len(a) != c.NumAgents {
		return nil, fmt.Errorf("decode: expected actions for %v agents, got "+
			"%v", c.NumAgents, len(a))
	}
	out := make([][2]int, len(a))
	for i := range a {
		pair, err := c.Decode(i, a[i])
		if err != nil {
			return nil, err
		}
		out[i] = pair
	}
	return out, nil
}

// AgentKey returns the observation and action key of agent i
func AgentKey(agent int) string {
	return fmt.Sprintf("agent_%d", agent)
}

// AgentPath returns the path of an agent-scoped observation key. With
// a single agent the key lives at the root, otherwise under AgentKey.
func (c Context) AgentPath(agent int, key string) []string {
	if c.NumAgents == 1 {
		return []string{key}
	}
	return []string{AgentKey(agent), key}
}
