package wrappers

import (
	"testing"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/environment/arena/arenatest"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// newBase returns a base environment over a scripted engine producing
// frames of the given shape. The settings may be modified before the
// environment is created.
func newBase(t *testing.T, frameShape [3]int,
	modify func(*arena.Settings)) (*arena.Env, *arenatest.Engine) {
	t.Helper()

	engine := arenatest.NewEngine(frameShape)
	s := arena.DefaultSettings()
	if modify != nil {
		modify(&s)
	}
	env, err := arena.New(engine, s)
	if err != nil {
		t.Fatalf("newBase: %v", err)
	}
	return env, engine
}

func twoAgents(s *arena.Settings) {
	s.NumAgents = 2
	s.ActionSpaces = []environment.ActionSpaceKind{environment.MultiDiscrete,
		environment.MultiDiscrete}
}

func hardcore(s *arena.Settings) {
	s.Hardcore = true
}

func stepRatioOne(s *arena.Settings) {
	s.StepRatio = 1
}

// frameData returns the elements of the frame of an observation as
// float64s
func frameData(t *testing.T, o space.Value) []float64 {
	t.Helper()

	switch data := frameOf(o).Data().(type) {
	case []uint8:
		out := make([]float64, len(data))
		for i, x := range data {
			out[i] = float64(x)
		}
		return out

	case []float32:
		out := make([]float64, len(data))
		for i, x := range data {
			out[i] = float64(x)
		}
		return out
	}
	t.Fatalf("unexpected frame dtype %v", frameOf(o).Dtype())
	return nil
}

// mustReset resets env and checks the observation against its space
func mustReset(t *testing.T, env environment.Environment) ts.TimeStep {
	t.Helper()

	step, err := env.Reset(environment.ResetOptions{})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := space.Check(env.ObservationSpace(), step.Observation); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return step
}

// mustStep steps env and checks the observation against its space
func mustStep(t *testing.T, env environment.Environment,
	action environment.Action) ts.TimeStep {
	t.Helper()

	step, _, err := env.Step(action)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := space.Check(env.ObservationSpace(), step.Observation); err != nil {
		t.Fatalf("step: %v", err)
	}
	return step
}

// contextOverride replaces the Context of an environment
type contextOverride struct {
	environment.Environment
	ctx environment.Context
}

func (c contextOverride) Context() environment.Context {
	return c.ctx
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
