package wrappers

import (
	"testing"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

func lookupInts(t *testing.T, o space.Value, path ...string) []float64 {
	t.Helper()

	v, ok := o.Lookup(path...)
	if !ok {
		t.Fatalf("observation has no value at %v: %v", path, o)
	}
	return v.Data()
}

func TestAddLastAction(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, func(s *arena.Settings) {
		s.ActionSpaces = []environment.ActionSpaceKind{environment.Discrete}
	})
	env, err := NewAddLastAction(base)
	if err != nil {
		t.Fatal(err)
	}

	want := space.NewMultiDiscrete([]int{9, 8})
	if got, _ := env.ObservationSpace().Child(ActionKey); !got.Equal(want) {
		t.Errorf("expected action space %v, got %v", want, got)
	}

	step := mustReset(t, env)
	if got := lookupInts(t, step.Observation, ActionKey); !equalFloats(got, []float64{0, 0}) {
		t.Errorf("reset: expected no-op, got %v", got)
	}

	// Discrete actions are reported decoded
	for action, pair := range map[int][]float64{
		0:  {0, 0},
		4:  {4, 0},
		9:  {0, 1},
		15: {0, 7},
	} {
		step = mustStep(t, env, environment.Action{{action}})
		if got := lookupInts(t, step.Observation, ActionKey); !equalFloats(got, pair) {
			t.Errorf("action %v: expected %v, got %v", action, pair, got)
		}
	}

	if _, _, err := env.Step(environment.Action{{16}}); err == nil {
		t.Error("expected error for action outside the action space")
	}
}

func TestAddLastActionTwoAgents(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, twoAgents)
	env, err := NewAddLastAction(base)
	if err != nil {
		t.Fatal(err)
	}
	mustReset(t, env)

	step := mustStep(t, env, environment.Action{{3, 2}, {7, 5}})
	for i, want := range [][]float64{{3, 2}, {7, 5}} {
		got := lookupInts(t, step.Observation, environment.AgentKey(i), ActionKey)
		if !equalFloats(got, want) {
			t.Errorf("agent %v: expected %v, got %v", i, want, got)
		}
	}

	// The agent dicts keep their player readings
	if _, ok := step.Observation.Lookup(environment.AgentKey(0), ActionKey); !ok {
		t.Error("agent 0 lost its action")
	}
	if _, ok := step.Observation.Lookup("P1", "health"); !ok {
		t.Error("observation lost P1 health")
	}
}

func TestAddLastActionHardcore(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, hardcore)
	if _, err := NewAddLastAction(base); !environment.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestActionStackRequiresLastAction(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, nil)
	if _, err := NewActionStack(base, 3); !environment.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestActionStack(t *testing.T) {
	const n = 3

	base, engine := newBase(t, [3]int{1, 1, 1}, nil)
	engine.Boundaries[3] = ts.Boundary{RoundDone: true}

	last, err := NewAddLastAction(base)
	if err != nil {
		t.Fatal(err)
	}
	env, err := NewActionStack(last, n)
	if err != nil {
		t.Fatal(err)
	}

	want := space.NewMultiDiscrete([]int{9, 8, 9, 8, 9, 8})
	if got, _ := env.ObservationSpace().Child(ActionKey); !got.Equal(want) {
		t.Errorf("expected action space %v, got %v", want, got)
	}

	step := mustReset(t, env)
	if got := lookupInts(t, step.Observation, ActionKey); !equalFloats(got, make([]float64, 2*n)) {
		t.Errorf("reset: expected no-ops, got %v", got)
	}

	tests := []struct {
		action environment.Action
		want   []float64
	}{
		{environment.Action{{2, 3}}, []float64{0, 0, 0, 0, 2, 3}},
		{environment.Action{{4, 1}}, []float64{0, 0, 2, 3, 4, 1}},

		// Round boundary: the history is refilled with no-ops
		{environment.Action{{5, 5}}, []float64{0, 0, 0, 0, 0, 0}},
		{environment.Action{{1, 1}}, []float64{0, 0, 0, 0, 1, 1}},
		{environment.Action{{6, 7}}, []float64{0, 0, 1, 1, 6, 7}},
		{environment.Action{{8, 2}}, []float64{1, 1, 6, 7, 8, 2}},
	}
	for i, test := range tests {
		step = mustStep(t, env, test.action)
		got := lookupInts(t, step.Observation, ActionKey)
		if !equalFloats(got, test.want) {
			t.Errorf("step %v: expected %v, got %v", i+1, test.want, got)
		}
		if h := env.History(0); len(h) != n {
			t.Errorf("step %v: history holds %v actions, expected %v", i+1,
				len(h), n)
		}
	}
}

func TestActionStackTwoAgents(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, twoAgents)
	last, err := NewAddLastAction(base)
	if err != nil {
		t.Fatal(err)
	}
	env, err := NewActionStack(last, 2)
	if err != nil {
		t.Fatal(err)
	}
	mustReset(t, env)

	mustStep(t, env, environment.Action{{1, 2}, {3, 4}})
	step := mustStep(t, env, environment.Action{{5, 6}, {7, 0}})
	for i, want := range [][]float64{{1, 2, 5, 6}, {3, 4, 7, 0}} {
		got := lookupInts(t, step.Observation, environment.AgentKey(i), ActionKey)
		if !equalFloats(got, want) {
			t.Errorf("agent %v: expected %v, got %v", i, want, got)
		}
	}
}
