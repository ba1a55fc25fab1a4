package wrappers

import (
	"testing"

	"github.com/samuelfneumann/goarena/environment"
	ts "github.com/samuelfneumann/goarena/timestep"
)

func TestStickyActionRequiresStepRatio(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, nil)
	if _, err := NewStickyAction(base, 4); !environment.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestStickyAction(t *testing.T) {
	const k = 4

	base, engine := newBase(t, [3]int{1, 1, 1}, stepRatioOne)
	engine.Rewards = map[int]float64{1: 1, 2: 2, 3: 3, 4: 4, 5: -1, 6: 10}
	engine.Boundaries[6] = ts.Boundary{RoundDone: true}
	engine.Boundaries[7] = ts.Boundary{StageDone: true}
	engine.Boundaries[8] = ts.Boundary{RoundDone: true, GameDone: true,
		EpisodeDone: true}

	env, err := NewStickyAction(base, k)
	if err != nil {
		t.Fatal(err)
	}
	mustReset(t, env)

	tests := []struct {
		engineSteps int
		reward      float64
		frames      int
		boundary    ts.Boundary
		last        bool
	}{
		{4, 10, 4, ts.Boundary{}, false},

		// The round ends on the second repeat
		{6, 9, 2, ts.Boundary{RoundDone: true}, false},

		// Soft flags of earlier repeats are merged into the step
		{8, 0, 2, ts.Boundary{RoundDone: true, StageDone: true,
			GameDone: true, EpisodeDone: true}, true},
	}

	action := environment.Action{{3, 1}}
	for i, test := range tests {
		step, last, err := env.Step(action)
		if err != nil {
			t.Fatal(err)
		}

		if engine.Steps != test.engineSteps {
			t.Errorf("step %v: engine took %v steps, expected %v", i,
				engine.Steps, test.engineSteps)
		}
		if step.Reward != test.reward {
			t.Errorf("step %v: expected reward %v, got %v", i, test.reward,
				step.Reward)
		}
		if step.Info.Frames != test.frames {
			t.Errorf("step %v: expected %v frames, got %v", i, test.frames,
				step.Info.Frames)
		}
		if step.Info.Boundary != test.boundary {
			t.Errorf("step %v: expected boundary {%v}, got {%v}", i,
				test.boundary, step.Info.Boundary)
		}
		if last != test.last {
			t.Errorf("step %v: expected last %v, got %v", i, test.last, last)
		}
	}

	// Every repeat forwards the same action
	for _, taken := range engine.Actions {
		if taken[0] != [2]int{3, 1} {
			t.Errorf("expected repeated action (3, 1), got %v", taken[0])
		}
	}
}
