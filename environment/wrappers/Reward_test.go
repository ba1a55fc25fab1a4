package wrappers

import (
	"math"
	"testing"

	"github.com/samuelfneumann/goarena/environment"
)

func TestNormalizeReward(t *testing.T) {
	base, engine := newBase(t, [3]int{1, 1, 1}, nil)
	engine.Rewards = map[int]float64{1: 40, 2: -160, 3: 0}

	env, err := NewNormalizeReward(base, DefaultNormalizationFactor)
	if err != nil {
		t.Fatal(err)
	}
	mustReset(t, env)

	// The scripted engine reports health in [0, 160]
	for i, want := range []float64{0.5, -2, 0} {
		step := mustStep(t, env, base.Context().NoOpAction())
		if math.Abs(step.Reward-want) > 1e-12 {
			t.Errorf("step %v: expected reward %v, got %v", i+1, want,
				step.Reward)
		}
	}
}

func TestNormalizeRewardInvalid(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, nil)
	if _, err := NewNormalizeReward(base, 0); !environment.IsConfiguration(err) {
		t.Errorf("factor 0: expected configuration error, got %v", err)
	}

	ctx := base.Context()
	ctx.MaxDeltaHealth = 0
	noHealth := contextOverride{base, ctx}
	if _, err := NewNormalizeReward(noHealth, 1); !environment.IsConfiguration(err) {
		t.Errorf("no health: expected configuration error, got %v", err)
	}
}

func TestClipReward(t *testing.T) {
	rewards := []float64{-30, 0, 12.5, 1e-9, -1e-9, 1, -1, 160}

	base, engine := newBase(t, [3]int{1, 1, 1}, nil)
	for i, r := range rewards {
		engine.Rewards[i+1] = r
	}
	env := NewClipReward(base)
	mustReset(t, env)

	for _, r := range rewards {
		step := mustStep(t, env, base.Context().NoOpAction())
		if step.Reward != -1 && step.Reward != 0 && step.Reward != 1 {
			t.Errorf("reward %v clipped to %v", r, step.Reward)
		}
		if math.Signbit(step.Reward) != math.Signbit(r) && step.Reward != 0 {
			t.Errorf("reward %v changed sign: %v", r, step.Reward)
		}
		if (r == 0) != (step.Reward == 0) {
			t.Errorf("reward %v clipped to %v", r, step.Reward)
		}
	}
}

func TestNormalizeThenClip(t *testing.T) {
	base, engine := newBase(t, [3]int{1, 1, 1}, nil)
	engine.DefaultReward = -8

	env, err := Wrap(base, NormalizeRewardLayer(2), ClipRewardLayer())
	if err != nil {
		t.Fatal(err)
	}
	mustReset(t, env)

	if step := mustStep(t, env, base.Context().NoOpAction()); step.Reward != -1 {
		t.Errorf("expected reward -1, got %v", step.Reward)
	}
}
