package wrappers

import (
	"slices"
	"testing"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// TestNoOpResetUniform checks that the number of no-ops replayed at
// reset is uniform over [1, max+1] with a chi-squared test
func TestNoOpResetUniform(t *testing.T) {
	const (
		max    = 3
		resets = 1000
		alpha  = 0.001
	)

	base, engine := newBase(t, [3]int{1, 1, 1}, nil)
	env, err := NewNoOpReset(base, max, 42)
	if err != nil {
		t.Fatal(err)
	}

	counts := make([]float64, max+1)
	for i := 0; i < resets; i++ {
		before := engine.Steps
		step := mustReset(t, env)

		n := env.LastNoOps()
		if n < 1 || n > max+1 {
			t.Fatalf("replayed %v no-ops, expected a value in [1, %v]", n,
				max+1)
		}
		if replayed := engine.Steps - before; replayed != n {
			t.Fatalf("engine took %v steps, expected %v", replayed, n)
		}
		if !step.First() {
			t.Errorf("expected first step after reset, got %v", step.StepType)
		}
		counts[n-1]++
	}

	expected := make([]float64, max+1)
	for i := range expected {
		expected[i] = resets / float64(max+1)
	}
	chi2 := stat.ChiSquare(counts, expected)
	dist := distuv.ChiSquared{K: max}
	if p := dist.Survival(chi2); p < alpha {
		t.Errorf("no-op counts %v are not uniform: chi2 = %v, p = %v", counts,
			chi2, p)
	}
}

// TestNoOpResetEpisodeEnds checks that the environment is reset when the
// episode ends while replaying no-ops
func TestNoOpResetEpisodeEnds(t *testing.T) {
	const max = 5

	base, engine := newBase(t, [3]int{1, 1, 1}, nil)
	engine.Boundaries[2] = ts.Boundary{EpisodeDone: true, GameDone: true,
		RoundDone: true}
	engine.DefaultReward = 3

	env, err := NewNoOpReset(base, max, 7)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		resets, steps := engine.Resets, engine.Steps

		step := mustReset(t, env)
		n := env.LastNoOps()

		// Every second no-op ends the episode
		if got := engine.Resets - resets; got != 1+n/2 {
			t.Errorf("%v no-ops: engine reset %v times, expected %v", n, got,
				1+n/2)
		}
		if got := engine.Steps - steps; got != n {
			t.Errorf("%v no-ops: engine took %v steps, expected %v", n, got, n)
		}
		if !step.First() || step.Reward != 0 {
			t.Errorf("expected a first step without reward, got %v", step)
		}
		if got := engine.EpisodeStep(); got != n%2 {
			t.Errorf("%v no-ops: episode at step %v, expected %v", n, got, n%2)
		}
	}
}

func TestNoOpResetSeed(t *testing.T) {
	replays := func(seed uint64) []int {
		base, _ := newBase(t, [3]int{1, 1, 1}, nil)
		env, err := NewNoOpReset(base, 30, 0)
		if err != nil {
			t.Fatal(err)
		}

		out := make([]int, 0, 10)
		if _, err := env.Reset(environment.ResetOptions{Seed: &seed}); err != nil {
			t.Fatal(err)
		}
		out = append(out, env.LastNoOps())
		for i := 0; i < 9; i++ {
			mustReset(t, env)
			out = append(out, env.LastNoOps())
		}
		return out
	}

	a, b := replays(11), replays(11)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed replayed different no-ops: %v and %v", a, b)
		}
	}
}

func TestNoOpResetInvalid(t *testing.T) {
	base, _ := newBase(t, [3]int{1, 1, 1}, nil)
	if _, err := NewNoOpReset(base, 0, 0); !environment.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestNoOpResetDerivedSeed(t *testing.T) {
	noOps := func(seed uint64, noOpSeed *uint64) []int {
		base, _ := newBase(t, [3]int{1, 1, 1}, func(s *arena.Settings) {
			s.Seed = seed
		})
		c := DefaultConfig()
		c.NoOpMax = 8
		c.NoOpSeed = noOpSeed
		env, err := Make(base, c)
		if err != nil {
			t.Fatal(err)
		}

		n := env.(*NoOpReset)
		var out []int
		for i := 0; i < 20; i++ {
			if _, err := n.Reset(environment.ResetOptions{}); err != nil {
				t.Fatal(err)
			}
			out = append(out, n.LastNoOps())
		}
		return out
	}

	if slices.Equal(noOps(1, nil), noOps(2, nil)) {
		t.Error("expected environments with different seeds to replay " +
			"different no-ops")
	}
	if !slices.Equal(noOps(1, nil), noOps(1, nil)) {
		t.Error("expected environments with equal seeds to replay the " +
			"same no-ops")
	}

	explicit := uint64(7)
	if !slices.Equal(noOps(1, &explicit), noOps(2, &explicit)) {
		t.Error("expected an explicit seed to override the base seed")
	}
}
