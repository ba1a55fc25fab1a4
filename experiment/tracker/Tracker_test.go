package tracker

import (
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/environment/arena/arenatest"
	"github.com/samuelfneumann/goarena/environment/wrappers"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// runEpisodes runs episodes of the given length in env, sending every
// TimeStep to the trackers
func runEpisodes(t *testing.T, env environment.Environment, episodes int,
	trackers ...Tracker) {
	t.Helper()

	for e := 0; e < episodes; e++ {
		step, err := env.Reset(environment.ResetOptions{})
		if err != nil {
			t.Fatal(err)
		}
		for _, tr := range trackers {
			tr.Track(step)
		}

		for !step.Last() {
			step, _, err = env.Step(env.Context().NoOpAction())
			if err != nil {
				t.Fatal(err)
			}
			for _, tr := range trackers {
				tr.Track(step)
			}
		}
	}
}

func newEnv(t *testing.T) (*arena.Env, *arenatest.Engine) {
	t.Helper()

	engine := arenatest.NewEngine([3]int{1, 1, 1})
	engine.Rewards = map[int]float64{1: 3, 2: -1, 3: 0.5, 4: 2}
	engine.Boundaries[2] = ts.Boundary{RoundDone: true}
	engine.Boundaries[3] = ts.Boundary{RoundDone: true, StageDone: true}
	engine.Boundaries[4] = ts.Boundary{RoundDone: true, StageDone: true,
		GameDone: true, EpisodeDone: true}

	env, err := arena.New(engine, arena.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	return env, engine
}

func TestTrackers(t *testing.T) {
	const episodes = 3
	dir := t.TempDir()

	env, _ := newEnv(t)
	ret := NewReturn(filepath.Join(dir, "return.bin"))
	length := NewEpisodeLength(filepath.Join(dir, "length.bin"))
	boundaries := NewBoundaries(filepath.Join(dir, "boundaries.bin"))
	runEpisodes(t, env, episodes, ret, length, boundaries)

	for _, r := range ret.Returns() {
		if r != 4.5 {
			t.Errorf("expected return 4.5, got %v", r)
		}
	}

	// Each of the 4 steps emulates 6 frames
	for _, l := range length.Lengths() {
		if l != 24 {
			t.Errorf("expected length 24, got %v", l)
		}
	}
	for _, p := range boundaries.Episodes() {
		if p != (Progress{Rounds: 3, Stages: 2, Games: 1}) {
			t.Errorf("unexpected progress %+v", p)
		}
	}

	for _, tr := range []Tracker{ret, length, boundaries} {
		if err := tr.Save(); err != nil {
			t.Fatal(err)
		}
	}

	returns, err := LoadData[float64](filepath.Join(dir, "return.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(returns) != episodes {
		t.Errorf("expected %v returns, got %v", episodes, returns)
	}
	progress, err := LoadData[Progress](filepath.Join(dir, "boundaries.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(progress) != episodes || progress[0].Games != 1 {
		t.Errorf("unexpected progress %v", progress)
	}

	if _, err := LoadData[int](filepath.Join(dir, "missing.bin")); err == nil {
		t.Error("expected error loading a missing file")
	}
}

func TestRegister(t *testing.T) {
	base, _ := newEnv(t)
	clipped := wrappers.NewClipReward(base)

	wrapped := NewReturn("")
	raw := NewReturn("")
	runEpisodes(t, clipped, 2, wrapped, Register(raw, base))

	for i, r := range wrapped.Returns() {
		if r != 2 {
			t.Errorf("episode %v: expected clipped return 2, got %v", i, r)
		}
	}
	for i, r := range raw.Returns() {
		if r != 4.5 {
			t.Errorf("episode %v: expected base return 4.5, got %v", i, r)
		}
	}
}
