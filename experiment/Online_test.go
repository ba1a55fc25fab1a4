package experiment

import (
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/environment/arena/arenatest"
	"github.com/samuelfneumann/goarena/environment/envconfig"
	"github.com/samuelfneumann/goarena/experiment/tracker"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

func TestOnline(t *testing.T) {
	engine := arenatest.NewEngine([3]int{1, 1, 1})
	engine.DefaultReward = 1
	engine.Boundaries[5] = ts.Boundary{RoundDone: true, GameDone: true,
		EpisodeDone: true}

	env, err := arena.New(engine, arena.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	ret := tracker.NewReturn(filepath.Join(t.TempDir(), "return.bin"))
	exp := NewOnline(env, NewRandom(env.Context(), 1), 12, ret)
	if err := exp.Run(); err != nil {
		t.Fatal(err)
	}

	if exp.Steps() != 12 || engine.Steps != 12 {
		t.Errorf("expected 12 steps, got %v (engine %v)", exp.Steps(),
			engine.Steps)
	}

	// The third episode is cut off by the step limit
	returns := ret.Returns()
	if len(returns) != 2 || returns[0] != 5 || returns[1] != 5 {
		t.Errorf("expected returns [5 5], got %v", returns)
	}
	if err := exp.Save(); err != nil {
		t.Fatal(err)
	}
}

func TestOnlineUpstreamError(t *testing.T) {
	engine := arenatest.NewEngine([3]int{1, 1, 1})
	engine.StepErr = errEngine
	env, err := arena.New(engine, arena.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	exp := NewOnline(env, NewRandom(env.Context(), 1), 10)
	if err := exp.Run(); !environment.IsUpstream(err) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

type engineError struct{}

func (engineError) Error() string { return "engine failed" }

var errEngine = engineError{}

func TestRandom(t *testing.T) {
	engine := arenatest.NewEngine([3]int{1, 1, 1})
	settings := arena.DefaultSettings()
	settings.NumAgents = 2
	settings.ActionSpaces = []environment.ActionSpaceKind{
		environment.Discrete, environment.MultiDiscrete}
	env, err := arena.New(engine, settings)
	if err != nil {
		t.Fatal(err)
	}

	ctx := env.Context()
	p := NewRandom(ctx, 3)
	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		action := p.SelectAction(ts.TimeStep{})
		if _, err := ctx.DecodeAll(action); err != nil {
			t.Fatalf("invalid action %v: %v", action, err)
		}
		seen[action[0][0]] = true
	}

	n := ctx.AgentActionSpace(0).N()
	if len(seen) != n {
		t.Errorf("expected all %v discrete actions, saw %v", n, len(seen))
	}
	if ctx.AgentActionSpace(1).Kind() != space.MultiDiscrete {
		t.Errorf("expected agent 1 to be multi-discrete")
	}
}

func TestCreateExp(t *testing.T) {
	c := Config{
		Type:      OnlineExp,
		MaxSteps:  20,
		EnvConfig: envconfig.Default(),
	}
	c.EnvConfig.FrameShape = []int{16, 24, 3}

	length := tracker.NewEpisodeLength(filepath.Join(t.TempDir(), "l.bin"))
	exp, err := c.CreateExp(5, []tracker.Tracker{length})
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.Run(); err != nil {
		t.Fatal(err)
	}

	c.Type = "OfflineExperiment"
	if _, err := c.CreateExp(5, nil); err == nil {
		t.Error("expected error for unknown experiment type")
	}
}

// stepLog records every tracked TimeStep
type stepLog struct {
	steps []ts.TimeStep
}

func (s *stepLog) Track(step ts.TimeStep) { s.steps = append(s.steps, step) }
func (s *stepLog) Save() error            { return nil }

func TestOnlineTruncated(t *testing.T) {
	tests := []struct {
		steps     uint
		truncated bool
	}{
		{12, true},

		// The limit coincides with the end of the second episode
		{10, false},
	}

	for _, test := range tests {
		engine := arenatest.NewEngine([3]int{1, 1, 1})
		engine.Boundaries[5] = ts.Boundary{RoundDone: true, GameDone: true,
			EpisodeDone: true}
		env, err := arena.New(engine, arena.DefaultSettings())
		if err != nil {
			t.Fatal(err)
		}

		log := &stepLog{}
		exp := NewOnline(env, NewRandom(env.Context(), 1), test.steps, log)
		if err := exp.Run(); err != nil {
			t.Fatal(err)
		}

		for i, step := range log.steps[:len(log.steps)-1] {
			if step.Truncated {
				t.Errorf("%v steps: step %v unexpectedly truncated",
					test.steps, i)
			}
		}
		last := log.steps[len(log.steps)-1]
		if last.Truncated != test.truncated || last.Last() == test.truncated {
			t.Errorf("%v steps: expected truncated %v, got truncated %v "+
				"last %v", test.steps, test.truncated, last.Truncated,
				last.Last())
		}
	}
}
