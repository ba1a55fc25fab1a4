package recorder

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/environment/arena/arenatest"
	ts "github.com/samuelfneumann/goarena/timestep"
)

func newRecorder(t *testing.T, dir string, episodeLength int) (*Recorder,
	*arenatest.Engine) {
	t.Helper()

	engine := arenatest.NewEngine([3]int{2, 2, 1})
	engine.Boundaries[episodeLength] = ts.Boundary{RoundDone: true,
		GameDone: true, EpisodeDone: true}
	engine.DefaultReward = 2

	env, err := arena.New(engine, arena.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(env, dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	return r, engine
}

func TestRecorder(t *testing.T) {
	const (
		episodes      = 3
		episodeLength = 5
	)
	dir := filepath.Join(t.TempDir(), "episodes")
	r, engine := newRecorder(t, dir, episodeLength)

	for e := 0; e < episodes; e++ {
		if _, err := r.Reset(environment.ResetOptions{}); err != nil {
			t.Fatal(err)
		}
		for i := 0; ; i++ {
			_, last, err := r.Step(environment.Action{{i % 9, 1}})
			if err != nil {
				t.Fatal(err)
			}
			if last {
				break
			}
		}
	}

	// An unfinished episode is not written
	if _, err := r.Reset(environment.ResetOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Step(environment.Action{{0, 0}}); err != nil {
		t.Fatal(err)
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if !engine.Closed {
		t.Error("engine was not closed")
	}

	for e := 0; e < episodes; e++ {
		episode, err := Load(r.Path(e))
		if err != nil {
			t.Fatal(err)
		}
		if episode.Index != e {
			t.Errorf("expected episode %v, got %v", e, episode.Index)
		}
		if len(episode.Steps) != episodeLength+1 {
			t.Fatalf("expected %v steps, got %v", episodeLength+1,
				len(episode.Steps))
		}
		if len(episode.Settings.Roles) != 1 {
			t.Errorf("expected the roles of one agent, got %v",
				episode.Settings.Roles)
		}

		first := episode.Steps[0]
		if first.Action != nil || first.StepType != ts.First {
			t.Errorf("unexpected first step %+v", first)
		}
		for i, step := range episode.Steps[1:] {
			if step.Reward != 2 {
				t.Errorf("step %v: expected reward 2, got %v", i, step.Reward)
			}
			if step.Action[0][0] != i%9 {
				t.Errorf("step %v: expected move %v, got %v", i, i%9,
					step.Action[0][0])
			}

			// Every pixel of the scripted frame holds the step number
			if frame := step.Observation["frame"]; frame[0] != float64(i+1) {
				t.Errorf("step %v: expected frame %v, got %v", i, i+1, frame)
			}
			if _, ok := step.Observation["P1_health"]; !ok {
				t.Errorf("step %v: observation missing P1_health", i)
			}
		}
		if last := episode.Steps[episodeLength]; !last.Boundary.EpisodeDone {
			t.Errorf("expected the episode to end, got %v", last.Boundary)
		}
	}

	if _, err := os.Stat(r.Path(episodes)); !os.IsNotExist(err) {
		t.Errorf("unfinished episode was written: %v", err)
	}
}

func TestRecorderLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	dir := filepath.Join(t.TempDir(), "episodes")
	r, _ := newRecorder(t, dir, 1)

	// Writes fail once the directory is gone
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Reset(environment.ResetOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, last, err := r.Step(environment.Action{{0, 0}}); err != nil || !last {
		t.Fatalf("expected the episode to end without error, got %v, %v",
			last, err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "recorder: episode 0") {
		t.Errorf("expected the failure to be logged, got %q", buf.String())
	}
}

func TestRecorderBuffer(t *testing.T) {
	env, err := arena.New(arenatest.NewEngine([3]int{1, 1, 1}),
		arena.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	for _, buffer := range []int{0, -1} {
		if _, err := New(env, t.TempDir(), buffer); !environment.IsConfiguration(err) {
			t.Errorf("buffer %v: expected configuration error, got %v",
				buffer, err)
		}
	}
}
