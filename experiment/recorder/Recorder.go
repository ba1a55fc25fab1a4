// Package recorder implements an environment wrapper which records
// episodes to disk
package recorder

import (
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// Step is a single recorded TimeStep. The observation is flattened and
// every leaf, frames included, is stored as a slice of float64s.
type Step struct {
	Number      int
	StepType    ts.StepType
	Action      environment.Action
	Reward      float64
	Boundary    ts.Boundary
	Frames      int
	Observation map[string][]float64
}

// Episode is a recorded episode. The first step is the step returned
// by Reset and has a nil action.
type Episode struct {
	Index    int
	Settings ts.EpisodeSettings
	Steps    []Step
}

// Recorder wraps an environment and records each episode. Steps are
// kept in memory until the episode ends, at which point the episode is
// handed to a background writer which gob-encodes it to
// <dir>/episode_<index>.gob. Episodes which have not ended when the
// environment is reset or closed are discarded.
//
// Write failures are logged and never returned from Reset or Step.
type Recorder struct {
	environment.Environment
	dir string

	current  *Episode
	episodes int

	queue  chan *Episode
	done   chan struct{}
	closed bool
}

// New returns a new Recorder writing to dir, which is created if
// needed. Up to buffer completed episodes are queued for writing before
// Step blocks, so buffer must be at least 1.
func New(env environment.Environment, dir string,
	buffer int) (*Recorder, error) {
	if buffer < 1 {
		return nil, environment.NewConfigurationError("record_buffer",
			"must be at least 1, got %v", buffer)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	r := &Recorder{
		Environment: env,
		dir:         dir,
		queue:       make(chan *Episode, buffer),
		done:        make(chan struct{}),
	}
	go r.write()
	return r, nil
}

// write saves episodes from the queue until the queue is closed
func (r *Recorder) write() {
	defer close(r.done)
	for e := range r.queue {
		if err := Save(r.Path(e.Index), e); err != nil {
			log.Printf("recorder: episode %v: %v", e.Index, err)
		}
	}
}

// Path returns the file which holds the episode with the given index
func (r *Recorder) Path(index int) string {
	return filepath.Join(r.dir, fmt.Sprintf("episode_%d.gob", index))
}

// Reset resets the environment and starts recording a new episode
func (r *Recorder) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := r.Environment.Reset(opts)
	if err != nil {
		return step, err
	}

	r.current = &Episode{
		Index:    r.episodes,
		Settings: step.Info.Settings.Clone(),
	}
	r.episodes++
	r.record(nil, step)
	return step, nil
}

// Step takes one environmental step and records it
func (r *Recorder) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := r.Environment.Step(action)
	if err != nil {
		return step, last, err
	}

	if r.current == nil {
		return step, last, nil
	}
	r.record(action.Clone(), step)

	if last && !r.closed {
		r.queue <- r.current
		r.current = nil
	}
	return step, last, nil
}

func (r *Recorder) record(action environment.Action, step ts.TimeStep) {
	r.current.Steps = append(r.current.Steps, Step{
		Number:      step.Number,
		StepType:    step.StepType,
		Action:      action,
		Reward:      step.Reward,
		Boundary:    step.Info.Boundary,
		Frames:      step.Info.Frames,
		Observation: flatten(step.Observation),
	})
}

// Episodes returns the number of episodes started
func (r *Recorder) Episodes() int {
	return r.episodes
}

// Close waits for queued episodes to be written and closes the
// environment
func (r *Recorder) Close() error {
	if !r.closed {
		r.closed = true
		close(r.queue)
		<-r.done
	}
	return r.Environment.Close()
}

// String returns a string representation of the environment
func (r *Recorder) String() string {
	return fmt.Sprintf("Recorder(%v): %v", r.dir, r.Environment)
}

// flatten converts an observation to a map of float64 slices
func flatten(o space.Value) map[string][]float64 {
	flat := space.FlattenValue(o, space.DefaultSeparator)
	if !flat.IsNode() {
		return map[string][]float64{"": leaf(flat)}
	}

	out := make(map[string][]float64)
	for _, k := range flat.Keys() {
		v, _ := flat.Child(k)
		out[k] = leaf(v)
	}
	return out
}

func leaf(v space.Value) []float64 {
	if !v.IsFrame() {
		return append([]float64(nil), v.Data()...)
	}

	var out []float64
	switch data := v.Frame().Data().(type) {
	case []uint8:
		out = make([]float64, len(data))
		for i, x := range data {
			out[i] = float64(x)
		}

	case []float32:
		out = make([]float64, len(data))
		for i, x := range data {
			out[i] = float64(x)
		}

	case []float64:
		out = append(out, data...)
	}
	return out
}

// Save gob-encodes an episode to path
func Save(path string, e *Episode) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(e); err != nil {
		return fmt.Errorf("save: could not encode episode: %w", err)
	}
	return nil
}

// Load loads an episode saved by a Recorder
func Load(path string) (Episode, error) {
	file, err := os.Open(path)
	if err != nil {
		return Episode{}, fmt.Errorf("load: %w", err)
	}
	defer file.Close()

	var e Episode
	if err := gob.NewDecoder(file).Decode(&e); err != nil {
		return Episode{}, fmt.Errorf("load: could not decode episode: %w", err)
	}
	return e, nil
}
