package wrappers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// FlattenFilter wraps an environment and flattens the observation into
// a single level, joining nested keys with a separator. If filter keys
// are given, only those keys and the frame are kept.
type FlattenFilter struct {
	environment.Environment
	sep  string
	keep map[string]bool

	observationSpace space.Space
}

// NewFlattenFilter returns a new FlattenFilter joining keys with sep
// and keeping only the flattened keys in filter. An empty filter keeps
// every key. Every key in filter must be present in the flattened
// observation.
func NewFlattenFilter(env environment.Environment, sep string,
	filter []string) (*FlattenFilter, error) {
	if sep == "" {
		return nil, environment.NewConfigurationError("flatten",
			"separator must not be empty")
	}

	obsSpace := env.ObservationSpace()
	if err := requireDict("flatten", obsSpace); err != nil {
		return nil, err
	}
	flat := space.FlattenSpace(obsSpace, sep)

	if len(filter) == 0 {
		return &FlattenFilter{
			Environment:      env,
			sep:              sep,
			observationSpace: flat,
		}, nil
	}

	var missing []string
	keep := map[string]bool{FrameKey: true}
	for _, key := range filter {
		if _, ok := flat.Child(key); !ok {
			missing = append(missing, key)
			continue
		}
		keep[key] = true
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, environment.NewConfigurationError("filter_keys",
			"keys [%v] are not in the flattened observation, available "+
				"keys are [%v]", strings.Join(missing, ", "),
			strings.Join(flat.Keys(), ", "))
	}

	var drop []string
	for _, key := range flat.Keys() {
		if !keep[key] {
			drop = append(drop, key)
		}
	}

	return &FlattenFilter{
		Environment:      env,
		sep:              sep,
		keep:             keep,
		observationSpace: flat.Without(drop...),
	}, nil
}

// ObservationSpace returns the observation space of the environment
func (f *FlattenFilter) ObservationSpace() space.Space {
	return f.observationSpace
}

// Reset resets the environment and flattens the first observation
func (f *FlattenFilter) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := f.Environment.Reset(opts)
	if err != nil {
		return step, err
	}
	step.Observation = f.flattened(step.Observation)
	return step, nil
}

// Step takes one environmental step and flattens the observation
func (f *FlattenFilter) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := f.Environment.Step(action)
	if err != nil {
		return step, last, err
	}
	step.Observation = f.flattened(step.Observation)
	return step, last, nil
}

func (f *FlattenFilter) flattened(o space.Value) space.Value {
	flat := space.FlattenValue(o, f.sep)
	if f.keep == nil {
		return flat
	}

	var drop []string
	for _, key := range flat.Keys() {
		if !f.keep[key] {
			drop = append(drop, key)
		}
	}
	return flat.Without(drop...)
}

// String returns a string representation of the environment
func (f *FlattenFilter) String() string {
	return fmt.Sprintf("FlattenFilter(separator: %q): %v", f.sep,
		f.Environment)
}
