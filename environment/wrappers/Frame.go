// Package wrappers provides wrappers for environments.
//
// Each wrapper embeds the environment it wraps, derives its own
// observation and action spaces from the wrapped environment when it is
// constructed and transforms what passes through Reset and Step.
// Wrappers which cannot be built on top of the wrapped environment fail
// at construction with an environment.ConfigurationError.
package wrappers

import (
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
)

// FrameKey is the key of the frame in dict observations
const FrameKey = "frame"

// frameSpace returns the space of the frame of observations described
// by s and whether the frame is the root of the observation
func frameSpace(option string, s space.Space) (space.Space, bool, error) {
	if s.IsImage() {
		return s, true, nil
	}
	if s.Kind() == space.Dict {
		if f, ok := s.Child(FrameKey); ok && f.IsImage() {
			return f, false, nil
		}
	}
	return space.Space{}, false, environment.NewConfigurationError(option,
		"requires an image frame in the observation, got %v", s)
}

// withFrameSpace returns s with its frame space replaced
func withFrameSpace(s, frame space.Space) space.Space {
	if s.IsImage() {
		return frame
	}
	return s.With(FrameKey, frame)
}

// frameOf returns the frame of an observation
func frameOf(o space.Value) *tensor.Dense {
	if o.IsFrame() {
		return o.Frame()
	}
	f, _ := o.Child(FrameKey)
	return f.Frame()
}

// withFrame returns o with its frame replaced
func withFrame(o space.Value, frame *tensor.Dense) space.Value {
	if o.IsFrame() {
		return space.Frame(frame)
	}
	return o.With(FrameKey, space.Frame(frame))
}

// requireDict returns a ConfigurationError if observations described by
// s are not dicts, as is the case for hardcore environments
func requireDict(option string, s space.Space) error {
	if s.Kind() != space.Dict {
		return environment.NewConfigurationError(option,
			"requires a dict observation, got %v", s)
	}
	return nil
}
