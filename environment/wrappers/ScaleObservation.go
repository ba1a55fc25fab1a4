package wrappers

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// ScaleObservation wraps an environment and rescales every leaf of the
// observation to [0, 1] according to its space:
//
//	Discrete(n), n > 2         one-hot vector of length n
//	Discrete(2)                one-hot vector of length 2 if binary
//	                           leaves are processed, unchanged otherwise
//	MultiDiscrete(nvec)        concatenated one-hot vectors of lengths nvec
//	Box                        (x - low) / (high - low), or 0 when
//	                           high == low
//
// Frames are scaled to float32 unless image scaling is excluded. Frames
// are Box leaves of rank 3 or more.
type ScaleObservation struct {
	environment.Environment
	excludeImages bool
	binary        bool

	wrappedSpace     space.Space
	observationSpace space.Space
}

// NewScaleObservation returns a new ScaleObservation. If excludeImages
// is true, frames are left unchanged. If binary is true, Discrete(2)
// leaves are one-hot encoded.
func NewScaleObservation(env environment.Environment, excludeImages,
	binary bool) *ScaleObservation {
	s := &ScaleObservation{
		Environment:   env,
		excludeImages: excludeImages,
		binary:        binary,
		wrappedSpace:  env.ObservationSpace(),
	}
	s.observationSpace = s.scaledSpace(s.wrappedSpace)
	return s
}

// ObservationSpace returns the observation space of the environment
func (s *ScaleObservation) ObservationSpace() space.Space {
	return s.observationSpace
}

func (s *ScaleObservation) scaledSpace(sp space.Space) space.Space {
	switch sp.Kind() {
	case space.Dict:
		children := make(map[string]space.Space)
		for _, k := range sp.Keys() {
			child, _ := sp.Child(k)
			children[k] = s.scaledSpace(child)
		}
		return space.NewDict(children)

	case space.Discrete:
		if !s.oneHot(sp) {
			return sp
		}
		return space.NewUniformBox([]int{sp.N()}, 0, 1, tensor.Float64)

	case space.MultiDiscrete:
		width := 0
		for _, n := range sp.Nvec() {
			width += n
		}
		return space.NewUniformBox([]int{width}, 0, 1, tensor.Float64)

	case space.Box:
		if sp.IsImage() {
			if s.excludeImages {
				return sp
			}
			return space.NewUniformBox(sp.Shape(), 0, 1, tensor.Float32)
		}
		return space.NewUniformBox(sp.Shape(), 0, 1, tensor.Float64)
	}
	panic(fmt.Sprintf("scaledSpace: unknown space kind %v", sp.Kind()))
}

// oneHot returns whether a Discrete leaf is one-hot encoded
func (s *ScaleObservation) oneHot(sp space.Space) bool {
	return sp.N() > 2 || (sp.N() == 2 && s.binary)
}

// Reset resets the environment and scales the first observation
func (s *ScaleObservation) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := s.Environment.Reset(opts)
	if err != nil {
		return step, err
	}
	step.Observation, err = s.scale(s.wrappedSpace, step.Observation)
	return step, err
}

// Step takes one environmental step and scales the observation
func (s *ScaleObservation) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := s.Environment.Step(action)
	if err != nil {
		return step, last, err
	}
	step.Observation, err = s.scale(s.wrappedSpace, step.Observation)
	return step, last, err
}

// scale scales the observation o described by sp
func (s *ScaleObservation) scale(sp space.Space, o space.Value) (space.Value,
	error) {
	switch sp.Kind() {
	case space.Dict:
		children := make(map[string]space.Value)
		for _, k := range sp.Keys() {
			childSpace, _ := sp.Child(k)
			child, ok := o.Child(k)
			if !ok {
				return o, &environment.StateInvariantError{
					Op:  "scale",
					Err: fmt.Errorf("observation missing key %q", k),
				}
			}
			scaled, err := s.scale(childSpace, child)
			if err != nil {
				return o, err
			}
			children[k] = scaled
		}
		return space.Node(children), nil

	case space.Discrete:
		if !s.oneHot(sp) {
			return o, nil
		}
		return space.Vector(oneHot(o.Int(0), sp.N())...), nil

	case space.MultiDiscrete:
		var out []float64
		for i, n := range sp.Nvec() {
			out = append(out, oneHot(o.Int(i), n)...)
		}
		return space.Vector(out...), nil

	case space.Box:
		if sp.IsImage() {
			if s.excludeImages {
				return o, nil
			}
			frame, err := scaleFrame(sp, o.Frame())
			if err != nil {
				return o, err
			}
			return space.Frame(frame), nil
		}

		data := o.Data()
		out := make([]float64, len(data))
		for i, x := range data {
			out[i] = minMax(x, sp.Low(i), sp.High(i))
		}
		return space.Vector(out...), nil
	}
	return o, &environment.StateInvariantError{
		Op:  "scale",
		Err: fmt.Errorf("unknown space kind %v", sp.Kind()),
	}
}

// scaleFrame returns a float32 frame with each element of f scaled to
// [0, 1] by the bounds of sp
func scaleFrame(sp space.Space, f *tensor.Dense) (*tensor.Dense, error) {
	out := make([]float32, f.Size())
	switch data := f.Data().(type) {
	case []uint8:
		for i, x := range data {
			out[i] = float32(minMax(float64(x), sp.Low(i), sp.High(i)))
		}

	case []float32:
		for i, x := range data {
			out[i] = float32(minMax(float64(x), sp.Low(i), sp.High(i)))
		}

	case []float64:
		for i, x := range data {
			out[i] = float32(minMax(x, sp.Low(i), sp.High(i)))
		}

	default:
		return nil, &environment.StateInvariantError{
			Op:  "scale",
			Err: fmt.Errorf("unsupported frame dtype %v", f.Dtype()),
		}
	}

	return tensor.New(tensor.WithShape(f.Shape()...), tensor.WithBacking(out)),
		nil
}

// minMax scales x from [low, high] to [0, 1]. A zero-width range maps
// to 0.
func minMax(x, low, high float64) float64 {
	if high == low {
		return 0
	}
	return (x - low) / (high - low)
}

// oneHot returns a vector of length n which is 1 at index i and 0
// elsewhere
func oneHot(i, n int) []float64 {
	out := make([]float64, n)
	out[i] = 1
	return out
}

// String returns a string representation of the environment
func (s *ScaleObservation) String() string {
	return fmt.Sprintf("ScaleObservation(exclude images: %v, binary: %v): %v",
		s.excludeImages, s.binary, s.Environment)
}
