package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/goarena/buffer/fifo"
	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// FrameStack wraps an environment and stacks the most recent frames
// along the channel axis.
//
// The last n*d frames are kept in a buffer, where n is the stack size
// and d the dilation. The stacked frame holds every d-th buffered frame
// ending with the newest, oldest first. At reset, and whenever a round,
// stage or game ends while the episode continues, the buffer is filled
// with the newest frame so that all stacked frames are identical. When
// the episode ends the buffer is left as is; the environment must be
// reset next.
type FrameStack struct {
	environment.Environment
	n, dilation int

	frames           *fifo.Buffer[*tensor.Dense]
	observationSpace space.Space
}

// NewFrameStack returns a new FrameStack stacking n frames taken every
// dilation frames
func NewFrameStack(env environment.Environment, n,
	dilation int) (*FrameStack, error) {
	if n < 1 {
		return nil, environment.NewConfigurationError("frame_stack",
			"must be at least 1, got %v", n)
	}
	if dilation < 1 {
		return nil, environment.NewConfigurationError("dilation",
			"must be at least 1, got %v", dilation)
	}

	obsSpace := env.ObservationSpace()
	frame, _, err := frameSpace("frame_stack", obsSpace)
	if err != nil {
		return nil, err
	}

	return &FrameStack{
		Environment:      env,
		n:                n,
		dilation:         dilation,
		frames:           fifo.New[*tensor.Dense](n * dilation),
		observationSpace: withFrameSpace(obsSpace, stackSpace(frame, n)),
	}, nil
}

// stackSpace returns the space of n frames of space frame concatenated
// along the channel axis
func stackSpace(frame space.Space, n int) space.Space {
	shape := frame.Shape()
	channelAxis := len(shape) - 1
	low, high := frame.Bounds()

	if low.Len() > 1 {
		// Element (..., k*C + c) of the stack is element (..., c) of the
		// k-th frame
		channels := shape[channelAxis]
		size := frame.Size() * n
		stackLow := mat.NewVecDense(size, nil)
		stackHigh := mat.NewVecDense(size, nil)
		for i := 0; i < size; i++ {
			pixel, c := i/(channels*n), i%(channels*n)%channels
			src := pixel*channels + c
			stackLow.SetVec(i, low.AtVec(src))
			stackHigh.SetVec(i, high.AtVec(src))
		}
		low, high = stackLow, stackHigh
	}

	shape[channelAxis] *= n
	return space.NewBox(shape, low, high, frame.Dtype())
}

// ObservationSpace returns the observation space of the environment
func (f *FrameStack) ObservationSpace() space.Space {
	return f.observationSpace
}

// Reset resets the environment and fills the buffer with the first
// frame
func (f *FrameStack) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := f.Environment.Reset(opts)
	if err != nil {
		return step, err
	}

	f.frames.Fill(frameOf(step.Observation))
	return f.stacked(step)
}

// Step takes one environmental step and pushes the new frame to the
// buffer
func (f *FrameStack) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := f.Environment.Step(action)
	if err != nil {
		return step, last, err
	}

	frame := frameOf(step.Observation)
	f.frames.Push(frame)
	if step.Info.Soft() {
		// Equivalent to pushing the frame n*d-1 more times
		f.frames.Fill(frame)
	}

	step, err = f.stacked(step)
	return step, last, err
}

// stacked replaces the frame of the step with the stacked frame
func (f *FrameStack) stacked(step ts.TimeStep) (ts.TimeStep, error) {
	if f.frames.Len() != f.frames.Cap() {
		return step, &environment.StateInvariantError{
			Op: "frameStack",
			Err: fmt.Errorf("buffer holds %v frames, expected %v",
				f.frames.Len(), f.frames.Cap()),
		}
	}

	sampled := f.frames.Every(f.dilation)
	var stack *tensor.Dense
	if len(sampled) == 1 {
		stack = sampled[0].Clone().(*tensor.Dense)
	} else {
		var err error
		axis := len(sampled[0].Shape()) - 1
		stack, err = sampled[0].Concat(axis, sampled[1:]...)
		if err != nil {
			return step, &environment.StateInvariantError{Op: "frameStack",
				Err: err}
		}
	}

	step.Observation = withFrame(step.Observation, stack)
	return step, nil
}

// String returns a string representation of the environment
func (f *FrameStack) String() string {
	return fmt.Sprintf("FrameStack(n: %v, dilation: %v): %v", f.n, f.dilation,
		f.Environment)
}
