package wrappers

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// Luma weights used to convert RGB frames to grayscale
const (
	RedWeight   float64 = 0.299
	GreenWeight float64 = 0.587
	BlueWeight  float64 = 0.114
)

// GrayscaleResize wraps an environment and converts frames to the
// shape (height, width, channels). A height and width of 0 keep the
// size of the frame. One channel converts RGB frames to grayscale and
// three channels keep the colour of RGB frames. Frames are resized with
// bilinear interpolation.
type GrayscaleResize struct {
	environment.Environment
	shape            [3]int
	srcShape         [3]int
	ctx              environment.Context
	observationSpace space.Space
}

// NewGrayscaleResize returns a new GrayscaleResize producing frames of
// the given shape
func NewGrayscaleResize(env environment.Environment,
	shape [3]int) (*GrayscaleResize, error) {
	obsSpace := env.ObservationSpace()
	frame, _, err := frameSpace("frame_shape", obsSpace)
	if err != nil {
		return nil, err
	}
	if frame.Rank() != 3 || frame.Dtype() != tensor.Uint8 {
		return nil, environment.NewConfigurationError("frame_shape",
			"requires uint8 frames of shape (height, width, channels), got %v",
			frame)
	}

	var src [3]int
	copy(src[:], frame.Shape())
	if src[2] != 1 && src[2] != 3 {
		return nil, environment.NewConfigurationError("frame_shape",
			"requires frames with 1 or 3 channels, got %v", src[2])
	}

	if (shape[0] == 0) != (shape[1] == 0) || shape[0] < 0 || shape[1] < 0 {
		return nil, environment.NewConfigurationError("frame_shape",
			"height and width must both be positive or both be 0, got %v",
			shape)
	}
	if shape[0] == 0 {
		shape[0], shape[1] = src[0], src[1]
	}
	switch {
	case shape[2] == 0:
		shape[2] = src[2]

	case shape[2] != 1 && shape[2] != 3:
		return nil, environment.NewConfigurationError("frame_shape",
			"channels must be 0, 1 or 3, got %v", shape[2])

	case shape[2] == 3 && src[2] != 3:
		return nil, environment.NewConfigurationError("frame_shape",
			"cannot produce 3 channels from %v channel frames", src[2])
	}

	out := space.NewUniformBox(shape[:], frame.Low(0), frame.High(0),
		tensor.Uint8)
	return &GrayscaleResize{
		Environment:      env,
		shape:            shape,
		srcShape:         src,
		ctx:              env.Context().WithFrameShape(shape),
		observationSpace: withFrameSpace(obsSpace, out),
	}, nil
}

// ObservationSpace returns the observation space of the environment
func (g *GrayscaleResize) ObservationSpace() space.Space {
	return g.observationSpace
}

// Context returns the Context of the wrapped environment with the new
// frame shape
func (g *GrayscaleResize) Context() environment.Context {
	return g.ctx
}

// Reset resets the environment and converts the first frame
func (g *GrayscaleResize) Reset(opts environment.ResetOptions) (ts.TimeStep,
	error) {
	step, err := g.Environment.Reset(opts)
	if err != nil {
		return step, err
	}
	return g.converted(step)
}

// Step takes one environmental step and converts the frame
func (g *GrayscaleResize) Step(action environment.Action) (ts.TimeStep, bool,
	error) {
	step, last, err := g.Environment.Step(action)
	if err != nil {
		return step, last, err
	}
	step, err = g.converted(step)
	return step, last, err
}

func (g *GrayscaleResize) converted(step ts.TimeStep) (ts.TimeStep, error) {
	pixels, ok := frameOf(step.Observation).Data().([]uint8)
	if !ok {
		return step, &environment.StateInvariantError{
			Op:  "grayscaleResize",
			Err: fmt.Errorf("expected uint8 frame"),
		}
	}

	h, w := g.srcShape[0], g.srcShape[1]
	var img draw.Image
	if g.shape[2] == 1 {
		img = grayImage(pixels, h, w, g.srcShape[2])
	} else {
		img = rgbImage(pixels, h, w)
	}

	if g.shape[0] != h || g.shape[1] != w {
		bounds := image.Rect(0, 0, g.shape[1], g.shape[0])
		var dst draw.Image
		if g.shape[2] == 1 {
			dst = image.NewGray(bounds)
		} else {
			dst = image.NewRGBA(bounds)
		}
		draw.BiLinear.Scale(dst, bounds, img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	frame := tensor.New(
		tensor.WithShape(g.shape[:]...),
		tensor.WithBacking(imagePixels(img, g.shape[2])),
	)
	step.Observation = withFrame(step.Observation, frame)
	return step, nil
}

// grayImage converts row-major pixels with the given number of channels
// to a grayscale image
func grayImage(pixels []uint8, h, w, channels int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := 0; i < h*w; i++ {
		if channels == 1 {
			img.Pix[i] = pixels[i]
			continue
		}
		r, g, b := pixels[3*i], pixels[3*i+1], pixels[3*i+2]
		y := RedWeight*float64(r) + GreenWeight*float64(g) +
			BlueWeight*float64(b)
		img.Pix[i] = uint8(y + 0.5)
	}
	return img
}

// rgbImage converts row-major RGB pixels to an opaque image
func rgbImage(pixels []uint8, h, w int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < h*w; i++ {
		copy(img.Pix[4*i:4*i+3], pixels[3*i:3*i+3])
		img.Pix[4*i+3] = 255
	}
	return img
}

// imagePixels returns the row-major pixels of an image created by
// grayImage, rgbImage or a resize of either
func imagePixels(img draw.Image, channels int) []uint8 {
	if gray, ok := img.(*image.Gray); ok {
		return append([]uint8(nil), gray.Pix...)
	}

	rgba := img.(*image.RGBA)
	n := len(rgba.Pix) / 4
	out := make([]uint8, 0, n*channels)
	for i := 0; i < n; i++ {
		out = append(out, rgba.Pix[4*i:4*i+3]...)
	}
	return out
}

// String returns a string representation of the environment
func (g *GrayscaleResize) String() string {
	return fmt.Sprintf("GrayscaleResize(%v): %v", g.shape, g.Environment)
}
