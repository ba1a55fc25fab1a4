package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/goarena/environment"
)

// Layer builds a wrapper around an environment
type Layer interface {
	Wrap(env environment.Environment) (environment.Environment, error)
}

// LayerFunc adapts a function to the Layer interface
type LayerFunc func(environment.Environment) (environment.Environment, error)

// Wrap calls f(env)
func (f LayerFunc) Wrap(env environment.Environment) (environment.Environment,
	error) {
	return f(env)
}

// Wrap folds the layers over env from left to right, so that the last
// layer is the outermost wrapper
func Wrap(env environment.Environment,
	layers ...Layer) (environment.Environment, error) {
	for i, l := range layers {
		wrapped, err := l.Wrap(env)
		if err != nil {
			return nil, fmt.Errorf("wrap: layer %v: %w", i, err)
		}
		env = wrapped
	}
	return env, nil
}

// layer adapts a wrapper constructor to the Layer interface. A nil
// wrapper is never returned together with a nil error.
func layer[W environment.Environment](
	build func(environment.Environment) (W, error)) Layer {
	return LayerFunc(func(env environment.Environment) (environment.Environment,
		error) {
		w, err := build(env)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}

// NoOpResetLayer returns a Layer adding a NoOpReset. If seed is nil,
// the seed is derived from the seed in the wrapped environment's
// Context.
func NoOpResetLayer(max int, seed *uint64) Layer {
	return layer(func(env environment.Environment) (*NoOpReset, error) {
		if seed == nil {
			return NewNoOpReset(env, max, NoOpSeed(env.Context()))
		}
		return NewNoOpReset(env, max, *seed)
	})
}

// StickyActionLayer returns a Layer adding a StickyAction
func StickyActionLayer(k int) Layer {
	return layer(func(env environment.Environment) (*StickyAction, error) {
		return NewStickyAction(env, k)
	})
}

// ActionSpaceReducerLayer returns a Layer adding an ActionSpaceReducer
func ActionSpaceReducerLayer() Layer {
	return layer(NewActionSpaceReducer)
}

// NormalizeRewardLayer returns a Layer adding a NormalizeReward
func NormalizeRewardLayer(factor float64) Layer {
	return layer(func(env environment.Environment) (*NormalizeReward, error) {
		return NewNormalizeReward(env, factor)
	})
}

// ClipRewardLayer returns a Layer adding a ClipReward
func ClipRewardLayer() Layer {
	return layer(func(env environment.Environment) (*ClipReward, error) {
		return NewClipReward(env), nil
	})
}

// GrayscaleResizeLayer returns a Layer adding a GrayscaleResize
func GrayscaleResizeLayer(shape [3]int) Layer {
	return layer(func(env environment.Environment) (*GrayscaleResize, error) {
		return NewGrayscaleResize(env, shape)
	})
}

// AddLastActionLayer returns a Layer adding an AddLastAction
func AddLastActionLayer() Layer {
	return layer(NewAddLastAction)
}

// ActionStackLayer returns a Layer adding an ActionStack
func ActionStackLayer(n int) Layer {
	return layer(func(env environment.Environment) (*ActionStack, error) {
		return NewActionStack(env, n)
	})
}

// FrameStackLayer returns a Layer adding a FrameStack
func FrameStackLayer(n, dilation int) Layer {
	return layer(func(env environment.Environment) (*FrameStack, error) {
		return NewFrameStack(env, n, dilation)
	})
}

// ScaleObservationLayer returns a Layer adding a ScaleObservation
func ScaleObservationLayer(excludeImages, binary bool) Layer {
	return layer(func(env environment.Environment) (*ScaleObservation,
		error) {
		return NewScaleObservation(env, excludeImages, binary), nil
	})
}

// RoleRelativeLayer returns a Layer adding a RoleRelative
func RoleRelativeLayer() Layer {
	return layer(NewRoleRelative)
}

// FlattenFilterLayer returns a Layer adding a FlattenFilter
func FlattenFilterLayer(sep string, filter []string) Layer {
	filter = append([]string(nil), filter...)
	return layer(func(env environment.Environment) (*FlattenFilter, error) {
		return NewFlattenFilter(env, sep, filter)
	})
}

// SpaceCheckLayer returns a Layer adding a SpaceCheck
func SpaceCheckLayer() Layer {
	return layer(func(env environment.Environment) (*SpaceCheck, error) {
		return NewSpaceCheck(env), nil
	})
}
