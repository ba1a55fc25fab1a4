package wrappers

import (
	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/space"
)

// Config describes a wrapper chain. Config can be loaded from JSON or
// from environment variables, see package envconfig. Layers orders the
// enabled wrappers.
type Config struct {
	// NoOpMax enables NoOpReset when positive. A nil NoOpSeed derives
	// the seed from the base environment's seed.
	NoOpMax  int     `json:"no_op_max" env:"NO_OP_MAX"`
	NoOpSeed *uint64 `json:"no_op_seed" env:"NO_OP_SEED"`

	// StickyActions enables StickyAction when greater than 1
	StickyActions int `json:"sticky_actions" env:"STICKY_ACTIONS" envDefault:"1"`

	// FrameShape enables GrayscaleResize when it holds any non-zero
	// element. It is either empty or holds (height, width, channels).
	FrameShape []int `json:"frame_shape" env:"FRAME_SHAPE"`

	// FrameStack enables FrameStack when greater than 1
	FrameStack int `json:"frame_stack" env:"FRAME_STACK" envDefault:"1"`
	Dilation   int `json:"dilation" env:"DILATION" envDefault:"1"`

	AddLastAction bool `json:"add_last_action" env:"ADD_LAST_ACTION"`

	// ActionsStack enables ActionStack when greater than 1
	ActionsStack int `json:"actions_stack" env:"ACTIONS_STACK" envDefault:"1"`

	Scale                 bool `json:"scale" env:"SCALE"`
	ExcludeImageScaling   bool `json:"exclude_image_scaling" env:"EXCLUDE_IMAGE_SCALING"`
	ProcessDiscreteBinary bool `json:"process_discrete_binary" env:"PROCESS_DISCRETE_BINARY"`

	RewardNormalization       bool    `json:"reward_normalization" env:"REWARD_NORMALIZATION"`
	RewardNormalizationFactor float64 `json:"reward_normalization_factor" env:"REWARD_NORMALIZATION_FACTOR" envDefault:"0.5"`
	ClipRewards               bool    `json:"clip_rewards" env:"CLIP_REWARDS"`

	RoleRelative bool     `json:"role_relative" env:"ROLE_RELATIVE"`
	Flatten      bool     `json:"flatten" env:"FLATTEN"`
	FilterKeys   []string `json:"filter_keys" env:"FILTER_KEYS"`

	NoAttackButtonsCombinations bool `json:"no_attack_buttons_combinations" env:"NO_ATTACK_BUTTONS_COMBINATIONS"`
}

// DefaultConfig returns a Config with every wrapper disabled
func DefaultConfig() Config {
	return Config{
		StickyActions:             1,
		FrameStack:                1,
		Dilation:                  1,
		ActionsStack:              1,
		RewardNormalizationFactor: DefaultNormalizationFactor,
	}
}

// Validate checks the range of every option and the options which
// depend on each other. Preconditions which depend on the wrapped
// environment are checked when the wrappers are built.
func (c Config) Validate() error {
	if c.NoOpMax < 0 {
		return environment.NewConfigurationError("no_op_max",
			"must be non-negative, got %v", c.NoOpMax)
	}
	if c.StickyActions < 1 {
		return environment.NewConfigurationError("sticky_actions",
			"must be at least 1, got %v", c.StickyActions)
	}

	if len(c.FrameShape) != 0 {
		if len(c.FrameShape) != 3 {
			return environment.NewConfigurationError("frame_shape",
				"must hold (height, width, channels), got %v", c.FrameShape)
		}
		h, w, ch := c.FrameShape[0], c.FrameShape[1], c.FrameShape[2]
		if h < 0 || w < 0 || (h == 0) != (w == 0) {
			return environment.NewConfigurationError("frame_shape",
				"height and width must both be positive or both be 0, got %v",
				c.FrameShape)
		}
		if ch != 0 && ch != 1 && ch != 3 {
			return environment.NewConfigurationError("frame_shape",
				"channels must be 0, 1 or 3, got %v", ch)
		}
	}

	if c.FrameStack < 1 {
		return environment.NewConfigurationError("frame_stack",
			"must be at least 1, got %v", c.FrameStack)
	}
	if c.Dilation < 1 {
		return environment.NewConfigurationError("dilation",
			"must be at least 1, got %v", c.Dilation)
	}
	if c.ActionsStack < 1 {
		return environment.NewConfigurationError("actions_stack",
			"must be at least 1, got %v", c.ActionsStack)
	}
	if c.ActionsStack > 1 && !c.AddLastAction {
		return environment.NewConfigurationError("actions_stack",
			"stacking actions requires add_last_action")
	}
	if c.RewardNormalization && c.RewardNormalizationFactor <= 0 {
		return environment.NewConfigurationError(
			"reward_normalization_factor", "must be positive, got %v",
			c.RewardNormalizationFactor)
	}
	if len(c.FilterKeys) > 0 && !c.Flatten {
		return environment.NewConfigurationError("filter_keys",
			"filtering keys requires flatten")
	}
	return nil
}

// frameShape returns the frame shape option and whether it is enabled
func (c Config) frameShape() ([3]int, bool) {
	var shape [3]int
	if len(c.FrameShape) != 3 {
		return shape, false
	}
	copy(shape[:], c.FrameShape)
	return shape, shape != [3]int{}
}

// Layers returns the layers enabled by the Config in the order:
// ActionSpaceReducer, NoOpReset, StickyAction, NormalizeReward,
// ClipReward, GrayscaleResize, AddLastAction, ActionStack, FrameStack,
// ScaleObservation, RoleRelative and FlattenFilter.
func (c Config) Layers() []Layer {
	var layers []Layer
	if c.NoAttackButtonsCombinations {
		layers = append(layers, ActionSpaceReducerLayer())
	}
	if c.NoOpMax > 0 {
		layers = append(layers, NoOpResetLayer(c.NoOpMax, c.NoOpSeed))
	}
	if c.StickyActions > 1 {
		layers = append(layers, StickyActionLayer(c.StickyActions))
	}
	if c.RewardNormalization {
		layers = append(layers,
			NormalizeRewardLayer(c.RewardNormalizationFactor))
	}
	if c.ClipRewards {
		layers = append(layers, ClipRewardLayer())
	}
	if shape, ok := c.frameShape(); ok {
		layers = append(layers, GrayscaleResizeLayer(shape))
	}
	if c.AddLastAction {
		layers = append(layers, AddLastActionLayer())
	}
	if c.ActionsStack > 1 {
		layers = append(layers, ActionStackLayer(c.ActionsStack))
	}
	if c.FrameStack > 1 {
		layers = append(layers, FrameStackLayer(c.FrameStack, c.Dilation))
	}
	if c.Scale {
		layers = append(layers, ScaleObservationLayer(c.ExcludeImageScaling,
			c.ProcessDiscreteBinary))
	}
	if c.RoleRelative {
		layers = append(layers, RoleRelativeLayer())
	}
	if c.Flatten {
		layers = append(layers,
			FlattenFilterLayer(space.DefaultSeparator, c.FilterKeys))
	}
	return layers
}

// Make validates the Config and wraps env in the enabled wrappers
func Make(env environment.Environment, c Config) (environment.Environment,
	error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return Wrap(env, c.Layers()...)
}
