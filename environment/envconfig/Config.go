// Package envconfig provides configuration structs for creating arena
// environments over the mock engine together with their wrapper
// chains. Configurations in this package are JSON serializable and may
// also be loaded from environment variables.
package envconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/samuelfneumann/goarena/environment"
	"github.com/samuelfneumann/goarena/environment/arena"
	"github.com/samuelfneumann/goarena/environment/arena/mockengine"
	"github.com/samuelfneumann/goarena/environment/wrappers"
	ts "github.com/samuelfneumann/goarena/timestep"
)

// ActionSpace names the action space of the agents
type ActionSpace string

// Action spaces available for configuration
const (
	Discrete      ActionSpace = "discrete"
	MultiDiscrete ActionSpace = "multi_discrete"
)

// Config implements a specific configuration of the mock engine, the
// base environment and its wrappers
type Config struct {
	// Game played by the mock engine
	FrameShape   []int   `json:"frame_shape" env:"GOARENA_FRAME_SHAPE" envDefault:"64,96,3"`
	Stages       int     `json:"stages" env:"GOARENA_STAGES" envDefault:"3"`
	RoundsToWin  int     `json:"rounds_to_win" env:"GOARENA_ROUNDS_TO_WIN" envDefault:"2"`
	RoundSeconds float64 `json:"round_seconds" env:"GOARENA_ROUND_SECONDS" envDefault:"40"`
	MaxHealth    float64 `json:"max_health" env:"GOARENA_MAX_HEALTH" envDefault:"160"`
	Characters   int     `json:"characters" env:"GOARENA_CHARACTERS" envDefault:"8"`

	// Base environment
	Agents      int         `json:"agents" env:"GOARENA_AGENTS" envDefault:"1"`
	ActionSpace ActionSpace `json:"action_space" env:"GOARENA_ACTION_SPACE" envDefault:"multi_discrete"`
	Roles       []string    `json:"roles" env:"GOARENA_ROLES"`
	StepRatio   int         `json:"step_ratio" env:"GOARENA_STEP_RATIO" envDefault:"6"`
	Difficulty  int         `json:"difficulty" env:"GOARENA_DIFFICULTY" envDefault:"3"`
	Hardcore    bool        `json:"hardcore" env:"GOARENA_HARDCORE"`
	Seed        uint64      `json:"seed" env:"GOARENA_SEED"`

	Wrappers wrappers.Config `json:"wrappers" envPrefix:"GOARENA_WRAPPERS_"`
}

// Default returns the default configuration: a single agent against a
// CPU opponent with every wrapper disabled
func Default() Config {
	game := mockengine.DefaultConfig()
	settings := arena.DefaultSettings()
	return Config{
		FrameShape:   game.FrameShape[:],
		Stages:       game.Stages,
		RoundsToWin:  game.RoundsToWin,
		RoundSeconds: game.RoundSeconds,
		MaxHealth:    game.MaxHealth,
		Characters:   game.NumCharacters,
		Agents:       settings.NumAgents,
		ActionSpace:  MultiDiscrete,
		StepRatio:    settings.StepRatio,
		Difficulty:   settings.Difficulty,
		Wrappers:     wrappers.DefaultConfig(),
	}
}

// FromEnv loads a Config from environment variables. Variables which
// are not set take their default values.
func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// Load loads a Config from a JSON file. Fields missing from the file
// take their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}

	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("load: %v: %w", path, err)
	}
	return c, nil
}

// Save saves the Config as JSON to path
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Game returns the configuration of the mock engine
func (c Config) Game() (mockengine.Config, error) {
	if len(c.FrameShape) != 3 {
		return mockengine.Config{}, environment.NewConfigurationError(
			"frame_shape", "must hold (height, width, channels), got %v",
			c.FrameShape)
	}

	var shape [3]int
	copy(shape[:], c.FrameShape)
	return mockengine.Config{
		FrameShape:    shape,
		Stages:        c.Stages,
		RoundsToWin:   c.RoundsToWin,
		RoundSeconds:  c.RoundSeconds,
		MaxHealth:     c.MaxHealth,
		NumCharacters: c.Characters,
	}, nil
}

// Settings returns the settings of the base environment
func (c Config) Settings() (arena.Settings, error) {
	var kind environment.ActionSpaceKind
	switch c.ActionSpace {
	case Discrete:
		kind = environment.Discrete

	case MultiDiscrete:
		kind = environment.MultiDiscrete

	default:
		return arena.Settings{}, environment.NewConfigurationError(
			"action_space", "must be %q or %q, got %q", Discrete,
			MultiDiscrete, c.ActionSpace)
	}

	s := arena.Settings{
		NumAgents:  c.Agents,
		StepRatio:  c.StepRatio,
		Difficulty: c.Difficulty,
		Hardcore:   c.Hardcore,
		Seed:       c.Seed,
	}
	for i := 0; i < c.Agents; i++ {
		s.ActionSpaces = append(s.ActionSpaces, kind)
	}
	if len(c.Roles) > 0 {
		s.Roles = make([]ts.Role, len(c.Roles))
		for i, r := range c.Roles {
			s.Roles[i] = ts.Role(r)
		}
	}
	return s, s.Validate()
}

// Create returns the environment described by the Config, wrapped in
// the configured wrappers. The mock engine is closed if the
// environment cannot be created.
func (c Config) Create() (environment.Environment, error) {
	game, err := c.Game()
	if err != nil {
		return nil, err
	}
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	if err := c.Wrappers.Validate(); err != nil {
		return nil, err
	}

	engine, err := mockengine.New(game)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	base, err := arena.New(engine, settings)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("create: %w", err)
	}

	wrapped, err := wrappers.Make(base, c.Wrappers)
	if err != nil {
		base.Close()
		return nil, fmt.Errorf("create: %w", err)
	}
	return wrapped, nil
}
